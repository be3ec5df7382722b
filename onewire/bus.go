// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import (
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/onewire"
)

// Bus is the stateful façade around a LinkLayer: ROM-command framing,
// device presence probing, and the search/enumeration state machine.
//
// Bus also implements periph.io/x/conn/v3/onewire.Bus (Tx and Search),
// grounded on the shape of that interface as consumed by the ds248x
// 1-wire bridge driver, so a *Bus is a drop-in transport for any
// existing periph device driver written against that interface.
type Bus struct {
	mu     sync.Mutex
	link   *LinkLayer
	closed bool
}

// Open constructs a LinkLayer around t and wraps it in a Bus.
func Open(t Transceiver, pullUp bool) (*Bus, error) {
	link, err := NewLinkLayer(t, pullUp)
	if err != nil {
		return nil, err
	}
	return OpenWithLink(link)
}

// OpenWithLink wraps an already-constructed LinkLayer. Ownership of link
// transfers to the Bus: closing the Bus closes the link.
func OpenWithLink(link *LinkLayer) (*Bus, error) {
	return &Bus{link: link}, nil
}

func (b *Bus) checkOpen(op string) error {
	if b.closed {
		return newErr(op, BusClosed, nil)
	}
	return nil
}

// Close closes the underlying LinkLayer. Idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.link.Close()
}

// String implements conn.Resource.
func (b *Bus) String() string {
	return "onewire.Bus"
}

// Halt implements conn.Resource. A 1-wire bus has no in-flight
// asynchronous operation to interrupt; Halt is a no-op.
func (b *Bus) Halt() error {
	return nil
}

// Duplex implements conn.Conn: 1-wire is inherently half-duplex, a
// single shared line.
func (b *Bus) Duplex() conn.Duplex {
	return conn.Half
}

// Reset emits a reset pulse and reports whether any device answered
// with a presence pulse.
func (b *Bus) Reset() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen("reset"); err != nil {
		return false, err
	}
	return b.link.Reset()
}

// Select addresses a single device by id: reset, fail NoDevice if
// nothing answers, write the MATCH ROM command, then the 64-bit id.
func (b *Bus) Select(id DeviceID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen("select"); err != nil {
		return err
	}
	present, err := b.link.Reset()
	if err != nil {
		return err
	}
	if !present {
		return newErr("select", NoDevice, nil)
	}
	if err := b.link.WriteByte(romMatch, false); err != nil {
		return err
	}
	return b.link.WriteBits(uint64(id), 64, false)
}

// Skip addresses every device on the bus simultaneously: reset, fail
// NoDevice if nothing answers, write the SKIP ROM command.
func (b *Bus) Skip() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen("skip"); err != nil {
		return err
	}
	present, err := b.link.Reset()
	if err != nil {
		return err
	}
	if !present {
		return newErr("skip", NoDevice, nil)
	}
	return b.link.WriteByte(romSkip, false)
}

// ReadDeviceID performs the READ ROM command: reset, write READ, read
// back 64 bits. Only meaningful when exactly one device is present —
// with more than one, the result is the bitwise AND of every device's
// id (an open-drain bus lets any 0 win).
func (b *Bus) ReadDeviceID() (DeviceID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen("read_device_id"); err != nil {
		return 0, err
	}
	present, err := b.link.Reset()
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, newErr("read_device_id", NoDevice, nil)
	}
	if err := b.link.WriteByte(romRead, false); err != nil {
		return 0, err
	}
	v, err := b.link.ReadBits(64)
	return DeviceID(v), err
}

// WriteBit writes a single bit.
func (b *Bus) WriteBit(v int, activatePower bool) error {
	return b.WriteBits(uint64(v), 1, activatePower)
}

// WriteBits writes the low count bits of v, LSB first.
func (b *Bus) WriteBits(v uint64, count int, activatePower bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen("write_bits"); err != nil {
		return err
	}
	return b.link.WriteBits(v, count, activatePower)
}

// WriteByte writes one byte.
func (b *Bus) WriteByte(v byte, activatePower bool) error {
	return b.WriteBits(uint64(v), 8, activatePower)
}

// Write writes a byte sequence, one byte at a time.
func (b *Bus) Write(data []byte, activatePower bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen("write"); err != nil {
		return err
	}
	return b.link.Write(data, activatePower)
}

// ReadBit reads a single bit.
func (b *Bus) ReadBit() (int, error) {
	v, err := b.ReadBits(1)
	return int(v), err
}

// ReadBits reads count bits (0..64), LSB first.
func (b *Bus) ReadBits(count int) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen("read_bits"); err != nil {
		return 0, err
	}
	return b.link.ReadBits(count)
}

// ReadByte reads one byte.
func (b *Bus) ReadByte() (byte, error) {
	v, err := b.ReadBits(8)
	return byte(v), err
}

// Read reads n bytes.
func (b *Bus) Read(n int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen("read"); err != nil {
		return nil, err
	}
	return b.link.Read(n)
}

// Tx implements periph.io/x/conn/v3/onewire.Bus: a full transaction —
// reset, write w, read into r — ending with the bus released either
// weakly or via a strong pull-up depending on power.
//
// Strong pull-up can only be honored on the final written byte when
// there is no subsequent read: ReadBits always re-enables open-drain
// as its very first action (spec.md's "any read implicitly restores
// open-drain" invariant), so a strong pull-up can never survive into a
// read the way it can survive past the last write.
func (b *Bus) Tx(w, r []byte, power onewire.Pullup) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen("tx"); err != nil {
		return err
	}
	present, err := b.link.Reset()
	if err != nil {
		return err
	}
	if !present {
		return newErr("tx", NoDevice, nil)
	}
	for i, wb := range w {
		activate := power == onewire.StrongPullup && i == len(w)-1 && len(r) == 0
		if err := b.link.WriteByte(wb, activate); err != nil {
			return err
		}
	}
	if len(r) == 0 {
		return nil
	}
	got, err := b.link.Read(len(r))
	if err != nil {
		return err
	}
	copy(r, got)
	return nil
}

// Search implements periph.io/x/conn/v3/onewire.Bus: enumerates every
// device (or every alarmed device, if alarmOnly) and returns their
// addresses. If an error occurs partway through, the already-discovered
// addresses are returned alongside it.
func (b *Bus) Search(alarmOnly bool) ([]onewire.Address, error) {
	var ids []onewire.Address
	err := b.Enumerate(EnumerateOptions{AlarmOnly: alarmOnly}, func(id DeviceID) CallbackAction {
		ids = append(ids, onewire.Address(id))
		return Continue
	})
	return ids, err
}

var _ conn.Resource = (*Bus)(nil)
var _ onewire.Bus = (*Bus)(nil)
