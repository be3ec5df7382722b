// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package netlink

import (
	"fmt"
	"sync"
	"sync/atomic"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/onewire"
)

// recvBufferSize bounds one netlink datagram this package reads back;
// large enough for a full 64-device search reply (each id is 8 bytes).
const recvBufferSize = 8192

// Bus is a 1-wire transport that delegates reset, search and read/write
// framing to the Linux kernel's w1 subsystem over its netlink connector
// interface, rather than driving the line from this process. It
// implements periph.io/x/conn/v3/onewire.Bus the same as this module's
// own onewire.Bus, so the two are interchangeable from a device
// driver's point of view; which one to pick is purely an operational
// choice (is the board's 1-wire master already owned by the kernel?).
type Bus struct {
	mu       sync.Mutex
	sock     *connSocket
	masterID uint32
	seq      uint32
	closed   bool
}

// Open binds to masterID, the kernel's internal w1 master device id
// (not the /sys/bus/w1/devices/w1_bus_masterN suffix, though on a
// single-master system they coincide as 0). Use ListMasters to
// discover the id of the master whose /sys path you already know.
func Open(masterID uint32) (*Bus, error) {
	sock, err := newConnSocket()
	if err != nil {
		return nil, fmt.Errorf("netlink: %w", err)
	}
	return &Bus{sock: sock, masterID: masterID}, nil
}

// ListMasters returns the kernel ids of every registered w1 master.
func ListMasters() ([]uint32, error) {
	sock, err := newConnSocket()
	if err != nil {
		return nil, fmt.Errorf("netlink: %w", err)
	}
	defer sock.close()
	b := &Bus{sock: sock}
	reply, err := b.roundTrip(w1ListMasters, 0, nil)
	if err != nil {
		return nil, err
	}
	var ids []uint32
	for i := 0; i+4 <= len(reply.payload); i += 4 {
		ids = append(ids, nativeEndian.Uint32(reply.payload[i:i+4]))
	}
	return ids, nil
}

func (b *Bus) checkOpen() error {
	if b.closed {
		return fmt.Errorf("netlink: bus closed")
	}
	return nil
}

// Close releases the underlying netlink socket. Idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.sock.close()
}

func (b *Bus) String() string {
	return fmt.Sprintf("netlink.Bus(master %d)", b.masterID)
}

// Halt implements conn.Resource; the kernel owns any in-flight request.
func (b *Bus) Halt() error { return nil }

// Duplex implements conn.Conn.
func (b *Bus) Duplex() conn.Duplex { return conn.Half }

// roundTrip sends one w1 command addressed to b's master and returns
// its decoded reply. Not safe for concurrent use; callers hold b.mu.
func (b *Bus) roundTrip(msgType byte, subCmd byte, payload []byte) (parsedReply, error) {
	seq := atomic.AddUint32(&b.seq, 1)
	req := buildCommand(msgType, b.masterID, subCmd, payload, seq)
	if err := b.sock.send(req); err != nil {
		return parsedReply{}, fmt.Errorf("netlink: send: %w", err)
	}
	buf := make([]byte, recvBufferSize)
	n, err := b.sock.recv(buf)
	if err != nil {
		return parsedReply{}, fmt.Errorf("netlink: recv: %w", err)
	}
	reply, ok := parseReply(buf[:n])
	if !ok {
		return parsedReply{}, fmt.Errorf("netlink: malformed reply (%d bytes)", n)
	}
	return reply, nil
}

// Tx implements periph.io/x/conn/v3/onewire.Bus. It issues a write
// command for w (if non-empty) followed by a read command for len(r)
// bytes (if non-empty); the kernel performs the reset and bus framing
// this entails. Strong pull-up power delivery is the kernel driver's
// concern, not something this transport exposes a knob for.
func (b *Bus) Tx(w, r []byte, power onewire.Pullup) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return err
	}
	if len(w) > 0 {
		if _, err := b.roundTrip(w1MasterCmd, w1CmdWrite, w); err != nil {
			return err
		}
	}
	if len(r) == 0 {
		return nil
	}
	lenBuf := []byte{byte(len(r))}
	reply, err := b.roundTrip(w1MasterCmd, w1CmdRead, lenBuf)
	if err != nil {
		return err
	}
	n := copy(r, reply.payload)
	if n < len(r) {
		return fmt.Errorf("netlink: short read: got %d bytes, wanted %d", n, len(r))
	}
	return nil
}

// Search implements periph.io/x/conn/v3/onewire.Bus by asking the
// kernel to run its own search (regular or alarm-only) and decoding
// the reply as a sequence of 8-byte, LSB-first device ids.
func (b *Bus) Search(alarmOnly bool) ([]onewire.Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	cmd := byte(w1CmdSearch)
	if alarmOnly {
		cmd = w1CmdAlarmSearch
	}
	reply, err := b.roundTrip(w1MasterCmd, cmd, nil)
	if err != nil {
		return nil, err
	}
	var addrs []onewire.Address
	for i := 0; i+8 <= len(reply.payload); i += 8 {
		addrs = append(addrs, onewire.Address(nativeEndian.Uint64(reply.payload[i:i+8])))
	}
	return addrs, nil
}

var _ conn.Resource = (*Bus)(nil)
var _ onewire.Bus = (*Bus)(nil)
