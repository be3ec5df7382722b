// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import (
	"sync"
	"time"
)

// resetResponseTimeout bounds how long Reset waits for a captured
// response before declaring no presence. It is a var, not a const, so
// tests can shrink it instead of actually waiting out a 500ms timeout —
// the same trick the ds248x driver uses for its "sleep" hook.
var resetResponseTimeout = time.Duration(ResetResponseTimeoutMillis) * time.Millisecond

// LinkLayer is the stateful driver around a Transceiver: it owns the
// pin's open-drain/power mode and the receive idle threshold, and turns
// SignalBuffers into bits and bytes via the Codec.
//
// A LinkLayer is not safe for concurrent use; callers (normally a Bus)
// must serialize access.
type LinkLayer struct {
	mu        sync.Mutex
	t         Transceiver
	closed    bool
	openDrain bool // true: pin is open-drain (normal read state)
}

// NewLinkLayer wraps t, configuring it bidirectional (with the active
// pull-up only if pullUp is set) and open-drain enabled.
func NewLinkLayer(t Transceiver, pullUp bool) (*LinkLayer, error) {
	if err := t.ConfigureOutput(High); err != nil {
		return nil, newErr("new", Transport, err)
	}
	if err := t.ConfigureInput(High, IdleThreshold*time.Microsecond, 30, 1024); err != nil {
		return nil, newErr("new", Transport, err)
	}
	if err := t.MakeBidirectional(pullUp); err != nil {
		return nil, newErr("new", Transport, err)
	}
	if err := t.SetOpenDrain(true); err != nil {
		return nil, newErr("new", Transport, err)
	}
	return &LinkLayer{t: t, openDrain: true}, nil
}

func (l *LinkLayer) checkOpen(op string) error {
	if l.closed {
		return newErr(op, BusClosed, nil)
	}
	return nil
}

func (l *LinkLayer) setOpenDrain(op string, enable bool) error {
	if l.openDrain == enable {
		return nil
	}
	if err := l.t.SetOpenDrain(enable); err != nil {
		return newErr(op, Transport, err)
	}
	l.openDrain = enable
	return nil
}

// Reset emits a reset pulse and reports whether any slave answered with
// a presence pulse. It never returns an error for a plain timeout —
// that is reported as (false, nil) — only for a Transceiver failure.
//
// The receive idle threshold is raised to ResetIdleThreshold for the
// duration of the call and is always restored on every exit path,
// including on a Transceiver error or timeout: a scoped acquisition
// with guaranteed release, since a leaked threshold would silently break
// every subsequent bit read.
func (l *LinkLayer) Reset() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkOpen("reset"); err != nil {
		return false, err
	}

	old := l.t.IdleThreshold()
	if err := l.t.SetIdleThreshold(ResetIdleThreshold * time.Microsecond); err != nil {
		return false, newErr("reset", Transport, err)
	}
	defer l.t.SetIdleThreshold(old)

	if err := l.t.StartReading(); err != nil {
		return false, newErr("reset", Transport, err)
	}
	defer l.t.StopReading()

	stim := SignalBuffer{{Level: Low, Period: ResetLow}, {Level: High, Period: ResetHigh}}
	if err := l.t.Write(stim); err != nil {
		return false, newErr("reset", Transport, err)
	}

	type captured struct {
		signals SignalBuffer
		err     error
	}
	ch := make(chan captured, 1)
	go func() {
		s, err := l.t.Read()
		ch <- captured{s, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return false, newErr("reset", Transport, r.err)
		}
		return isPresencePulse(r.signals), nil
	case <-time.After(resetResponseTimeout):
		return false, nil
	}
}

// isPresencePulse checks the first three captured signals of a reset
// response against the literal, intentionally asymmetric tolerance
// window for the master's low pulse.
func isPresencePulse(signals SignalBuffer) bool {
	if signals.Size() < 3 {
		return false
	}
	e0, e1, e2 := signals[0], signals[1], signals[2]
	if e0.Level != Low || e0.Period < resetLowToleranceLow || e0.Period > resetLowToleranceHigh {
		return false
	}
	if e1.Level != High || e1.Period <= 0 {
		return false
	}
	if e2.Level != Low || e2.Period <= 0 {
		return false
	}
	return true
}

// WriteBits encodes and transmits the low count bits of value, LSB
// first. If activatePower is set, open-drain is disabled for this write
// so the pin can act as a strong pull-up afterwards; it stays disabled
// until the next Read-family call re-enables it.
func (l *LinkLayer) WriteBits(value uint64, count int, activatePower bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkOpen("write_bits"); err != nil {
		return err
	}
	if count < 0 || count > 64 {
		return newErr("write_bits", InvalidArgument, nil)
	}
	if activatePower {
		if err := l.setOpenDrain("write_bits", false); err != nil {
			return err
		}
	}
	if err := l.t.Write(EncodeWrite(value, count)); err != nil {
		return newErr("write_bits", Transport, err)
	}
	return nil
}

// WriteByte writes one byte, LSB first.
func (l *LinkLayer) WriteByte(b byte, activatePower bool) error {
	return l.WriteBits(uint64(b), 8, activatePower)
}

// Write writes bytes individually; each byte gets its own slot sequence
// (bytes are not packed into a single transmission).
func (l *LinkLayer) Write(bytes []byte, activatePower bool) error {
	for _, b := range bytes {
		if err := l.WriteByte(b, activatePower); err != nil {
			return err
		}
	}
	return nil
}

// ReadBits re-enables open-drain, issues count read slots, and decodes
// the captured response. count must be within [0, 64].
func (l *LinkLayer) ReadBits(count int) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkOpen("read_bits"); err != nil {
		return 0, err
	}
	if count < 0 || count > 64 {
		return 0, newErr("read_bits", InvalidArgument, nil)
	}
	if err := l.setOpenDrain("read_bits", true); err != nil {
		return 0, err
	}
	if err := l.t.StartReading(); err != nil {
		return 0, newErr("read_bits", Transport, err)
	}
	if err := l.t.Write(EncodeRead(count)); err != nil {
		_ = l.t.StopReading()
		return 0, newErr("read_bits", Transport, err)
	}
	signals, err := l.t.Read()
	if err != nil {
		_ = l.t.StopReading()
		return 0, newErr("read_bits", Transport, err)
	}
	if err := l.t.StopReading(); err != nil {
		return 0, newErr("read_bits", Transport, err)
	}
	return Decode(signals, 0, count)
}

// ReadByte reads one byte, LSB first.
func (l *LinkLayer) ReadByte() (byte, error) {
	v, err := l.ReadBits(8)
	return byte(v), err
}

// Read reads n bytes individually.
func (l *LinkLayer) Read(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := l.ReadByte()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// SetPower toggles strong pull-up power delivery. When on, open-drain is
// disabled so the pin can source current; when off, open-drain is
// re-enabled.
func (l *LinkLayer) SetPower(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkOpen("set_power"); err != nil {
		return err
	}
	return l.setOpenDrain("set_power", !on)
}

// Close releases the underlying Transceiver. Idempotent; every operation
// after Close fails with BusClosed.
func (l *LinkLayer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.t.Close(); err != nil {
		return newErr("close", Transport, err)
	}
	return nil
}
