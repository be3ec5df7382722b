// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// maxCapture bounds how long Read ever busy-polls the pin, even if the
// idle threshold is never reached (a stuck-low bus, or a pin that never
// settles) — a safety ceiling, not a protocol timing value.
const maxCapture = 50 * time.Millisecond

// BitBangTransceiver implements Transceiver in pure software over any
// periph gpio.PinIO: it has no hardware pulse generator, so timing is
// host-paced (time.Sleep on write, busy-poll with time.Now on read).
// This is the honest fallback every concrete backend in this module
// reduces to when no RMT-equivalent peripheral is available — see the
// ftdi and gpioioctl packages, which each construct one over their own
// pin type.
type BitBangTransceiver struct {
	pin gpio.PinIO

	pull          gpio.Pull
	openDrain     bool
	idleThreshold time.Duration
	bufferSize    int
	closed        bool
	onClose       func()
}

// NewBitBangTransceiver wraps pin. The pin must not be used concurrently
// by anything else for as long as the Transceiver is in use.
func NewBitBangTransceiver(pin gpio.PinIO) *BitBangTransceiver {
	return &BitBangTransceiver{pin: pin, idleThreshold: IdleThreshold * time.Microsecond}
}

func (b *BitBangTransceiver) ConfigureOutput(idleLevel Level) error {
	return nil
}

func (b *BitBangTransceiver) ConfigureInput(idleLevel Level, idleThreshold time.Duration, filterTicksThreshold, bufferSize int) error {
	b.idleThreshold = idleThreshold
	b.bufferSize = bufferSize
	return nil
}

func (b *BitBangTransceiver) MakeBidirectional(pullUp bool) error {
	// Without pullUp the pin's own pull setting is left as it is.
	b.pull = gpio.PullNoChange
	if pullUp {
		b.pull = gpio.PullUp
	}
	return b.releaseHigh()
}

func (b *BitBangTransceiver) releaseHigh() error {
	return b.pin.In(b.pull, gpio.NoEdge)
}

func (b *BitBangTransceiver) driveLow() error {
	return b.pin.Out(gpio.Low)
}

func (b *BitBangTransceiver) SetOpenDrain(on bool) error {
	b.openDrain = on
	if !on {
		// Strong pull-up: drive high instead of floating.
		return b.pin.Out(gpio.High)
	}
	return b.releaseHigh()
}

// Write drives signals onto the pin one at a time, sleeping each
// pulse's Period in microseconds. While open-drain, a High level
// releases the pin to its pull-up rather than driving it.
func (b *BitBangTransceiver) Write(signals SignalBuffer) error {
	for _, s := range signals {
		if s.Level == Low {
			if err := b.driveLow(); err != nil {
				return err
			}
		} else if b.openDrain {
			if err := b.releaseHigh(); err != nil {
				return err
			}
		} else if err := b.pin.Out(gpio.High); err != nil {
			return err
		}
		time.Sleep(time.Duration(s.Period) * time.Microsecond)
	}
	return nil
}

func (b *BitBangTransceiver) StartReading() error {
	return b.releaseHigh()
}

func (b *BitBangTransceiver) StopReading() error {
	return nil
}

// Read busy-polls the pin, recording one Signal per level transition,
// until idleThreshold elapses since the last transition (or bufferSize
// signals have been captured, or maxCapture is reached as a backstop).
func (b *BitBangTransceiver) Read() (SignalBuffer, error) {
	buf := NewSignalBuffer(0)
	start := time.Now()
	lastEdge := start
	last := b.pin.Read()
	for {
		now := time.Now()
		cur := b.pin.Read()
		if cur != last {
			buf = append(buf, Signal{Level: levelOf(last), Period: clampPeriod(now.Sub(lastEdge))})
			lastEdge = now
			last = cur
		}
		if now.Sub(lastEdge) >= b.idleThreshold {
			return buf, nil
		}
		if b.bufferSize > 0 && buf.Size() >= b.bufferSize {
			return buf, nil
		}
		if now.Sub(start) >= maxCapture {
			return buf, nil
		}
	}
}

func (b *BitBangTransceiver) SetIdleThreshold(d time.Duration) error {
	b.idleThreshold = d
	return nil
}

func (b *BitBangTransceiver) IdleThreshold() time.Duration {
	return b.idleThreshold
}

// OnClose registers f to run the first time Close is called. Close does
// not reconfigure the pin. Backends that gate exclusive access to the
// owning device on the transceiver's lifetime (ftdi.FT232H's
// usingOneWire, for instance) use this to clear their flag.
func (b *BitBangTransceiver) OnClose(f func()) {
	b.onClose = f
}

func (b *BitBangTransceiver) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if b.onClose != nil {
		b.onClose()
	}
	return nil
}

func levelOf(l gpio.Level) Level {
	if l == gpio.High {
		return High
	}
	return Low
}

// clampPeriod saturates d, expressed in microseconds, to uint16's range
// so a long idle gap never wraps around into a bogus short period.
func clampPeriod(d time.Duration) uint16 {
	us := d.Microseconds()
	if us > 0xFFFF {
		return 0xFFFF
	}
	return uint16(us)
}

var _ Transceiver = (*BitBangTransceiver)(nil)
