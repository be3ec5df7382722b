// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import "time"

// Transceiver is the port a LinkLayer drives: the primitive that emits
// and captures a sequence of timed pulses on a single open-drain,
// pulled-up GPIO pin. It models a pulse-generating peripheral (an "RMT"
// block) but is equally satisfiable by a bit-banged software
// implementation — see the ftdi and gpioioctl packages for two such
// backends.
//
// A Transceiver is bound to one pin at construction time; none of its
// methods take a pin argument.
type Transceiver interface {
	// ConfigureOutput prepares the transmit channel. idleLevel is the
	// level the pin is driven to when no transmission is in progress
	// (normally High, since 1-wire is open-drain with a pull-up).
	ConfigureOutput(idleLevel Level) error

	// ConfigureInput prepares the receive channel. idleThreshold is the
	// minimum gap, once capture has started, that terminates a captured
	// frame. filterTicksThreshold discards glitches shorter than this many
	// ticks; bufferSize bounds the number of signals a single Read can
	// return.
	ConfigureInput(idleLevel Level, idleThreshold time.Duration, filterTicksThreshold, bufferSize int) error

	// MakeBidirectional ties the input and output channels to the same
	// physical pin, configured open-drain with optional active pull-up.
	MakeBidirectional(pullUp bool) error

	// Write blocks until signals has been transmitted in full. It may be
	// driven concurrently with an active receive.
	Write(signals SignalBuffer) error

	// StartReading arms the receive channel; Read then blocks for the
	// next captured frame.
	StartReading() error
	// Read blocks until a frame is captured or the idle threshold is
	// reached, and returns the captured signals.
	Read() (SignalBuffer, error)
	// StopReading disarms the receive channel.
	StopReading() error

	// SetIdleThreshold changes the receive idle threshold; IdleThreshold
	// returns the value currently in effect.
	SetIdleThreshold(d time.Duration) error
	IdleThreshold() time.Duration

	// SetOpenDrain toggles open-drain mode on the bound pin. Disabling it
	// lets the pin source current as a strong pull-up.
	SetOpenDrain(on bool) error

	// Close releases both channels. Idempotent.
	Close() error
}
