// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package onewire implements the 1-Wire bus protocol: a single-master,
// multi-slave, half-duplex bus addressed by pulling a shared open-drain
// line low for carefully timed intervals.
//
// The package is split into a transport-agnostic codec and state machine
// (this file, codec.go, linklayer.go, bus.go, search.go, crc.go) and a
// Transceiver port (transceiver.go) that concrete backends implement.
// BitBangTransceiver (bitbang.go) implements it over a gpio.PinIO; the
// sibling ftdi and gpioioctl packages build their buses on it. The
// sibling netlink package is a separate transport that does not use
// this package.
package onewire

// Level is the electrical state of the bus during one Signal.
type Level int

const (
	// Low is the bus pulled to ground by the active drivers.
	Low Level = 0
	// High is the bus released to its pull-up resistor.
	High Level = 1
)

// Signal is one (level, duration) pulse in a SignalBuffer. Period is
// expressed in microseconds; 0 is permitted (an instantaneous edge).
type Signal struct {
	Level  Level
	Period uint16
}

// SignalBuffer is a fixed-length ordered sequence of Signals, the unit of
// exchange between the Codec and a Transceiver. It is a passive value
// type: no behavior, no I/O.
type SignalBuffer []Signal

// NewSignalBuffer returns a SignalBuffer of the given length, all zero
// (level Low, period 0).
func NewSignalBuffer(size int) SignalBuffer {
	return make(SignalBuffer, size)
}

// Size returns the number of signals in the buffer.
func (b SignalBuffer) Size() int {
	return len(b)
}
