// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ftdi

import (
	"errors"

	"periph.io/x/conn/v3/gpio"

	"github.com/rmtbus/onewire/onewire"
)

// OneWire returns a 1-wire bus over D4.
//
// pull can be either gpio.PullUp or gpio.Float; an external pull-up
// resistor is required either way for reliable signaling at bus speed,
// same as the recommendation for I2C.
//
// The FT232H has no RMT-equivalent pulse generator, so this bus is
// driven host-side: onewire.BitBangTransceiver toggles D4's direction
// between input (floating high through the pull-up) and output (driven
// low) and times each pulse with the host's clock over USB, which bounds
// its practical reliability — exactly the tradeoff the chip's I2C/SPI
// ports avoid by using MPSSE's own clocked shift registers, unavailable
// here since 1-wire has no fixed clock to synchronize to.
func (f *FT232H) OneWire(pull gpio.Pull) (*onewire.Bus, error) {
	if pull != gpio.PullUp && pull != gpio.Float {
		return nil, errors.New("d2xx: 1-wire pull can only be PullUp or Float")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingOneWire {
		return nil, errors.New("d2xx: already using 1-wire")
	}
	t := onewire.NewBitBangTransceiver(f.D4)
	bus, err := onewire.Open(t, pull == gpio.PullUp)
	if err != nil {
		return nil, err
	}
	f.usingOneWire = true
	t.OnClose(func() {
		f.mu.Lock()
		f.usingOneWire = false
		f.mu.Unlock()
	})
	return bus, nil
}

// OneWire returns a 1-wire bus over D4 (alias DTR).
//
// The FT232R has no MPSSE engine at all, so unlike the FT232H this is
// the only way it ever does 1-wire: dbusPinSync, the same synchronous
// bit-bang GPIO pin that backs every other D-bus pin exposed on this
// chip (see gpio.go), doubles as the Transceiver's primitive here.
func (f *FT232R) OneWire(pull gpio.Pull) (*onewire.Bus, error) {
	if pull != gpio.PullUp && pull != gpio.Float {
		return nil, errors.New("d2xx: 1-wire pull can only be PullUp or Float")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingOneWire {
		return nil, errors.New("d2xx: already using 1-wire")
	}
	t := onewire.NewBitBangTransceiver(f.D4)
	bus, err := onewire.Open(t, pull == gpio.PullUp)
	if err != nil {
		return nil, err
	}
	f.usingOneWire = true
	t.OnClose(func() {
		f.mu.Lock()
		f.usingOneWire = false
		f.mu.Unlock()
	})
	return bus, nil
}
