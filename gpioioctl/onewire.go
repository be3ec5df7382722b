// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpioioctl

import (
	"periph.io/x/conn/v3/gpio"

	"github.com/rmtbus/onewire/onewire"
)

// OneWire returns a 1-wire bus driven over line, using the kernel GPIO
// v2 character device's ioctl-based line value get/set as the
// Transceiver's primitive instead of a hardware pulse engine.
//
// line only needs to satisfy gpio.PinIO (every *GPIOLine does); this
// keeps the 1-wire wiring testable against periph's gpiotest.Pin
// without a real GPIO character device, the same way ftdi's OneWire
// is tested against d2xxtest.Fake rather than real silicon.
//
// As with every software backend in this module, timing is host-paced:
// each pulse costs at least one ioctl round trip, so the achievable bus
// speed and jitter depend entirely on scheduling latency on the host
// running this process — line should be requested with no edge
// detection armed, since onewire.BitBangTransceiver polls it directly.
func OneWire(line gpio.PinIO, pullUp bool) (*onewire.Bus, error) {
	return onewire.Open(onewire.NewBitBangTransceiver(line), pullUp)
}
