// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpioioctl

import (
	"testing"

	"periph.io/x/conn/v3/gpio/gpiotest"
)

// TestOneWire exercises open, close and reopen over the same pin.
// gpiotest.Pin stands in for a real *GPIOLine so this runs without a
// GPIO character device, the same way ftdi's OneWire tests run against
// d2xxtest.Fake instead of real silicon.
func TestOneWire(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO4", Num: 4}

	bus, err := OneWire(pin, true)
	if err != nil {
		t.Fatalf("OneWire() = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	// Closing again must be a no-op, and the pin must be free to reopen.
	if err := bus.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
	bus2, err := OneWire(pin, true)
	if err != nil {
		t.Fatalf("reopen OneWire() = %v", err)
	}
	if err := bus2.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
}
