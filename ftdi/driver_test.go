// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ftdi

import (
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/d2xx"
	"periph.io/x/d2xx/d2xxtest"
)

func TestDriver(t *testing.T) {
	defer reset(t)
	drv.numDevices = func() (int, error) {
		return 1, nil
	}
	drv.d2xxOpen = func(i int) (d2xx.Handle, d2xx.Err) {
		if i != 0 {
			t.Fatalf("unexpected index %d", i)
		}
		d := &d2xxtest.Fake{
			DevType: uint32(DevTypeFT232R),
			Vid:     0x0403,
			Pid:     0x6014,
			Data:    [][]byte{{}, {0}},
		}
		return d, 0
	}
	if b, err := drv.Init(); !b || err != nil {
		t.Fatalf("Init() = %t, %v", b, err)
	}
}

func TestFT232R_OneWire(t *testing.T) {
	defer reset(t)
	drv.numDevices = func() (int, error) {
		return 1, nil
	}
	drv.d2xxOpen = func(i int) (d2xx.Handle, d2xx.Err) {
		d := &d2xxtest.Fake{
			DevType: uint32(DevTypeFT232R),
			Vid:     0x0403,
			Pid:     0x6014,
			Data:    [][]byte{{}, {0}},
		}
		return d, 0
	}
	if b, err := drv.Init(); !b || err != nil {
		t.Fatalf("Init() = %t, %v", b, err)
	}
	all := All()
	if len(all) != 1 {
		t.Fatalf("expected one device, got %d", len(all))
	}
	f, ok := all[0].(*FT232R)
	if !ok {
		t.Fatalf("expected *FT232R, got %T", all[0])
	}

	bus, err := f.OneWire(gpio.PullUp)
	if err != nil {
		t.Fatalf("OneWire() = %v", err)
	}
	if _, err := f.OneWire(gpio.PullUp); err == nil {
		t.Fatal("OneWire() should have failed while already in use")
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	// usingOneWire must have cleared on Close so the bus can be reopened.
	bus2, err := f.OneWire(gpio.PullUp)
	if err != nil {
		t.Fatalf("reopen OneWire() = %v", err)
	}
	if err := bus2.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
}

func reset(t *testing.T) {
	drv.reset()
}

func init() {
	reset(nil)
}
