// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package netlink

import (
	"errors"

	"periph.io/x/conn/v3/driver/driverreg"
)

// driverW1 registers this package with driverreg so host.Init reports
// whether the kernel's w1 subsystem is usable on this machine. It does
// not itself open any Bus — that stays an explicit Open call, since a
// netlink.Bus is bound to one master id, not a singleton like a GPIO
// chip's pin set.
type driverW1 struct{}

func (d *driverW1) String() string {
	return "w1-netlink"
}

func (d *driverW1) Prerequisites() []string {
	return nil
}

func (d *driverW1) After() []string {
	return nil
}

// Init reports whether the kernel w1 subsystem has at least one master
// and/or device registered, by checking /sys/bus/w1/devices the same
// way this package always has.
func (d *driverW1) Init() (bool, error) {
	if !isLinux {
		return false, errors.New("w1 netlink connector is only available on linux")
	}
	if !isOneWireAvailable() {
		return false, errors.New("no w1 devices found in /sys/bus/w1/devices")
	}
	return true, nil
}

var drvW1 driverW1

func init() {
	driverreg.MustRegister(&drvW1)
}
