// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package host registers the backends of this module that need no
// third-party driver (on Linux: gpioioctl and netlink). The ftdi backend
// is registered by package hostextra instead.
package host

import "periph.io/x/conn/v3/driver/driverreg"

// Init calls driverreg.Init() and returns it as-is.
//
// The only difference is that by calling host.Init(), you are guaranteed to
// have the drivers this package imports implicitly loaded.
func Init() (*driverreg.State, error) {
	return driverreg.Init()
}
