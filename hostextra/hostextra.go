// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hostextra registers the one-wire transceiver backends that
// depend on third party packages, namely the FTDI MPSSE backend which
// requires periph.io/x/d2xx.
package hostextra

import (
	"periph.io/x/conn/v3/driver/driverreg"

	// Make sure the FTDI driver is registered.
	_ "github.com/rmtbus/onewire/ftdi"
)

// Init calls driverreg.Init() and returns it as-is.
//
// The difference with host.Init() is that hostextra.Init() includes the
// drivers that depend on third party packages, in this case
// periph.io/x/d2xx.
func Init() (*driverreg.State, error) {
	return driverreg.Init()
}
