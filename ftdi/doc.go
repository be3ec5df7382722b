// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ftdi implements support for popular FTDI devices.
//
// The supported devices (FT232H/FT232R) expose their D-bus/C-bus header
// pins as periph.io/x/conn/v3/gpio.PinIO, and build a 1-wire bus
// (github.com/rmtbus/onewire/onewire) bit-banged over one of those pins: MPSSE
// command sequences on the FT232H, synchronous bit-bang mode on the
// FT232R. Neither chip's I²C, SPI, UART, or JTAG engines are used; 1-wire
// has no fixed clock for them to synchronize to.
//
// Use build tag periph_host_ftdi_debug to enable verbose debugging.
//
// # More details
//
// See https://periph.io/device/ftdi/ for more details, and how to configure
// the host to be able to use this driver.
//
// # Datasheets
//
// http://www.ftdichip.com/Support/Documents/DataSheets/ICs/DS_FT232R.pdf
//
// http://www.ftdichip.com/Support/Documents/DataSheets/ICs/DS_FT232H.pdf
package ftdi
