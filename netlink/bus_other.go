// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package netlink

import (
	"errors"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/onewire"
)

// Bus is a non-functional stand-in on platforms with no w1 kernel
// subsystem to delegate to; every method fails immediately.
type Bus struct{}

func Open(masterID uint32) (*Bus, error) {
	return nil, errors.New("netlink: w1 netlink connector is only available on linux")
}

func ListMasters() ([]uint32, error) {
	return nil, errors.New("netlink: w1 netlink connector is only available on linux")
}

func (b *Bus) Close() error          { return nil }
func (b *Bus) String() string        { return "netlink.Bus(unsupported)" }
func (b *Bus) Halt() error           { return nil }
func (b *Bus) Duplex() conn.Duplex   { return conn.Half }

func (b *Bus) Tx(w, r []byte, power onewire.Pullup) error {
	return errors.New("netlink: w1 netlink connector is only available on linux")
}

func (b *Bus) Search(alarmOnly bool) ([]onewire.Address, error) {
	return nil, errors.New("netlink: w1 netlink connector is only available on linux")
}

var _ conn.Resource = (*Bus)(nil)
var _ onewire.Bus = (*Bus)(nil)
