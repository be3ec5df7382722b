// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package netlink

import "errors"

const isLinux = false

// connSocket stands in for the Linux netlink connector socket on
// platforms that don't have one: the w1 kernel subsystem this package
// talks to is Linux-specific, so every operation fails outright rather
// than silently doing nothing.
type connSocket struct{}

func newConnSocket() (*connSocket, error) {
	return nil, errors.New("netlink: w1 netlink connector is only available on linux")
}

func (s *connSocket) send(w []byte) error {
	return errors.New("netlink: w1 netlink connector is only available on linux")
}

func (s *connSocket) recv(r []byte) (int, error) {
	return 0, errors.New("netlink: w1 netlink connector is only available on linux")
}

func (s *connSocket) close() error {
	return nil
}

func isOneWireAvailable() bool {
	return false
}
