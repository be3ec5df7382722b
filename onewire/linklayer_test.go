// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import (
	"testing"
	"time"
)

// TestResetPresence is scenario S5: reset on an empty bus returns false,
// on a bus with at least one device returns true.
func TestResetPresence(t *testing.T) {
	empty, err := NewLinkLayer(newFakeTransceiver(), true)
	if err != nil {
		t.Fatalf("NewLinkLayer: %v", err)
	}
	present, err := empty.Reset()
	if err != nil || present {
		t.Fatalf("empty bus: got (%v, %v), want (false, nil)", present, err)
	}

	occupied, err := NewLinkLayer(newFakeTransceiver(simDevice{id: idWithCRC(0x28, 1)}), true)
	if err != nil {
		t.Fatalf("NewLinkLayer: %v", err)
	}
	present, err = occupied.Reset()
	if err != nil || !present {
		t.Fatalf("occupied bus: got (%v, %v), want (true, nil)", present, err)
	}
}

// TestResetTimeout is the second half of S5: a reset whose response
// never arrives within the timeout window reports false, not an error.
func TestResetTimeout(t *testing.T) {
	old := resetResponseTimeout
	resetResponseTimeout = 20 * time.Millisecond
	defer func() { resetResponseTimeout = old }()

	ft := newFakeTransceiver(simDevice{id: idWithCRC(0x28, 1)})
	ft.resetDelay = 100 * time.Millisecond
	link, err := NewLinkLayer(ft, true)
	if err != nil {
		t.Fatalf("NewLinkLayer: %v", err)
	}
	present, err := link.Reset()
	if err != nil || present {
		t.Fatalf("got (%v, %v), want (false, nil)", present, err)
	}
}

func TestLinkLayerClosedOperations(t *testing.T) {
	link, err := NewLinkLayer(newFakeTransceiver(), true)
	if err != nil {
		t.Fatalf("NewLinkLayer: %v", err)
	}
	if err := link.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := link.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := link.Reset(); !isKind(err, BusClosed) {
		t.Fatalf("Reset after Close: got %v, want BusClosed", err)
	}
	if err := link.WriteByte(0, false); !isKind(err, BusClosed) {
		t.Fatalf("WriteByte after Close: got %v, want BusClosed", err)
	}
}

func TestWriteBitsInvalidArgument(t *testing.T) {
	link, err := NewLinkLayer(newFakeTransceiver(), true)
	if err != nil {
		t.Fatalf("NewLinkLayer: %v", err)
	}
	if err := link.WriteBits(0, 65, false); !isKind(err, InvalidArgument) {
		t.Fatalf("count 65: got %v, want InvalidArgument", err)
	}
	if _, err := link.ReadBits(-1); !isKind(err, InvalidArgument) {
		t.Fatalf("count -1: got %v, want InvalidArgument", err)
	}
}
