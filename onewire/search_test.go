// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import (
	"sort"
	"testing"
)

// The three ids from scenario S4, already carrying valid CRC-8 high
// bytes (they are drawn from the S3 regression set).
const (
	s4Dev1 = 0x3D000000_00000001 // family 0x01
	s4Dev2 = 0x51000000_FF2A5A28 // family 0x28
	s4Dev3 = 0xFA000001_FF2A5A28 // family 0x28
)

func openBusWith(t *testing.T, devices ...simDevice) *Bus {
	t.Helper()
	link, err := NewLinkLayer(newFakeTransceiver(devices...), true)
	if err != nil {
		t.Fatalf("NewLinkLayer: %v", err)
	}
	bus, err := OpenWithLink(link)
	if err != nil {
		t.Fatalf("OpenWithLink: %v", err)
	}
	return bus
}

func sortedIDs(ids []DeviceID) []uint64 {
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TestEnumerateAll is the first clause of S4 and property P5: enumerate
// visits exactly the set of ids present, regardless of how the
// underlying search order discovers them.
func TestEnumerateAll(t *testing.T) {
	bus := openBusWith(t,
		simDevice{id: s4Dev3}, simDevice{id: s4Dev1}, simDevice{id: s4Dev2},
	)
	var got []DeviceID
	if err := bus.Enumerate(EnumerateOptions{}, func(id DeviceID) CallbackAction {
		got = append(got, id)
		return Continue
	}); err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	want := []uint64{s4Dev1, s4Dev2, s4Dev3}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	if gotSorted := sortedIDs(got); !equalUint64(gotSorted, want) {
		t.Fatalf("got %x, want %x", gotSorted, want)
	}
}

func TestEnumerateEmptyBus(t *testing.T) {
	bus := openBusWith(t)
	called := false
	if err := bus.Enumerate(EnumerateOptions{}, func(DeviceID) CallbackAction {
		called = true
		return Continue
	}); err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if called {
		t.Fatalf("callback invoked on empty bus")
	}
}

// TestEnumerateFamilyFilter is property P6 and S4's second/third clauses.
func TestEnumerateFamilyFilter(t *testing.T) {
	bus := openBusWith(t,
		simDevice{id: s4Dev1}, simDevice{id: s4Dev2}, simDevice{id: s4Dev3},
	)
	family01 := byte(0x01)
	var got []DeviceID
	if err := bus.Enumerate(EnumerateOptions{Family: &family01}, func(id DeviceID) CallbackAction {
		got = append(got, id)
		return Continue
	}); err != nil {
		t.Fatalf("Enumerate(family=0x01): %v", err)
	}
	if len(got) != 1 || uint64(got[0]) != s4Dev1 {
		t.Fatalf("family 0x01: got %x, want [%x]", got, s4Dev1)
	}

	family28 := byte(0x28)
	got = nil
	if err := bus.Enumerate(EnumerateOptions{Family: &family28}, func(id DeviceID) CallbackAction {
		got = append(got, id)
		return Continue
	}); err != nil {
		t.Fatalf("Enumerate(family=0x28): %v", err)
	}
	if gotSorted, want := sortedIDs(got), []uint64{s4Dev2, s4Dev3}; !equalUint64(gotSorted, want) {
		t.Fatalf("family 0x28: got %x, want %x", gotSorted, want)
	}
}

// TestEnumerateSkipFamily is S4's fourth clause and property P8:
// returning SkipFamily on the first 0x28 device yields exactly two ids
// total, the 0x01 device and the first 0x28 device delivered.
func TestEnumerateSkipFamily(t *testing.T) {
	bus := openBusWith(t,
		simDevice{id: s4Dev1}, simDevice{id: s4Dev2}, simDevice{id: s4Dev3},
	)
	var got []DeviceID
	if err := bus.Enumerate(EnumerateOptions{}, func(id DeviceID) CallbackAction {
		got = append(got, id)
		if id.Family() == 0x28 {
			return SkipFamily
		}
		return Continue
	}); err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d ids, want 2: %x", len(got), got)
	}
	if got[0].Family() != 0x28 {
		t.Fatalf("first delivered id is not from family 0x28: %x", got)
	}
}

// TestEnumerateAlarmOnly is property P7.
func TestEnumerateAlarmOnly(t *testing.T) {
	bus := openBusWith(t,
		simDevice{id: s4Dev1, alarm: false},
		simDevice{id: s4Dev2, alarm: true},
		simDevice{id: s4Dev3, alarm: false},
	)
	var got []DeviceID
	if err := bus.Enumerate(EnumerateOptions{AlarmOnly: true}, func(id DeviceID) CallbackAction {
		got = append(got, id)
		return Continue
	}); err != nil {
		t.Fatalf("Enumerate(alarmOnly): %v", err)
	}
	if len(got) != 1 || uint64(got[0]) != s4Dev2 {
		t.Fatalf("got %x, want [%x]", got, s4Dev2)
	}
}

// TestPing is S4's last clause and property P9.
func TestPing(t *testing.T) {
	bus := openBusWith(t,
		simDevice{id: s4Dev1}, simDevice{id: s4Dev2}, simDevice{id: s4Dev3},
	)
	found, err := bus.Ping(s4Dev2)
	if err != nil || !found {
		t.Fatalf("ping(present): got (%v, %v), want (true, nil)", found, err)
	}
	found, err = bus.Ping(s4Dev2 ^ 1)
	if err != nil || found {
		t.Fatalf("ping(absent): got (%v, %v), want (false, nil)", found, err)
	}
}

func TestPingEmptyBus(t *testing.T) {
	bus := openBusWith(t)
	found, err := bus.Ping(s4Dev1)
	if err != nil || found {
		t.Fatalf("got (%v, %v), want (false, nil)", found, err)
	}
}

func equalUint64(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
