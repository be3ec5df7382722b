// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import "time"

// simDevice is one simulated slave: a fixed 64-bit id and whether it is
// currently in an alarm condition (relevant only to search-alarm).
type simDevice struct {
	id    uint64
	alarm bool
}

// fakePhase tracks what the simulator expects its next Read to produce,
// set by the most recent Write.
type fakePhase int

const (
	fakeIdle fakePhase = iota
	fakeAfterReset
	fakeRespondRead
)

// fakeTransceiver is an in-memory Transceiver that models a handful of
// 1-wire slaves closely enough to exercise Reset, search/Enumerate and
// Ping without real hardware: it tracks, for the search currently in
// progress, which simulated devices are still "in the race" at the
// current bit position, and answers each read pair (b, complement) the
// way an open-drain AND of those devices would.
//
// It does not model device-specific data registers: WriteByte/ReadByte
// outside of a ROM command/search sequence are accepted but produce an
// all-ones response, since no testable property in this package depends
// on per-device payload behavior.
type fakeTransceiver struct {
	devices []simDevice

	idle      time.Duration
	openDrain bool
	closed    bool

	phase          fakePhase
	pendingBits    int
	resetDelay     time.Duration
	noPresenceOnce bool

	inSearch  bool
	alarmOnly bool
	bitPos    int
	awaitingC bool
	candidate []int
}

func newFakeTransceiver(devices ...simDevice) *fakeTransceiver {
	return &fakeTransceiver{devices: devices, openDrain: true}
}

func (f *fakeTransceiver) ConfigureOutput(idleLevel Level) error { return nil }

func (f *fakeTransceiver) ConfigureInput(idleLevel Level, idleThreshold time.Duration, filterTicksThreshold, bufferSize int) error {
	f.idle = idleThreshold
	return nil
}

func (f *fakeTransceiver) MakeBidirectional(pullUp bool) error { return nil }

func (f *fakeTransceiver) StartReading() error { return nil }
func (f *fakeTransceiver) StopReading() error  { return nil }

func (f *fakeTransceiver) SetIdleThreshold(d time.Duration) error { f.idle = d; return nil }
func (f *fakeTransceiver) IdleThreshold() time.Duration          { return f.idle }

func (f *fakeTransceiver) SetOpenDrain(on bool) error { f.openDrain = on; return nil }

func (f *fakeTransceiver) Close() error { f.closed = true; return nil }

// isResetStimulus reports whether signals is exactly the two-pulse
// reset shape emitted by LinkLayer.Reset.
func isResetStimulus(signals SignalBuffer) bool {
	return len(signals) == 2 &&
		signals[0].Level == Low && signals[0].Period == ResetLow &&
		signals[1].Level == High && signals[1].Period == ResetHigh
}

// isReadStimulus reports whether signals is the clocking pattern
// EncodeRead produces: every pair is (ReadLow, ReadHigh), regardless of
// how many bits are being clocked out. EncodeWrite never produces this
// exact pairing (its high period is IOTimeSlot-low, which is never
// ReadHigh for either bit value), so the two are unambiguous.
func isReadStimulus(signals SignalBuffer) bool {
	if len(signals) == 0 || len(signals)%2 != 0 {
		return false
	}
	for i := 0; i < len(signals); i += 2 {
		lo, hi := signals[i], signals[i+1]
		if lo.Level != Low || lo.Period != ReadLow || hi.Level != High || hi.Period != ReadHigh {
			return false
		}
	}
	return true
}

func (f *fakeTransceiver) candidateIndices(alarmOnly bool) []int {
	var out []int
	for i, d := range f.devices {
		if !alarmOnly || d.alarm {
			out = append(out, i)
		}
	}
	return out
}

func (f *fakeTransceiver) anyCandidateHasBit(bit uint64) bool {
	for _, ci := range f.candidate {
		if (f.devices[ci].id>>uint(f.bitPos))&1 == bit {
			return true
		}
	}
	return false
}

func (f *fakeTransceiver) Write(signals SignalBuffer) error {
	if isResetStimulus(signals) {
		f.phase = fakeAfterReset
		f.inSearch = false
		f.awaitingC = false
		return nil
	}
	if isReadStimulus(signals) {
		f.phase = fakeRespondRead
		f.pendingBits = len(signals) / 2
		return nil
	}

	n := len(signals) / 2
	v, err := Decode(signals, 0, n)
	if err != nil {
		return err
	}

	switch {
	case n == 8 && !f.inSearch:
		switch byte(v) {
		case romSearch:
			f.inSearch = true
			f.alarmOnly = false
			f.candidate = f.candidateIndices(false)
			f.bitPos = 0
			f.awaitingC = false
		case romSearchAlarm:
			f.inSearch = true
			f.alarmOnly = true
			f.candidate = f.candidateIndices(true)
			f.bitPos = 0
			f.awaitingC = false
		}
	case f.inSearch && n == 1:
		chosen := v & 1
		var next []int
		for _, ci := range f.candidate {
			if (f.devices[ci].id>>uint(f.bitPos))&1 == chosen {
				next = append(next, ci)
			}
		}
		f.candidate = next
		f.bitPos++
		if f.bitPos == 64 {
			f.inSearch = false
		}
	}
	return nil
}

func (f *fakeTransceiver) Read() (SignalBuffer, error) {
	switch f.phase {
	case fakeAfterReset:
		f.phase = fakeIdle
		if f.resetDelay > 0 {
			time.Sleep(f.resetDelay)
		}
		if len(f.devices) == 0 || f.noPresenceOnce {
			f.noPresenceOnce = false
			return SignalBuffer{}, nil
		}
		return SignalBuffer{{Level: Low, Period: ResetLow}, {Level: High, Period: 70}, {Level: Low, Period: 40}}, nil
	case fakeRespondRead:
		f.phase = fakeIdle
		n := f.pendingBits
		if f.inSearch && n == 1 {
			has0 := f.anyCandidateHasBit(0)
			has1 := f.anyCandidateHasBit(1)
			b := uint64(1)
			if has0 {
				b = 0
			}
			c := uint64(1)
			if has1 {
				c = 0
			}
			var bit uint64
			if !f.awaitingC {
				bit = b
				f.awaitingC = true
			} else {
				bit = c
				f.awaitingC = false
			}
			return EncodeWrite(bit, 1), nil
		}
		return EncodeWrite(^uint64(0), n), nil
	default:
		return SignalBuffer{}, nil
	}
}

var _ Transceiver = (*fakeTransceiver)(nil)

// idWithCRC returns a 64-bit id with byte 0 set to family, bytes 1-6 set
// from serial (low 48 bits), and byte 7 filled in with the correct
// CRC-8, so simulated devices always carry a valid id.
func idWithCRC(family byte, serial uint64) uint64 {
	id := uint64(family) | (serial&0xffffffffffff)<<8
	return id | uint64(CRC8ID(id))<<56
}
