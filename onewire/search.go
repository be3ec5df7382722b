// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

// DeviceID is a 64-bit 1-wire device identifier. Byte 0 (the low byte)
// is the family code; byte 7 (the high byte) is the CRC-8 of bytes 0-6.
type DeviceID uint64

// Family returns the low byte of the id, the family code.
func (id DeviceID) Family() byte {
	return byte(id)
}

// CallbackAction is returned by an Enumerate callback to tell the search
// state machine how to proceed. It models the source's dedicated
// SKIP_FAMILY marker as a tagged variant rather than a magic integer, so
// it stays distinguishable from any DeviceID value.
type CallbackAction int

const (
	// Continue proceeds with normal enumeration.
	Continue CallbackAction = iota
	// SkipFamily causes the search to abandon every unexplored branch that
	// would produce another device of the same family as the one just
	// delivered.
	SkipFamily
)

// rom command bytes, spec.md §4.4.
const (
	romMatch       = 0x55
	romSkip        = 0xCC
	romSearch      = 0xF0
	romRead        = 0x33
	romSearchAlarm = 0xEC
)

// searchState is the transient state of one enumeration traversal.
type searchState struct {
	id                   uint64
	lastUnexplored       int
	lastUnexploredFamily int
	previousUnexplored   int
}

// deliver is called once per fully-received, CRC-valid device id. stop
// requests that the whole enumeration end immediately, without
// consulting lastUnexplored/lastUnexploredFamily — used by the
// family-filter and ping wrappers to cut the walk short.
type deliverFunc func(DeviceID) (action CallbackAction, stop bool)

// runSearch is the iterative binary-tree walk described in spec.md §4.5.
// startID and fixedBits seed the traversal (plain search: 0/-1; family
// search: family/8; ping: id/64). forceGraceful makes a (1,1)
// "no device responded" response end the walk silently instead of
// failing BusErrorKind; only Ping sets it. Ping's walk takes the probed
// id's bit at each collision and the responding bit otherwise, so some
// device stays selected unless one leaves the bus mid-walk; such a walk
// then reports "not found" rather than an error.
func (b *Bus) runSearch(alarmOnly bool, startID uint64, fixedBits int, deliver deliverFunc, forceGraceful bool) error {
	state := searchState{
		id:                   startID,
		lastUnexplored:       -1,
		lastUnexploredFamily: -1,
		previousUnexplored:   fixedBits,
	}

	for {
		present, err := b.link.Reset()
		if err != nil {
			return err
		}
		if !present {
			// No device answered this reset: enumeration is complete (this
			// is the normal, successful end of the walk, not a failure —
			// an empty bus yields zero callback invocations).
			return nil
		}

		cmd := byte(romSearch)
		if alarmOnly {
			cmd = romSearchAlarm
		}
		if err := b.link.WriteByte(cmd, false); err != nil {
			return err
		}

		state.lastUnexplored = -1
		state.lastUnexploredFamily = -1

		for p := 0; p < 64; p++ {
			bBit, err := b.link.ReadBits(1)
			if err != nil {
				return err
			}
			cBit, err := b.link.ReadBits(1)
			if err != nil {
				return err
			}

			var chosen uint64
			switch {
			case bBit == 1 && cBit == 1:
				if forceGraceful || alarmOnly {
					return nil
				}
				return newErr("search", BusErrorKind, nil)
			case bBit == 0 && cBit == 0:
				switch {
				case p < state.previousUnexplored:
					chosen = (state.id >> uint(p)) & 1
				case p == state.previousUnexplored:
					chosen = 1
				default:
					chosen = 0
				}
				if chosen == 0 {
					if p < 8 {
						state.lastUnexploredFamily = p
					}
					state.lastUnexplored = p
				}
			default:
				chosen = bBit
			}

			state.id = (state.id &^ (uint64(1) << uint(p))) | (chosen << uint(p))
			if err := b.link.WriteBits(chosen, 1, false); err != nil {
				return err
			}
		}

		if got := byte(state.id >> 56); got != CRC8ID(state.id) {
			return newErr("search", CRCErrorKind, nil)
		}

		action, stop := deliver(DeviceID(state.id))
		if stop {
			return nil
		}
		if action == SkipFamily {
			state.previousUnexplored = state.lastUnexploredFamily
		} else {
			state.previousUnexplored = state.lastUnexplored
		}
		if state.previousUnexplored == -1 {
			return nil
		}
	}
}

// Enumerate walks the bus's 1-wire search tree, delivering each
// discovered device id to cb in turn. If opts.Family is non-nil, only
// devices of that family are visited (the traversal is cut short once
// no device of that family remains). If opts.AlarmOnly is set, only
// devices currently in an alarm condition answer the search.
//
// An empty bus (reset finds no presence pulse at all) is not an error:
// cb is simply never invoked.
func (b *Bus) Enumerate(opts EnumerateOptions, cb func(DeviceID) CallbackAction) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return newErr("enumerate", BusClosed, nil)
	}
	if opts.Family != nil {
		family := *opts.Family
		return b.runSearch(opts.AlarmOnly, uint64(family), 8, func(id DeviceID) (CallbackAction, bool) {
			if id.Family() != family {
				return Continue, true
			}
			return cb(id), false
		}, false)
	}
	return b.runSearch(opts.AlarmOnly, 0, -1, func(id DeviceID) (CallbackAction, bool) {
		return cb(id), false
	}, false)
}

// EnumerateOptions configures Bus.Enumerate.
type EnumerateOptions struct {
	// AlarmOnly restricts the search to devices currently in alarm.
	AlarmOnly bool
	// Family, if non-nil, restricts the search to devices of this family
	// code.
	Family *byte
}

// Ping reports whether id is present. It performs a single-shot search
// forced down id's path at every collision and compares the first
// (only) device delivered against id; the walk is abandoned after that
// first delivery regardless of what remains unexplored.
func (b *Bus) Ping(id DeviceID) (bool, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return false, newErr("ping", BusClosed, nil)
	}
	var found bool
	err := b.runSearch(false, uint64(id), 64, func(got DeviceID) (CallbackAction, bool) {
		found = got == id
		return Continue, true
	}, true)
	return found, err
}
