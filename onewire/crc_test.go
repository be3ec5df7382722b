// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

import "testing"

// TestCRC8Regression is scenario S3: every listed id's high byte is the
// CRC-8 of its low 7 bytes.
func TestCRC8Regression(t *testing.T) {
	ids := []uint64{
		0xA2000000_01B81C02,
		0xD7AA13C0_29169085,
		0xA6000801_94701310,
		0x2E000002_8FAD4928,
		0x3D000000_00000001,
		0x51000000_FF2A5A28,
		0xFA000001_FF2A5A28,
	}
	for _, id := range ids {
		want := byte(id >> 56)
		if got := CRC8ID(id); got != want {
			t.Errorf("CRC8ID(%#016x) = %#02x, want %#02x", id, got, want)
		}
	}
}

func TestCRC8Corruption(t *testing.T) {
	id := uint64(0x51000000_FF2A5A28)
	good := CRC8ID(id)
	corrupted := id ^ (1 << 3)
	if CRC8ID(corrupted) == good {
		t.Fatalf("corrupted id produced the same CRC-8 as the original")
	}
}
