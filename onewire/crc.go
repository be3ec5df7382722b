// Copyright 2026 The rmtbus Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package onewire

// crc8Poly is 0x31 (x^8 + x^5 + x^4 + 1) bit-reflected, the Maxim/Dallas
// 1-wire CRC-8 polynomial as consumed LSB-first.
const crc8Poly = 0x8C

// crc8Update folds one byte into a running reflected CRC-8.
func crc8Update(crc, b byte) byte {
	crc ^= b
	for i := 0; i < 8; i++ {
		if crc&1 != 0 {
			crc = (crc >> 1) ^ crc8Poly
		} else {
			crc >>= 1
		}
	}
	return crc
}

// CRC8 computes the Maxim/Dallas reflected CRC-8 over an arbitrary byte
// sequence, initial value 0.
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc = crc8Update(crc, b)
	}
	return crc
}

// CRC8ID computes CRC8 over the low 7 bytes of id (bytes 0..6, LSB
// first) — the portion of a 64-bit device id that the high byte's CRC
// is expected to validate.
func CRC8ID(id uint64) byte {
	var b [7]byte
	for i := range b {
		b[i] = byte(id >> uint(8*i))
	}
	return CRC8(b[:])
}
