// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

// Package codec implements the endian-parameterized primitive decoders the
// redo stream depends on: fixed-width integers and the two Oracle SCN wire
// encodings (regular and reversed-header).
package codec

// SCN is a system commit number: a monotonically increasing identifier
// assigned by the database to each commit.
type SCN uint64

// ZeroSCN is the sentinel value denoted by an all-ones 48-bit pattern on
// the wire.
const ZeroSCN SCN = 0xFFFFFFFFFFFF

// scnSixtyFourBitFloor is the smallest SCN value that must be encoded using
// the 64-bit flag-bit form rather than the 48-bit form.
const scnSixtyFourBitFloor SCN = 0x800000000000

// Codec decodes and encodes the fixed-width integers and SCNs found in
// Oracle redo log headers and records. A single Codec value is bound once
// bootstrap determines the database's endianness; everything downstream of
// that point takes a Codec by interface value and is endian-agnostic.
type Codec interface {
	// Endian reports which byte order this codec implements.
	Endian() Endianness

	Read16(buf []byte) uint16
	Read32(buf []byte) uint32
	Read56(buf []byte) uint64
	Read64(buf []byte) uint64

	Write16(buf []byte, v uint16)
	Write32(buf []byte, v uint32)
	Write56(buf []byte, v uint64)
	Write64(buf []byte, v uint64)

	// ReadSCN decodes the regular SCN encoding: a high bit in byte[5]
	// (little-endian) or byte[0] (big-endian) flags the 64-bit form.
	ReadSCN(buf []byte) SCN
	// ReadSCNReversed decodes the reversed-header SCN encoding used in
	// certain record headers: the high-bit flag lives in byte[1] instead
	// of byte[5].
	ReadSCNReversed(buf []byte) SCN
	// WriteSCN encodes val using the regular SCN encoding, choosing the
	// 48-bit or 64-bit form based on magnitude.
	WriteSCN(buf []byte, val SCN)
}

// Endianness identifies which byte order a Codec implements.
type Endianness int

const (
	// Little identifies the little-endian codec.
	Little Endianness = iota
	// Big identifies the big-endian codec.
	Big
)

// For binds a Codec by endianness name, as reported by the catalog's
// bootstrap query ("Big" or anything else for little).
func For(endianString string) Codec {
	if endianString == "Big" {
		return BigEndian
	}
	return LittleEndian
}

func isAllFF(buf []byte) bool {
	for i := 0; i < 6; i++ {
		if buf[i] != 0xFF {
			return false
		}
	}
	return true
}
