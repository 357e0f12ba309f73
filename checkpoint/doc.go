// SPDX-License-Identifier: MIT

// Package checkpoint persists a resolution one bidegree at a time.
//
// A Record holds the prime, the algebra identifier, the bidegree (s, t) and
// the differential of the generators created there. Encode frames it as
//
//	"SSQR" | version u16 | flags u16 | prime u32 | algebra u32 | s u32 | t i32 |
//	generators u32 | columns u32 | body length u32 | body | xxhash64 u64
//
// with every integer little-endian. The body is a uvarint count of non-zero
// entries followed by (row, column, value) uvarint triples in row-major order,
// zstd-compressed when flag bit 0 is set. The trailing checksum covers header
// and body.
//
// Records live in a Store under keys of the form s{S}_t{T}.res. Backends:
//
//	file://dir          one file per key, written atomically
//	mem://              process memory
//	badger://dir        BadgerDB
//	sqlite://path       SQLite table
//	s3://bucket/prefix  S3-compatible object storage
package checkpoint
