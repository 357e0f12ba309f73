// SPDX-License-Identifier: MIT

package checkpoint

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/katalvlaran/sseq/fp"
)

// Version is the record format written by Encode.
const Version uint16 = 1

const (
	headerSize   = 36
	trailerSize  = 8
	flagZstd     = 1 << 0
	knownFlags   = flagZstd
	maxBodyBytes = 1 << 30
	maxEntries   = 1 << 26
)

var recordMagic = [4]byte{'S', 'S', 'Q', 'R'}

// Record is the persisted state of one bidegree: the images of the
// generators created there, one row per generator, in the basis of the
// target (the module at s = 0, the previous free module otherwise).
type Record struct {
	Prime        uint32
	Algebra      uint32
	S, T         int
	Differential *fp.Matrix
}

// Generators returns the number of generators the record describes.
func (r Record) Generators() int { return r.Differential.Rows() }

// Options controls encoding.
type Options struct {
	Compress bool
}

// Expect lists the header fields a reader requires. Columns < 0 skips the
// shape check.
type Expect struct {
	Prime   uint32
	Algebra uint32
	S, T    int
	Columns int
}

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

func codecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil {
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxBodyBytes))
	})

	return zstdEnc, zstdDec, zstdErr
}

// Encode serializes rec. The output depends only on rec and opts.
func Encode(rec Record, opts Options) ([]byte, error) {
	if rec.Differential == nil {
		return nil, fmt.Errorf("checkpoint: encode %s: nil differential", Key(rec.S, rec.T))
	}
	if rec.S < 0 {
		return nil, fmt.Errorf("checkpoint: encode: negative s %d: %w", rec.S, ErrHeaderMismatch)
	}
	m := rec.Differential
	var body []byte
	n := 0
	m.NonZero(func(int, int, uint32) { n++ })
	body = binary.AppendUvarint(body, uint64(n))
	m.NonZero(func(i, j int, x uint32) {
		body = binary.AppendUvarint(body, uint64(i))
		body = binary.AppendUvarint(body, uint64(j))
		body = binary.AppendUvarint(body, uint64(x))
	})
	var flags uint16
	if opts.Compress {
		enc, _, err := codecs()
		if err != nil {
			return nil, fmt.Errorf("checkpoint: zstd: %w", err)
		}
		body = enc.EncodeAll(body, nil)
		flags |= flagZstd
	}

	buf := make([]byte, headerSize, headerSize+len(body)+trailerSize)
	copy(buf[0:4], recordMagic[:])
	binary.LittleEndian.PutUint16(buf[4:], Version)
	binary.LittleEndian.PutUint16(buf[6:], flags)
	binary.LittleEndian.PutUint32(buf[8:], rec.Prime)
	binary.LittleEndian.PutUint32(buf[12:], rec.Algebra)
	binary.LittleEndian.PutUint32(buf[16:], uint32(rec.S))
	binary.LittleEndian.PutUint32(buf[20:], uint32(int32(rec.T)))
	binary.LittleEndian.PutUint32(buf[24:], uint32(m.Rows()))
	binary.LittleEndian.PutUint32(buf[28:], uint32(m.Cols()))
	binary.LittleEndian.PutUint32(buf[32:], uint32(len(body)))
	buf = append(buf, body...)
	buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf))

	return buf, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

// Decode parses and checksums a record.
//
// Errors: ErrCorrupt for anything that is not a well-formed version 1 record,
// including entries outside the declared shape or not below the prime.
func Decode(data []byte) (Record, error) {
	if len(data) < headerSize+trailerSize {
		return Record{}, corrupt("%d bytes is shorter than a header", len(data))
	}
	if [4]byte(data[0:4]) != recordMagic {
		return Record{}, corrupt("bad magic %q", data[0:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != Version {
		return Record{}, corrupt("unsupported version %d", v)
	}
	flags := binary.LittleEndian.Uint16(data[6:])
	if flags&^knownFlags != 0 {
		return Record{}, corrupt("unknown flags %#x", flags)
	}
	bodyLen := int(binary.LittleEndian.Uint32(data[32:]))
	if len(data) != headerSize+bodyLen+trailerSize {
		return Record{}, corrupt("length %d, header declares %d", len(data), headerSize+bodyLen+trailerSize)
	}
	end := headerSize + bodyLen
	if sum := binary.LittleEndian.Uint64(data[end:]); sum != xxhash.Sum64(data[:end]) {
		return Record{}, corrupt("checksum mismatch")
	}

	rec := Record{
		Prime:   binary.LittleEndian.Uint32(data[8:]),
		Algebra: binary.LittleEndian.Uint32(data[12:]),
		S:       int(binary.LittleEndian.Uint32(data[16:])),
		T:       int(int32(binary.LittleEndian.Uint32(data[20:]))),
	}
	p, err := fp.NewPrime(rec.Prime)
	if err != nil {
		return Record{}, corrupt("prime: %v", err)
	}
	rows := int(binary.LittleEndian.Uint32(data[24:]))
	cols := int(binary.LittleEndian.Uint32(data[28:]))
	if uint64(rows)*uint64(cols) > maxEntries {
		return Record{}, corrupt("shape %dx%d too large", rows, cols)
	}
	body := data[headerSize:end]
	if flags&flagZstd != 0 {
		_, dec, err := codecs()
		if err != nil {
			return Record{}, fmt.Errorf("checkpoint: zstd: %w", err)
		}
		if body, err = dec.DecodeAll(body, nil); err != nil {
			return Record{}, corrupt("zstd: %v", err)
		}
	}

	m := fp.NewMatrix(p, rows, cols)
	count, off := binary.Uvarint(body)
	if off <= 0 {
		return Record{}, corrupt("entry count")
	}
	last := -1
	for k := uint64(0); k < count; k++ {
		var vals [3]uint64
		for f := range vals {
			v, n := binary.Uvarint(body[off:])
			if n <= 0 {
				return Record{}, corrupt("entry %d truncated", k)
			}
			vals[f], off = v, off+n
		}
		i, j, x := vals[0], vals[1], vals[2]
		if i >= uint64(rows) || j >= uint64(cols) || x == 0 || x >= uint64(p) {
			return Record{}, corrupt("entry %d (%d, %d) = %d outside %dx%d over F_%d", k, i, j, x, rows, cols, p)
		}
		pos := int(i)*cols + int(j)
		if pos <= last {
			return Record{}, corrupt("entry %d out of order", k)
		}
		last = pos
		if err := m.SetEntry(int(i), int(j), uint32(x)); err != nil {
			return Record{}, corrupt("entry %d: %v", k, err)
		}
	}
	if off != len(body) {
		return Record{}, corrupt("%d trailing body bytes", len(body)-off)
	}
	rec.Differential = m

	return rec, nil
}

// Verify checks rec against the reader's configuration.
func (r Record) Verify(want Expect) error {
	if r.Prime != want.Prime || r.Algebra != want.Algebra {
		return fmt.Errorf("%w: record has p=%d algebra=%#x, want p=%d algebra=%#x",
			ErrAlgebraMismatch, r.Prime, r.Algebra, want.Prime, want.Algebra)
	}
	if r.S != want.S || r.T != want.T {
		return fmt.Errorf("%w: record is %s, want %s", ErrHeaderMismatch, Key(r.S, r.T), Key(want.S, want.T))
	}
	if want.Columns >= 0 && r.Differential.Cols() != want.Columns {
		return fmt.Errorf("%w: %s has %d columns, want %d", ErrHeaderMismatch, Key(r.S, r.T), r.Differential.Cols(), want.Columns)
	}

	return nil
}

// DecodeExpect is Decode followed by Verify.
func DecodeExpect(data []byte, want Expect) (Record, error) {
	rec, err := Decode(data)
	if err != nil {
		return Record{}, err
	}
	if err := rec.Verify(want); err != nil {
		return Record{}, err
	}

	return rec, nil
}
