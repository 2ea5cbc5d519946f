// Copyright 2024 The bgzidx Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bgzf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

var (
	// ErrInvalidHeader indicates that block framing does not match the BGZF
	// layout (wrong magic bytes, compression method or extra subfield).
	ErrInvalidHeader = errors.New("bgzf: invalid block header")

	// ErrChecksum indicates that a decompressed payload disagrees with the
	// CRC32 or size recorded in the block trailer.
	ErrChecksum = errors.New("bgzf: checksum mismatch")

	// ErrBlockSize indicates that a payload does not fit in a single block.
	ErrBlockSize = errors.New("bgzf: block size exceeded")

	// ErrTruncated indicates that the underlying byte source ended inside a
	// block or before the end-of-stream marker block.
	ErrTruncated = errors.New("bgzf: truncated stream")

	// ErrInvalidAddress indicates a virtual address whose data offset lies
	// beyond the payload of the block it points into.
	ErrInvalidAddress = errors.New("bgzf: invalid virtual address")
)

const (
	// Fixed gzip member header plus the 6-byte BC extra subfield.
	headerSize = 18
	// CRC32 of the payload followed by the payload size.
	trailerSize = 8

	// RFC 1952 values: gzip magic, deflate, FEXTRA, OS unknown.
	gzipID1           = 0x1f
	gzipID2           = 0x8b
	gzipDeflate       = 8
	gzipFlagExtra     = 4
	gzipOSUnknown     = 0xff
	extraSubfieldID1  = 0x42
	extraSubfieldID2  = 0x43
	extraSubfieldSize = 6
)

// eofMarker is the canonical empty block that terminates every well-formed
// BGZF stream.
var eofMarker = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// EncodeBlock returns a single BGZF block that encodes the bytes in data.
// It fails with ErrBlockSize if data exceeds MaximumBlockSize or is too
// incompressible to frame as one block.
func EncodeBlock(data []byte) ([]byte, error) {
	if len(data) > MaximumBlockSize {
		return nil, fmt.Errorf("%w: payload is %d bytes", ErrBlockSize, len(data))
	}

	var buffer bytes.Buffer
	buffer.Write(make([]byte, headerSize))

	fw, err := flate.NewWriter(&buffer, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("initializing deflate writer: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("writing compressed data: %v", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("closing deflate writer: %v", err)
	}

	var trailer [trailerSize]byte
	binary.LittleEndian.PutUint32(trailer[0:], crc32.ChecksumIEEE(data))
	binary.LittleEndian.PutUint32(trailer[4:], uint32(len(data)))
	buffer.Write(trailer[:])

	// BSIZE is the total block length minus one and must fit in 16 bits.
	bsize := buffer.Len() - 1
	if bsize > 0xffff {
		return nil, fmt.Errorf("%w: compressed block is %d bytes", ErrBlockSize, bsize+1)
	}

	encoded := buffer.Bytes()
	copy(encoded, []byte{
		gzipID1, gzipID2, gzipDeflate, gzipFlagExtra,
		0x00, 0x00, 0x00, 0x00, // MTIME ("none")
		0x00, gzipOSUnknown,
		extraSubfieldSize, 0x00,
		extraSubfieldID1, extraSubfieldID2, 0x02, 0x00,
		byte(bsize), byte(bsize >> 8),
	})
	return encoded, nil
}

// DecodeBlock decodes a single BGZF block from r and returns the
// uncompressed payload and the number of compressed bytes consumed.  The
// end-of-stream marker decodes to an empty payload.  Decoding never reads
// past the end of the block.  A clean end of input before any header byte is
// reported as io.EOF; any other short read is reported as ErrTruncated.
func DecodeBlock(r io.Reader) ([]byte, int, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		return nil, 0, fmt.Errorf("%w: reading block header: %v", ErrTruncated, err)
	}

	if header[0] != gzipID1 || header[1] != gzipID2 {
		return nil, 0, fmt.Errorf("%w: wrong magic %x", ErrInvalidHeader, header[0:2])
	}
	if header[2] != gzipDeflate {
		return nil, 0, fmt.Errorf("%w: unexpected compression method %d", ErrInvalidHeader, header[2])
	}
	if header[3]&gzipFlagExtra == 0 {
		return nil, 0, fmt.Errorf("%w: missing extra field", ErrInvalidHeader)
	}
	if binary.LittleEndian.Uint16(header[10:12]) != extraSubfieldSize {
		return nil, 0, fmt.Errorf("%w: unexpected extra length %x", ErrInvalidHeader, header[10:12])
	}
	if header[12] != extraSubfieldID1 || header[13] != extraSubfieldID2 {
		return nil, 0, fmt.Errorf("%w: unexpected extra ID %x", ErrInvalidHeader, header[12:14])
	}
	if header[14] != 2 || header[15] != 0 {
		return nil, 0, fmt.Errorf("%w: unexpected subfield length %x", ErrInvalidHeader, header[14:16])
	}

	bsize := int(binary.LittleEndian.Uint16(header[16:18])) + 1
	if bsize < headerSize+trailerSize {
		return nil, 0, fmt.Errorf("%w: block size %d too small", ErrInvalidHeader, bsize)
	}

	rest := make([]byte, bsize-headerSize)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, 0, fmt.Errorf("%w: reading block body: %v", ErrTruncated, err)
	}
	compressed := rest[:len(rest)-trailerSize]
	trailer := rest[len(rest)-trailerSize:]

	fr := flate.NewReader(bytes.NewReader(compressed))
	data, err := io.ReadAll(fr)
	if err != nil {
		return nil, 0, fmt.Errorf("inflating payload: %v", err)
	}
	if err := fr.Close(); err != nil {
		return nil, 0, fmt.Errorf("closing deflate reader: %v", err)
	}

	if len(data) > MaximumBlockSize {
		return nil, 0, fmt.Errorf("%w: payload inflates to %d bytes", ErrBlockSize, len(data))
	}
	if got, want := crc32.ChecksumIEEE(data), binary.LittleEndian.Uint32(trailer[0:4]); got != want {
		return nil, 0, fmt.Errorf("%w: CRC32 %08x (trailer has %08x)", ErrChecksum, got, want)
	}
	if got, want := uint32(len(data)), binary.LittleEndian.Uint32(trailer[4:8]); got != want {
		return nil, 0, fmt.Errorf("%w: payload is %d bytes (trailer has %d)", ErrChecksum, got, want)
	}
	return data, bsize, nil
}
