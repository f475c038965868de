/*
NAME
  passthrough.go

DESCRIPTION
  passthrough.go re-muxes an SI-embedded FLC object's raw chunk stream
  without decoding it.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

package flc

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/floriandotorg/pyisle/errkind"
	"github.com/floriandotorg/pyisle/model/si"
)

// canonicalSecondChunk is the fixed 16-byte placeholder spec.md §6
// substitutes for any remaining chunk of an SI-embedded FLC that is
// itself exactly 20 bytes long: a zero-length FRAME_TYPE chunk (size 16,
// type FRAME_TYPE, zero sub-chunks, 8 reserved bytes). Named for the
// common case (the second chunk) but applied wherever the size matches.
var canonicalSecondChunk = []byte{0x10, 0x00, 0x00, 0x00, 0xFA, 0xF1, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// Passthrough re-muxes an SI FLC object's raw chunk stream without
// decoding it: the first chunk is copied verbatim, and every remaining
// chunk is replaced with canonicalSecondChunk if it is exactly 20 bytes
// long (an embedded preamble the source container inserts at any such
// chunk, not only the second), otherwise appended after stripping its
// own first 20 bytes — a chunk shorter than 20 bytes contributes nothing,
// matching the original's unconditional `chunk[20:]` slice.
func Passthrough(obj *si.Object) ([]byte, error) {
	const op = "flc.Passthrough"
	if obj.FileType != si.FLC {
		return nil, errkind.New(errkind.MalformedInput, op, errors.Errorf("object file type is %v, want FLC", obj.FileType))
	}
	if len(obj.ChunkSizes) < 1 {
		return nil, errkind.New(errkind.MalformedInput, op, errors.New("FLC object has no chunks"))
	}

	var out bytes.Buffer
	offset := 0

	first := obj.ChunkSizes[0]
	if first > len(obj.Data) {
		return nil, errkind.New(errkind.MalformedInput, op, errors.Errorf("first chunk size %d exceeds data length %d", first, len(obj.Data)))
	}
	out.Write(obj.Data[:first])
	offset += first

	for i, size := range obj.ChunkSizes[1:] {
		if offset+size > len(obj.Data) {
			return nil, errkind.New(errkind.MalformedInput, op, errors.Errorf("chunk %d size %d exceeds remaining data", i+1, size))
		}
		chunk := obj.Data[offset : offset+size]
		if size == 20 {
			out.Write(canonicalSecondChunk)
		} else if size > 20 {
			out.Write(chunk[20:])
		}
		// size < 20: contributes nothing, same as chunk[20:] on a short slice.
		offset += size
	}

	return out.Bytes(), nil
}
