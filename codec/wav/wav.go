/*
NAME
  wav.go

DESCRIPTION
  wav.go wraps an SI WAV object's raw sub-chunks in a minimal RIFF/WAVE
  container.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package wav wraps an SI WAV object's raw sub-chunks in a minimal
// RIFF/WAVE container. Unlike a general-purpose WAV encoder, it does not
// synthesise a format header from sample-rate/channel/bit-depth
// metadata: the source container already carries a valid `fmt ` chunk as
// its first sub-chunk, so this package only has to frame it and the
// remaining audio data correctly.
package wav

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/floriandotorg/pyisle/errkind"
	"github.com/floriandotorg/pyisle/model/si"
)

// Write re-muxes obj, which must be an si.WAV object, as RIFF/WAVE: the
// first sub-chunk becomes the `fmt ` chunk, the remainder becomes the
// `data` chunk. Per spec.md §6, an odd-length payload is padded with a
// trailing zero byte (the RIFF chunk-alignment rule), which is reflected
// in the written bytes but not in the chunk's declared size.
func Write(obj *si.Object) ([]byte, error) {
	const op = "wav.Write"
	if obj.FileType != si.WAV {
		return nil, errkind.New(errkind.MalformedInput, op, errors.Errorf("object file type is %v, want WAV", obj.FileType))
	}
	if len(obj.ChunkSizes) < 1 {
		return nil, errkind.New(errkind.MalformedInput, op, errors.New("WAV object has no chunks"))
	}

	fmtLen := obj.ChunkSizes[0]
	if fmtLen > len(obj.Data) {
		return nil, errkind.New(errkind.MalformedInput, op, errors.Errorf("first chunk size %d exceeds data length %d", fmtLen, len(obj.Data)))
	}
	fmtChunk := obj.Data[:fmtLen]
	data := obj.Data[fmtLen:]

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	writeU32(&buf, 0) // patched below
	buf.WriteString("WAVE")

	writeSubChunk(&buf, "fmt ", fmtChunk)
	writeSubChunk(&buf, "data", data)

	out := buf.Bytes()
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))
	return out, nil
}

func writeSubChunk(buf *bytes.Buffer, id string, payload []byte) {
	buf.WriteString(id)
	writeU32(buf, uint32(len(payload)))
	buf.Write(payload)
	if len(payload)%2 != 0 {
		buf.WriteByte(0)
	}
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
