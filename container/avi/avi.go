/*
NAME
  avi.go

DESCRIPTION
  avi.go muxes a sequence of equally-sized top-down RGB frames as an
  uncompressed RIFF/AVI file.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package avi muxes a sequence of equally-sized top-down RGB frames as a
// non-indexed, uncompressed RIFF/AVI file: a single `vids` stream with
// codec tag "DIB ", one "00db" chunk per frame.
package avi

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/floriandotorg/pyisle/errkind"
)

// Source is anything that can be muxed as AVI: a fixed-size sequence of
// top-down RGB frames at a known rate. model/smk.Video and codec/flc.
// Stream both satisfy it, so Write never needs to know which decoder
// produced the frames (spec.md §9's "tagged variant" principle, applied
// to the muxer's input rather than a decoder's output).
type Source interface {
	Dimensions() (width, height int)
	Rate() int
	Frames() [][]byte
}

const (
	fourCCSize = 4
	strlSize   = 4 + 64 + 48 // "strl" + strh chunk + strf chunk, including their own headers
)

// rowSize returns the padded BGR row length in bytes.
func rowSize(width int) int {
	return (width*3 + 3) &^ 3
}

// Write muxes src as AVI to dst. The whole file is assembled in memory
// first and the RIFF size patched into the header before the single
// write to dst — the in-memory equivalent of spec.md §4.3's "seek back
// to offset 4 and patch", without requiring dst itself to be seekable.
func Write(dst io.Writer, src Source) error {
	const op = "avi.Write"

	width, height := src.Dimensions()
	fps := src.Rate()
	frames := src.Frames()
	if fps <= 0 {
		return errkind.New(errkind.MalformedInput, op, errors.Errorf("invalid frame rate %d", fps))
	}

	padded := rowSize(width)
	frameSize := padded * height

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	writeU32(&buf, 0) // patched below
	buf.WriteString("AVI ")

	buf.WriteString("LIST")
	writeU32(&buf, 4+64+124)
	buf.WriteString("hdrl")

	buf.WriteString("avih")
	writeU32(&buf, 56)
	writeU32(&buf, uint32(1_000_000/fps)) // microseconds per frame
	writeU32(&buf, uint32(frameSize))     // max bytes/sec
	writeU32(&buf, 1)                     // padding granularity
	writeU32(&buf, 0)                     // flags
	writeU32(&buf, uint32(len(frames)))   // total frames
	writeU32(&buf, 0)                     // initial frames
	writeU32(&buf, 1)                     // number of streams
	writeU32(&buf, uint32(frameSize))     // suggested buffer size
	writeU32(&buf, uint32(width))
	writeU32(&buf, uint32(height))
	buf.Write(make([]byte, 16)) // reserved

	buf.WriteString("LIST")
	writeU32(&buf, 116)
	buf.WriteString("strl")

	buf.WriteString("strh")
	writeU32(&buf, 56)
	buf.WriteString("vids")
	buf.WriteString("DIB ")
	writeU32(&buf, 0) // flags
	writeU32(&buf, 0) // priority + language
	writeU32(&buf, 0) // initial frames
	writeU32(&buf, 1) // scale
	writeU32(&buf, uint32(fps))
	writeU32(&buf, 0)                   // start
	writeU32(&buf, uint32(len(frames))) // length
	writeU32(&buf, uint32(frameSize))   // suggested buffer size
	writeU32(&buf, 0)                   // quality
	writeU32(&buf, uint32(frameSize))   // sample size
	buf.Write(make([]byte, 8))          // rcFrame

	buf.WriteString("strf")
	writeU32(&buf, 40)
	writeU32(&buf, 40) // BITMAPINFOHEADER size
	writeU32(&buf, uint32(width))
	writeU32(&buf, uint32(int32(-height))) // negative: top-down
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(24)) // bits per pixel
	writeU32(&buf, 0)                                   // compression
	writeU32(&buf, uint32(frameSize))
	writeU32(&buf, 0) // x pixels per meter
	writeU32(&buf, 0) // y pixels per meter
	writeU32(&buf, 0) // colours used
	writeU32(&buf, 0) // important colours

	buf.WriteString("LIST")
	writeU32(&buf, uint32(len(frames)*(frameSize+8)+4))
	buf.WriteString("movi")

	for i, frame := range frames {
		if len(frame) != width*height*3 {
			return errkind.New(errkind.MalformedInput, op, errors.Errorf("frame %d: length %d, want %d", i, len(frame), width*height*3))
		}
		buf.WriteString("00db")
		writeU32(&buf, uint32(frameSize))
		writeBGRRows(&buf, frame, width, height, padded)
	}

	out := buf.Bytes()
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))

	if _, err := dst.Write(out); err != nil {
		return errkind.New(errkind.MalformedInput, op, err)
	}
	return nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// writeBGRRows swaps RGB to BGR and pads each row to a 4-byte boundary.
func writeBGRRows(buf *bytes.Buffer, rgb []byte, width, height, padded int) {
	rowBytes := width * 3
	padBytes := padded - rowBytes
	row := make([]byte, padded)
	for y := 0; y < height; y++ {
		src := rgb[y*rowBytes : (y+1)*rowBytes]
		for x := 0; x < width; x++ {
			row[x*3+0] = src[x*3+2]
			row[x*3+1] = src[x*3+1]
			row[x*3+2] = src[x*3+0]
		}
		for i := 0; i < padBytes; i++ {
			row[rowBytes+i] = 0
		}
		buf.Write(row)
	}
}
