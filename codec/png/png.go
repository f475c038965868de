/*
NAME
  png.go

DESCRIPTION
  png.go encodes raw RGB or RGBA pixel buffers as minimal,
  spec-conformant PNG files.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package png encodes raw RGB or RGBA pixel buffers as minimal,
// spec-conformant PNG files: signature, IHDR, a single IDAT holding
// zlib-deflated filter-0 scanlines, IEND. It intentionally does not use
// the standard library's image/png encoder, which would choose its own
// filter strategy per row and doesn't expose the "no filtering, single
// IDAT" shape spec.md §4.1 and §8 require for bit-exact output.
package png

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"

	"github.com/pkg/errors"

	"github.com/floriandotorg/pyisle/errkind"
)

// ColorSpace selects the PNG colour type written in IHDR.
type ColorSpace int

const (
	RGB  ColorSpace = 2 // bpp 3
	RGBA ColorSpace = 6 // bpp 4
)

func (c ColorSpace) bpp() int {
	if c == RGBA {
		return 4
	}
	return 3
}

var signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Encode writes width x height pixels as a PNG. data must be exactly
// width*height*bpp(color) bytes, row-major, top-down.
func Encode(width, height int, data []byte, color ColorSpace) ([]byte, error) {
	const op = "png.Encode"
	bpp := color.bpp()
	if len(data) != width*height*bpp {
		return nil, errkind.New(errkind.MalformedInput, op,
			errors.Errorf("expected %d bytes for %dx%d at %d bpp, got %d", width*height*bpp, width, height, bpp, len(data)))
	}

	var out bytes.Buffer
	out.Write(signature)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 8             // bit depth
	ihdr[9] = byte(color)   // colour type
	ihdr[10] = 0            // compression method
	ihdr[11] = 0            // filter method
	ihdr[12] = 0            // interlace method
	writeChunk(&out, "IHDR", ihdr)

	raw := make([]byte, 0, height*(1+width*bpp))
	stride := width * bpp
	for y := 0; y < height; y++ {
		raw = append(raw, 0) // filter type 0: None
		raw = append(raw, data[y*stride:(y+1)*stride]...)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(raw); err != nil {
		return nil, errkind.New(errkind.MalformedInput, op, errors.Wrap(err, "deflate"))
	}
	if err := zw.Close(); err != nil {
		return nil, errkind.New(errkind.MalformedInput, op, errors.Wrap(err, "deflate close"))
	}
	writeChunk(&out, "IDAT", compressed.Bytes())

	writeChunk(&out, "IEND", nil)

	return out.Bytes(), nil
}

// writeChunk appends length(u32 BE) | type(4) | data | crc32(type||data).
func writeChunk(w *bytes.Buffer, typ string, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	w.Write(lenBuf[:])

	w.WriteString(typ)
	w.Write(data)

	crc := crc32.ChecksumIEEE(append([]byte(typ), data...))
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	w.Write(crcBuf[:])
}
