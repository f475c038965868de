/*
NAME
  bmp.go

DESCRIPTION
  bmp.go encodes raw top-down RGB pixel buffers as Windows BMP files.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package bmp encodes raw top-down RGB pixel buffers as Windows BMP
// files: a 14-byte file header followed by a 40-byte BITMAPINFOHEADER,
// negative height to signal top-down rows, 24 bits per pixel, BGR pixel
// order, rows padded to a 4-byte boundary.
package bmp

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/floriandotorg/pyisle/errkind"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	pixelOffset    = fileHeaderSize + infoHeaderSize
	bitsPerPixel   = 24
)

// rowSize returns the padded row length in bytes for a given pixel width.
func rowSize(width int) int {
	return (width*3 + 3) &^ 3
}

// EncodeRGB writes a 24-bit uncompressed BMP of a top-down RGB buffer.
// len(rgb) must equal width*height*3.
func EncodeRGB(width, height int, rgb []byte) ([]byte, error) {
	const op = "bmp.EncodeRGB"
	if len(rgb) != width*height*3 {
		return nil, errkind.New(errkind.MalformedInput, op,
			errors.Errorf("expected %d bytes for %dx%d RGB, got %d", width*height*3, width, height, len(rgb)))
	}

	padded := rowSize(width)
	imageSize := padded * height
	fileSize := pixelOffset + imageSize

	buf := make([]byte, fileSize)

	// 14-byte BITMAPFILEHEADER.
	buf[0], buf[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(buf[2:6], uint32(fileSize))
	// buf[6:10] reserved, left zero.
	binary.LittleEndian.PutUint32(buf[10:14], uint32(pixelOffset))

	// 40-byte BITMAPINFOHEADER.
	h := buf[fileHeaderSize:]
	binary.LittleEndian.PutUint32(h[0:4], infoHeaderSize)
	binary.LittleEndian.PutUint32(h[4:8], uint32(width))
	binary.LittleEndian.PutUint32(h[8:12], uint32(int32(-height))) // negative: top-down
	binary.LittleEndian.PutUint16(h[12:14], 1)                    // planes
	binary.LittleEndian.PutUint16(h[14:16], bitsPerPixel)
	// h[16:20] compression = 0 (BI_RGB)
	binary.LittleEndian.PutUint32(h[20:24], uint32(imageSize))
	// h[24:40] resolution/palette/important colours left zero.

	rowBytes := width * 3
	src := rgb
	dst := buf[pixelOffset:]
	for y := 0; y < height; y++ {
		row := src[y*rowBytes : (y+1)*rowBytes]
		out := dst[y*padded : y*padded+rowBytes]
		for x := 0; x < width; x++ {
			out[x*3+0] = row[x*3+2] // B
			out[x*3+1] = row[x*3+1] // G
			out[x*3+2] = row[x*3+0] // R
		}
		// Remaining padded-rowBytes bytes of this row are already zero.
	}

	return buf, nil
}
