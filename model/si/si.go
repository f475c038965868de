/*
NAME
  si.go

DESCRIPTION
  si.go describes the shape of objects extracted from an SI container.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package si describes the shape of objects extracted from an SI
// container. SI is an interleaved multi-object container found on the
// source ISO image; parsing its bytes into these objects (and demuxing
// the embedded SMK video it sometimes carries) happens outside this
// module — si only carries the data contract the codecs in this module
// consume, the same way the teacher package treats externally-sourced
// media as a plain data source rather than something it parses itself.
package si

import (
	"bytes"
	"encoding/binary"
)

// FileType discriminates the kind of payload an Object carries.
type FileType int

const (
	// WAV is raw PCM audio split into a fmt sub-chunk followed by a
	// data sub-chunk.
	WAV FileType = iota
	// STL is a raw BGR bitmap with no header.
	STL
	// FLC is an Autodesk Animator flic stream, embedded with an extra
	// 20-byte preamble on every chunk after the first.
	FLC
	// SMK is a Smacker video stream, opaque to this module.
	SMK
)

func (t FileType) String() string {
	switch t {
	case WAV:
		return "WAV"
	case STL:
		return "STL"
	case FLC:
		return "FLC"
	case SMK:
		return "SMK"
	default:
		return "unknown"
	}
}

// Object is one entry of an SI container: a typed, chunked byte blob.
// ChunkSizes records the length of each framing chunk as laid out in
// Data; codecs that need chunk boundaries (the WAV and FLC writers) read
// them from here instead of re-deriving them from the payload.
type Object struct {
	ID         string
	FileType   FileType
	ChunkSizes []int
	Data       []byte
}

// Open returns a reader over the object's raw payload.
func (o *Object) Open() *bytes.Reader {
	return bytes.NewReader(o.Data)
}

// Weight estimates this object's decode cost for schedule.BalancedChunks,
// following spec.md §5: SMK and FLC are weighted by their frame count and
// dimensions since decoding them dominates batch time, everything else is
// a flat constant.
func (o *Object) Weight() float64 {
	return weight(o.FileType, o.Data)
}

// defaultWeight is the flat cost assigned to object kinds that don't
// dominate batch time (spec.md §5).
const defaultWeight = 10

// weight implements the heuristic of spec.md §5: SMK weight =
// w·h·frames/2000, FLC weight = w·h·frames/10000, otherwise a flat 10.
// Both FLC and SMK embed their dimensions and frame count in the first
// bytes of the raw payload, before any chunk framing is understood, so
// this can run without a full decode.
func weight(ft FileType, data []byte) float64 {
	switch ft {
	case FLC:
		if len(data) < 12 {
			return defaultWeight
		}
		frames := binary.LittleEndian.Uint16(data[6:8])
		width := binary.LittleEndian.Uint16(data[8:10])
		height := binary.LittleEndian.Uint16(data[10:12])
		return float64(int(width)*int(height)*int(frames)) / 10_000
	case SMK:
		if len(data) < 16 {
			return defaultWeight
		}
		width := binary.LittleEndian.Uint32(data[4:8])
		height := binary.LittleEndian.Uint32(data[8:12])
		frames := binary.LittleEndian.Uint32(data[12:16])
		return float64(int(width)*int(height)*int(frames)) / 2_000
	default:
		return defaultWeight
	}
}
