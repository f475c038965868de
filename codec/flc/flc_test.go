/*
NAME
  flc_test.go

DESCRIPTION
  flc_test.go tests flc.go.

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
	"encoding/binary"
	"testing"

	"github.com/floriandotorg/pyisle/errkind"
)

// buildHeader returns a 128-byte FLC header for the given frame count,
// dimensions and millisecond delay.
func buildHeader(frames, width, height uint16, delayMs uint32) []byte {
	h := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(h[4:6], magic)
	binary.LittleEndian.PutUint16(h[6:8], frames)
	binary.LittleEndian.PutUint16(h[8:10], width)
	binary.LittleEndian.PutUint16(h[10:12], height)
	binary.LittleEndian.PutUint32(h[16:20], delayMs)
	return h
}

// chunk prepends a 6-byte chunk header (size, type) to payload.
func chunk(typ uint16, payload []byte) []byte {
	buf := make([]byte, 6+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	binary.LittleEndian.PutUint16(buf[4:6], typ)
	copy(buf[6:], payload)
	return buf
}

func palettePayload(entries map[byte][3]byte) []byte {
	// One packet per contiguous run starting at the lowest index given;
	// tests only need small, simple palettes so a single packet with
	// skip=firstIndex, count=len(entries) is enough.
	if len(entries) == 0 {
		return []byte{0, 0} // zero packets
	}
	var first byte = 255
	for k := range entries {
		if k < first {
			first = k
		}
	}
	count := byte(len(entries))
	payload := []byte{1, 0, first, count}
	for i := byte(0); i < count; i++ {
		c := entries[first+i]
		payload = append(payload, c[0], c[1], c[2])
	}
	return payload
}

// TestByteRunScenario reproduces spec.md §8 scenario 1: a 2x2 BYTE_RUN
// FLC with a two-colour palette, one literal-copy row and one repeat row.
func TestByteRunScenario(t *testing.T) {
	palette := palettePayload(map[byte][3]byte{
		0: {10, 20, 30},
		1: {40, 50, 60},
	})

	// Row 0: n=-2 (copy 2 verbatim indices: 0, 0). Row 1: n=2 (repeat index 1 twice).
	row0 := []byte{0, 0xFE, 0x00, 0x00} // skip byte, n=-2, indices 0 0
	row1 := []byte{0, 0x02, 0x01}       // skip byte, n=2, index 1
	byteRun := append(append([]byte{}, row0...), row1...)

	var buf bytes.Buffer
	buf.Write(buildHeader(1, 2, 2, 100))
	buf.Write(chunk(chunkFrame, frameSubChunks(chunk(chunkColor256, palette), chunk(chunkByteRun, byteRun))))

	stream, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(stream.Frames()) != 1 {
		t.Fatalf("got %d frames, want 1", len(stream.Frames()))
	}

	want := []byte{10, 20, 30, 10, 20, 30, 40, 50, 60, 40, 50, 60}
	if !bytes.Equal(stream.Frames()[0], want) {
		t.Errorf("frame = % v, want % v", stream.Frames()[0], want)
	}
}

// frameSubChunks wraps the given raw sub-chunks in a FRAME_TYPE payload.
func frameSubChunks(subs ...[]byte) []byte {
	payload := make([]byte, 10) // count(2) + 8 reserved zero bytes
	binary.LittleEndian.PutUint16(payload[0:2], uint16(len(subs)))
	for _, s := range subs {
		payload = append(payload, s...)
	}
	return payload
}

func TestFPS(t *testing.T) {
	s := &Stream{DelayMs: 100}
	if got := s.Rate(); got != 10 {
		t.Errorf("Rate() = %d, want 10", got)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	h := buildHeader(0, 1, 1, 100)
	binary.LittleEndian.PutUint16(h[4:6], 0x1234)
	_, err := Decode(bytes.NewReader(h))
	if err == nil || !errkind.Is(err, errkind.MalformedInput) {
		t.Fatalf("expected MalformedInput error, got %v", err)
	}
}

func TestFrameTypeDuplicatesPrevious(t *testing.T) {
	palette := palettePayload(map[byte][3]byte{0: {1, 2, 3}})
	cel := chunk(chunkByteRun, []byte{0, 0xFF, 0x00}) // 1x1: copy index 0

	var buf bytes.Buffer
	buf.Write(buildHeader(2, 1, 1, 100))
	buf.Write(chunk(chunkFrame, frameSubChunks(chunk(chunkColor256, palette), cel)))
	buf.Write(chunk(chunkFrame, frameSubChunks())) // zero sub-chunks: duplicate

	stream, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(stream.Frames()) != 2 {
		t.Fatalf("got %d frames, want 2", len(stream.Frames()))
	}
	if !bytes.Equal(stream.Frames()[0], stream.Frames()[1]) {
		t.Errorf("duplicated frame differs from original")
	}
}

func TestByteRunZeroCountFails(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(1, 1, 1, 100))
	buf.Write(chunk(chunkFrame, frameSubChunks(chunk(chunkByteRun, []byte{0, 0x00}))))

	_, err := Decode(bytes.NewReader(buf.Bytes()))
	if err == nil || !errkind.Is(err, errkind.MalformedInput) {
		t.Fatalf("expected MalformedInput for zero run count, got %v", err)
	}
}

func TestDeltaUndefinedOpcodeFails(t *testing.T) {
	palette := palettePayload(map[byte][3]byte{0: {1, 2, 3}})
	cel := chunk(chunkByteRun, []byte{0, 0xFF, 0x00})

	// A DELTA_FLC chunk with one line whose opcode has top bits 01
	// (undefined).
	deltaPayload := make([]byte, 0)
	lineCount := make([]byte, 2)
	binary.LittleEndian.PutUint16(lineCount, 1)
	deltaPayload = append(deltaPayload, lineCount...)
	badOpcode := make([]byte, 2)
	binary.LittleEndian.PutUint16(badOpcode, 0x4000) // top bits 01
	deltaPayload = append(deltaPayload, badOpcode...)

	var buf bytes.Buffer
	buf.Write(buildHeader(2, 1, 1, 100))
	buf.Write(chunk(chunkFrame, frameSubChunks(chunk(chunkColor256, palette), cel)))
	buf.Write(chunk(chunkFrame, frameSubChunks(chunk(chunkDeltaFLC, deltaPayload))))

	_, err := Decode(bytes.NewReader(buf.Bytes()))
	if err == nil || !errkind.Is(err, errkind.MalformedInput) {
		t.Fatalf("expected MalformedInput for undefined opcode, got %v", err)
	}
}

func TestBlackFrame(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(1, 2, 1, 100))
	buf.Write(chunk(chunkFrame, frameSubChunks(chunk(chunkBlack, nil))))

	stream, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := make([]byte, 2*1*3)
	if !bytes.Equal(stream.Frames()[0], want) {
		t.Errorf("frame = % v, want all-zero", stream.Frames()[0])
	}
}

func TestUnsupportedChunkType(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(1, 1, 1, 100))
	buf.Write(chunk(chunkFrame, frameSubChunks(chunk(0xBEEF, nil))))

	_, err := Decode(bytes.NewReader(buf.Bytes()))
	if err == nil || !errkind.Is(err, errkind.Unsupported) {
		t.Fatalf("expected Unsupported error, got %v", err)
	}
}

func TestPStampSkipped(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(1, 1, 1, 100))
	buf.Write(chunk(chunkFrame, frameSubChunks(chunk(chunkPStamp, []byte{1, 2, 3, 4}), chunk(chunkBlack, nil))))

	stream, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(stream.Frames()) != 1 {
		t.Fatalf("got %d frames, want 1", len(stream.Frames()))
	}
}
