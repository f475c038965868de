/*
NAME
  flc.go

DESCRIPTION
  flc.go decodes Autodesk Animator FLC animation streams into sequences
  of top-down RGB frames.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package flc decodes Autodesk Animator FLC animation streams: a
// palette-driven sequence of frames built from whole-frame run-length
// cels and inter-frame delta chunks. The decoder is a small stateful
// machine — a palette and the previous frame are the only state it
// carries between chunks — consumed once per stream the way codec/wav's
// WAV value is built up and then handed off.
package flc

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/floriandotorg/pyisle/errkind"
)

const (
	headerSize = 128
	magic      = 0xAF12

	chunkFrame    = 0xF1FA
	chunkColor256 = 4
	chunkDeltaFLC = 7
	chunkColor64  = 11
	chunkBlack    = 13
	chunkByteRun  = 15
	chunkFliCopy  = 16
	chunkPStamp   = 18
)

type color struct{ r, g, b byte }

// Stream is a fully decoded FLC animation: a sequence of top-down RGB
// frames, all the same dimensions, plus the rate they play back at.
// Stream satisfies the same (Dimensions, Rate, Frames) shape as
// model/smk.Video so container/avi.Write can mux either without caring
// which decoder produced the frames.
type Stream struct {
	Width, Height int
	DelayMs       uint32
	RGBFrames     [][]byte
}

func (s *Stream) Dimensions() (width, height int) { return s.Width, s.Height }

// Rate returns frames per second, computed as spec.md §4.2 requires:
// integer division of 1000 by the per-frame delay in milliseconds.
func (s *Stream) Rate() int {
	if s.DelayMs == 0 {
		return 0
	}
	return int(1000 / s.DelayMs)
}

func (s *Stream) Frames() [][]byte { return s.RGBFrames }

type decoder struct {
	r       io.ReadSeeker
	width   int
	height  int
	palette [256]color
	frames  [][]byte
}

// Decode reads a complete FLC stream starting at the current position of
// r. r must support Seek because chunk framing is self-describing and
// this decoder seeks past any trailing bytes a chunk doesn't consume.
func Decode(r io.ReadSeeker) (*Stream, error) {
	const op = "flc.Decode"

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errkind.New(errkind.MalformedInput, op, errors.Wrap(err, "reading header"))
	}

	gotMagic := binary.LittleEndian.Uint16(header[4:6])
	if gotMagic != magic {
		return nil, errkind.New(errkind.MalformedInput, op, errors.Errorf("bad magic %#x, want %#x", gotMagic, magic))
	}

	frameCount := binary.LittleEndian.Uint16(header[6:8])
	width := binary.LittleEndian.Uint16(header[8:10])
	height := binary.LittleEndian.Uint16(header[10:12])
	delayMs := binary.LittleEndian.Uint32(header[16:20])

	d := &decoder{r: r, width: int(width), height: int(height)}
	for i := 0; i < int(frameCount); i++ {
		if err := d.readChunk(); err != nil {
			return nil, err
		}
	}

	return &Stream{
		Width:     int(width),
		Height:    int(height),
		DelayMs:   delayMs,
		RGBFrames: d.frames,
	}, nil
}

// readChunk reads one chunk's 6-byte header, dispatches on its type, and
// unconditionally seeks to the chunk's declared end afterwards, so a
// chunk body that under-reads its own payload doesn't desynchronise the
// stream (spec.md §4.2).
func (d *decoder) readChunk() error {
	const op = "flc.readChunk"

	start, err := d.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return errkind.New(errkind.MalformedInput, op, err)
	}

	var hdr [6]byte
	if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
		return errkind.New(errkind.MalformedInput, op, errors.Wrap(err, "reading chunk header"))
	}
	size := binary.LittleEndian.Uint32(hdr[0:4])
	typ := binary.LittleEndian.Uint16(hdr[4:6])
	end := start + int64(size)

	switch typ {
	case chunkFrame:
		err = d.readFrame()
	case chunkColor256, chunkColor64:
		err = d.readPalette()
	case chunkByteRun:
		err = d.readByteRun()
	case chunkDeltaFLC:
		err = d.readDelta()
	case chunkFliCopy:
		err = d.readFliCopy()
	case chunkBlack:
		d.readBlack()
	case chunkPStamp:
		// Preview stamp: skip entirely, the trailing Seek below does it.
	default:
		err = errkind.New(errkind.Unsupported, op, errors.Errorf("unsupported chunk type %#x", typ))
	}
	if err != nil {
		return err
	}

	if _, err := d.r.Seek(end, io.SeekStart); err != nil {
		return errkind.New(errkind.MalformedInput, op, err)
	}
	return nil
}

// readFrame handles FRAME_TYPE: a sub-chunk count, 8 reserved bytes that
// must be zero, then that many nested chunks — or, if the count is zero,
// a duplicate of the previous frame.
func (d *decoder) readFrame() error {
	const op = "flc.readFrame"

	var buf [10]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return errkind.New(errkind.MalformedInput, op, err)
	}
	count := binary.LittleEndian.Uint16(buf[0:2])
	for _, b := range buf[2:10] {
		if b != 0 {
			return errkind.New(errkind.MalformedInput, op, errors.New("reserved bytes are not zero"))
		}
	}

	if count == 0 {
		if len(d.frames) == 0 {
			return errkind.New(errkind.MalformedInput, op, errors.New("first frame cannot duplicate"))
		}
		d.frames = append(d.frames, d.frames[len(d.frames)-1])
		return nil
	}

	for i := 0; i < int(count); i++ {
		if err := d.readChunk(); err != nil {
			return err
		}
	}
	return nil
}

// readPalette handles COLOR_256 and COLOR_64. Per spec.md §4.2, both are
// decoded identically as 8-bit-per-channel triples — this decoder never
// needs to scale up true 6-bit-per-channel palettes.
func (d *decoder) readPalette() error {
	const op = "flc.readPalette"

	var hb [2]byte
	if _, err := io.ReadFull(d.r, hb[:]); err != nil {
		return errkind.New(errkind.MalformedInput, op, err)
	}
	packets := binary.LittleEndian.Uint16(hb[:])

	n := 0
	for i := 0; i < int(packets); i++ {
		var ph [2]byte
		if _, err := io.ReadFull(d.r, ph[:]); err != nil {
			return errkind.New(errkind.MalformedInput, op, err)
		}
		n += int(ph[0])
		count := int(ph[1])
		if count == 0 {
			count = 256
		}
		for j := 0; j < count; j++ {
			if n >= 256 {
				return errkind.New(errkind.MalformedInput, op, errors.New("palette cursor overflowed 256 entries"))
			}
			var c [3]byte
			if _, err := io.ReadFull(d.r, c[:]); err != nil {
				return errkind.New(errkind.MalformedInput, op, err)
			}
			d.palette[n] = color{c[0], c[1], c[2]}
			n++
		}
	}
	return nil
}

// readByteRun decodes a BYTE_RUN cel: per scanline, a skipped legacy
// packet-count byte, then RLE packets until width pixels are emitted.
func (d *decoder) readByteRun() error {
	const op = "flc.readByteRun"

	frame := make([]byte, 0, d.width*d.height*3)
	for y := 0; y < d.height; y++ {
		var skip [1]byte
		if _, err := io.ReadFull(d.r, skip[:]); err != nil {
			return errkind.New(errkind.MalformedInput, op, err)
		}

		pixels := 0
		for pixels < d.width {
			var nb [1]byte
			if _, err := io.ReadFull(d.r, nb[:]); err != nil {
				return errkind.New(errkind.MalformedInput, op, err)
			}
			n := int(int8(nb[0]))
			switch {
			case n < 0:
				count := -n
				idxs := make([]byte, count)
				if _, err := io.ReadFull(d.r, idxs); err != nil {
					return errkind.New(errkind.MalformedInput, op, err)
				}
				for _, idx := range idxs {
					c := d.palette[idx]
					frame = append(frame, c.r, c.g, c.b)
				}
				pixels += count
			case n > 0:
				var idxb [1]byte
				if _, err := io.ReadFull(d.r, idxb[:]); err != nil {
					return errkind.New(errkind.MalformedInput, op, err)
				}
				c := d.palette[idxb[0]]
				for i := 0; i < n; i++ {
					frame = append(frame, c.r, c.g, c.b)
				}
				pixels += n
			default:
				return errkind.New(errkind.MalformedInput, op, errors.New("run count is 0"))
			}
		}
	}

	if len(frame) != d.width*d.height*3 {
		return errkind.New(errkind.MalformedInput, op, errors.Errorf("frame length %d, want %d", len(frame), d.width*d.height*3))
	}
	d.frames = append(d.frames, frame)
	return nil
}

// readDelta decodes DELTA_FLC: an in-place update of a copy of the
// previous frame, driven by per-line opcodes and skip/count packets.
func (d *decoder) readDelta() error {
	const op = "flc.readDelta"

	if len(d.frames) == 0 {
		return errkind.New(errkind.MalformedInput, op, errors.New("no previous frame to delta from"))
	}
	frame := append([]byte(nil), d.frames[len(d.frames)-1]...)

	var lb [2]byte
	if _, err := io.ReadFull(d.r, lb[:]); err != nil {
		return errkind.New(errkind.MalformedInput, op, err)
	}
	lines := int(binary.LittleEndian.Uint16(lb[:]))

	line := 0
	for i := 0; i < lines; i++ {
		pixel := 0
		var packets int
		for {
			var ob [2]byte
			if _, err := io.ReadFull(d.r, ob[:]); err != nil {
				return errkind.New(errkind.MalformedInput, op, err)
			}
			opcode := binary.LittleEndian.Uint16(ob[:])
			code := opcode >> 14
			if code == 0b00 {
				packets = int(opcode)
				break
			}
			switch code {
			case 0b10:
				pos := (line*d.width + d.width - 1) * 3
				c := d.palette[opcode&0xFF]
				if pos >= 0 && pos+3 <= len(frame) {
					frame[pos], frame[pos+1], frame[pos+2] = c.r, c.g, c.b
				}
			case 0b11:
				line -= int(int16(opcode))
			default:
				return errkind.New(errkind.MalformedInput, op, errors.Errorf("undefined opcode %#x", opcode))
			}
		}

		for p := 0; p < packets; p++ {
			var pk [2]byte
			if _, err := io.ReadFull(d.r, pk[:]); err != nil {
				return errkind.New(errkind.MalformedInput, op, err)
			}
			pixel += int(pk[0])
			count := int(int8(pk[1]))

			switch {
			case count < 0:
				reps := -count
				var pp [2]byte
				if _, err := io.ReadFull(d.r, pp[:]); err != nil {
					return errkind.New(errkind.MalformedInput, op, err)
				}
				c1, c2 := d.palette[pp[0]], d.palette[pp[1]]
				pos := (line*d.width + pixel) * 3
				for r := 0; r < reps; r++ {
					frame[pos+0], frame[pos+1], frame[pos+2] = c1.r, c1.g, c1.b
					frame[pos+3], frame[pos+4], frame[pos+5] = c2.r, c2.g, c2.b
					pos += 6
				}
				pixel += 2 * reps
			case count > 0:
				idxs := make([]byte, count*2)
				if _, err := io.ReadFull(d.r, idxs); err != nil {
					return errkind.New(errkind.MalformedInput, op, err)
				}
				pos := (line*d.width + pixel) * 3
				for k := 0; k < count; k++ {
					c1, c2 := d.palette[idxs[2*k]], d.palette[idxs[2*k+1]]
					frame[pos+0], frame[pos+1], frame[pos+2] = c1.r, c1.g, c1.b
					frame[pos+3], frame[pos+4], frame[pos+5] = c2.r, c2.g, c2.b
					pos += 6
				}
				pixel += 2 * count
			default:
				return errkind.New(errkind.MalformedInput, op, errors.New("packet count is 0"))
			}
		}
		line++
	}

	if len(frame) != d.width*d.height*3 {
		return errkind.New(errkind.MalformedInput, op, errors.Errorf("frame length %d, want %d", len(frame), d.width*d.height*3))
	}
	d.frames = append(d.frames, frame)
	return nil
}

// readFliCopy decodes FLI_COPY: width*height raw palette indices, one
// full frame, no run-length encoding.
func (d *decoder) readFliCopy() error {
	const op = "flc.readFliCopy"

	idxs := make([]byte, d.width*d.height)
	if _, err := io.ReadFull(d.r, idxs); err != nil {
		return errkind.New(errkind.MalformedInput, op, err)
	}
	frame := make([]byte, 0, len(idxs)*3)
	for _, idx := range idxs {
		c := d.palette[idx]
		frame = append(frame, c.r, c.g, c.b)
	}
	d.frames = append(d.frames, frame)
	return nil
}

// readBlack appends a frame of all-zero RGB pixels.
func (d *decoder) readBlack() {
	d.frames = append(d.frames, make([]byte, d.width*d.height*3))
}
