/*
NAME
  smk.go

DESCRIPTION
  smk.go describes the shape of a decoded Smacker video as handed to
  this module by an external demuxer.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package smk describes the shape of a decoded Smacker video, as handed
// to this module by an external demuxer. spec.md's Non-goals explicitly
// exclude SMK decoding: SMK bytes are passed through unchanged elsewhere
// and wrapped into an AVI container as though they were already decoded,
// so Video only needs to satisfy the same shape container/avi.Source
// expects from an FLC stream.
package smk

// Video is a demuxed Smacker video: a sequence of equally-sized,
// already-decoded top-down RGB frames plus the playback rate they were
// authored at.
type Video struct {
	Width, Height int
	FPS           int
	RGBFrames     [][]byte
}

func (v *Video) Dimensions() (width, height int) { return v.Width, v.Height }
func (v *Video) Rate() int                       { return v.FPS }
func (v *Video) Frames() [][]byte                { return v.RGBFrames }
