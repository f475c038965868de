/*
NAME
  wdb.go

DESCRIPTION
  wdb.go describes the scene graph a WDB world-database file contains.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package wdb describes the scene graph a WDB world-database file
// contains: a tree of ROIs (regions of interest) carrying level-of-detail
// meshes and textures, plus a parallel tree of keyframe animation. As
// with model/si, turning WDB's on-disk bytes into this shape happens
// outside this module (spec.md §4.4 treats WDBModel as a contract, not a
// format this module decodes); wdb only carries the types scene.Compose
// walks and container/glb.Writer consumes.
package wdb

import (
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"github.com/floriandotorg/pyisle/errkind"
)

// Vec3 is a 3-component vector: a position, normal, or translation.
type Vec3 struct{ X, Y, Z float32 }

// Vec2 is a texture coordinate.
type Vec2 struct{ U, V float32 }

// Color is a mesh's flat base colour; Alpha is carried as a raw byte,
// not normalised, because container/glb reproduces spec.md §4.5's
// `1 - Alpha` base-colour-alpha computation verbatim (see §9's Open
// Questions — this is very likely a source bug, not a design choice).
type Color struct{ R, G, B, A uint8 }

// Mesh is one indexed triangle mesh of a Lod.
type Mesh struct {
	Vertices    []Vec3
	Normals     []Vec3
	UVs         []Vec2 // may be empty
	Indices     []uint16
	Color       Color
	TextureName string // non-empty iff UVs is non-empty
}

// Validate checks the invariants of spec.md §3's Mesh row.
func (m *Mesh) Validate() error {
	const op = "wdb.Mesh.Validate"
	if len(m.Vertices) != len(m.Normals) {
		return errkind.New(errkind.MalformedInput, op,
			errors.Errorf("len(vertices)=%d != len(normals)=%d", len(m.Vertices), len(m.Normals)))
	}
	if len(m.UVs) != 0 {
		if len(m.UVs) != len(m.Vertices) {
			return errkind.New(errkind.MalformedInput, op,
				errors.Errorf("len(uvs)=%d != len(vertices)=%d", len(m.UVs), len(m.Vertices)))
		}
		if m.TextureName == "" {
			return errkind.New(errkind.MalformedInput, op, errors.New("uvs present but texture_name is empty"))
		}
	} else if m.TextureName != "" {
		return errkind.New(errkind.MalformedInput, op, errors.New("texture_name set but uvs is empty"))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return errkind.New(errkind.MalformedInput, op,
				errors.Errorf("index %d out of range for %d vertices", idx, len(m.Vertices)))
		}
	}
	return nil
}

// Lod is one level of detail: an ordered, non-empty set of meshes.
type Lod struct {
	Meshes []Mesh
}

// Roi is a named node of the scene graph: a region of interest with
// child ROIs and LODs ordered coarsest to finest. Names are not unique
// and the tree is acyclic.
type Roi struct {
	Name     string
	Children []Roi
	Lods     []Lod
}

// TranslationKey is one keyframe of a translation track.
type TranslationKey struct {
	Time int
	Vec  Vec3
}

// RotationKey is one keyframe of a rotation track, carried as a
// quaternion (x, y, z, w load order matches spec.md §3; gonum's
// quat.Number stores it as w + xi + yj + zk internally).
type RotationKey struct {
	Time int
	Quat quat.Number
}

// AnimationNode mirrors an Roi by name and carries its keyframe tracks.
// Keys are sorted by Time; a well-formed track's first key is at Time 0.
type AnimationNode struct {
	Name            string
	Children        []AnimationNode
	TranslationKeys []TranslationKey
	RotationKeys    []RotationKey
}

// ChildByName returns the first child animation node whose name matches
// name case-insensitively, and whether more than one matched (spec.md
// §4.6.d: pairing is by case-insensitive name; ties resolve to the first
// and should be logged by the caller).
func (n *AnimationNode) ChildByName(name string) (*AnimationNode, bool) {
	var found *AnimationNode
	ambiguous := false
	for i := range n.Children {
		if strings.EqualFold(n.Children[i].Name, name) {
			if found == nil {
				found = &n.Children[i]
			} else {
				ambiguous = true
			}
		}
	}
	return found, ambiguous
}

// Gif is a decoded texture or standalone image: a top-down RGB buffer.
type Gif struct {
	Width, Height int
	Image         []byte // top-down RGB, len == Width*Height*3
	Title         string
}

// Model pairs a scene-graph root with its (optional) animation tree.
type Model struct {
	Roi       Roi
	Animation *AnimationNode // nil if the model has no animation
}

// WDB is the full contract a world-database file exposes: a flat list of
// models plus the flat image/texture pools referenced by mesh texture
// names.
type WDB struct {
	Models        []Model
	Images        []Gif
	Textures      []Gif
	ModelTextures []Gif
}

// TextureByName searches Textures, then ModelTextures, then Images for a
// Gif titled name. It returns nil if there is no match, which is itself
// meaningful: a mesh with an empty TextureName or an unresolved name is
// composed without a texture binding.
func (w *WDB) TextureByName(name string) *Gif {
	if name == "" {
		return nil
	}
	for _, pool := range [][]Gif{w.Textures, w.ModelTextures, w.Images} {
		for i := range pool {
			if pool[i].Title == name {
				return &pool[i]
			}
		}
	}
	return nil
}
