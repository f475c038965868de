/*
NAME
  glb.go

DESCRIPTION
  glb.go assembles glTF 2.0 Binary (GLB) assets from decoded WDB scene
  data.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package glb assembles glTF 2.0 Binary (GLB) assets: a node hierarchy,
// interleaved mesh attribute accessors backed by a single binary buffer,
// PBR materials, and PNG-embedded textures, packed into the single-file
// `glTF\0` container.
//
// A Writer moves through two states the way the source format describes
// it (spec.md §4.5, §9): Open while meshes and nodes are being added,
// Sealed once Build has produced the final bytes. Calling AddNode,
// AddParent, AddMesh or Build after Build is a programmer error, reported
// as an errkind.InvariantViolation rather than silently corrupting output.
// SetTransform performs no sealed check.
package glb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/floriandotorg/pyisle/codec/png"
	"github.com/floriandotorg/pyisle/errkind"
	"github.com/floriandotorg/pyisle/model/wdb"
)

// glTF component type and buffer target constants (glTF 2.0 spec).
const (
	componentUShort = 5123
	componentFloat  = 5126

	targetArrayBuffer        = 34962
	targetElementArrayBuffer = 34963
)

type bufferView struct {
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset"`
	ByteLength int    `json:"byteLength"`
	Target     *int   `json:"target,omitempty"`
}

type accessor struct {
	BufferView    int       `json:"bufferView"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float32 `json:"min,omitempty"`
	Max           []float32 `json:"max,omitempty"`
}

type primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    int            `json:"indices"`
	Material   int            `json:"material"`
}

type mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []primitive `json:"primitives"`
}

type pbrMetallicRoughness struct {
	BaseColorFactor  []float64   `json:"baseColorFactor,omitempty"`
	BaseColorTexture *textureRef `json:"baseColorTexture,omitempty"`
}

type textureRef struct {
	Index int `json:"index"`
}

type material struct {
	PBR pbrMetallicRoughness `json:"pbrMetallicRoughness"`
}

type node struct {
	Name        string    `json:"name,omitempty"`
	Children    []int     `json:"children,omitempty"`
	Mesh        *int      `json:"mesh,omitempty"`
	Translation []float32 `json:"translation,omitempty"`
	Rotation    []float32 `json:"rotation,omitempty"`
}

type image struct {
	MimeType   string `json:"mimeType"`
	BufferView int    `json:"bufferView"`
}

type texture struct {
	Source int `json:"source"`
}

type document struct {
	Asset       asset        `json:"asset"`
	Buffers     []buffer     `json:"buffers"`
	BufferViews []bufferView `json:"bufferViews"`
	Accessors   []accessor   `json:"accessors"`
	Meshes      []mesh       `json:"meshes"`
	Materials   []material   `json:"materials"`
	Nodes       []*node      `json:"nodes"`
	Scenes      []scene      `json:"scenes"`
	Scene       int          `json:"scene"`
	Images      []image      `json:"images,omitempty"`
	Textures    []texture    `json:"textures,omitempty"`
}

type asset struct {
	Version string `json:"version"`
}

type buffer struct {
	ByteLength int `json:"byteLength"`
}

type scene struct {
	Nodes []int `json:"nodes"`
}

type pendingTexture struct {
	meshIndex int
	gif       *wdb.Gif
}

// Writer accumulates a single GLB asset. The zero value is ready to use.
type Writer struct {
	bin         []byte
	bufferViews []bufferView
	accessors   []accessor
	meshes      []mesh
	materials   []material
	nodes       []*node
	images      []image
	textures    []texture
	pending     []pendingTexture
	sealed      bool
}

func (w *Writer) checkOpen(op string) error {
	if w.sealed {
		return errkind.New(errkind.InvariantViolation, op, errors.New("writer is sealed: Build already called"))
	}
	return nil
}

// AddNode appends a bare node. If parentChildren is nil this must be the
// very first node (the scene root, always index 0); otherwise the new
// node's index is appended to parentChildren. It returns the new node's
// index.
func (w *Writer) AddNode(parentChildren *[]int) (int, error) {
	const op = "glb.Writer.AddNode"
	if err := w.checkOpen(op); err != nil {
		return 0, err
	}
	if parentChildren == nil {
		if len(w.nodes) != 0 {
			return 0, errkind.New(errkind.InvariantViolation, op, errors.New("no parent given for a non-root node"))
		}
	} else {
		if len(w.nodes) == 0 {
			return 0, errkind.New(errkind.InvariantViolation, op, errors.New("parent given for the first node"))
		}
	}

	idx := len(w.nodes)
	w.nodes = append(w.nodes, &node{})
	if parentChildren != nil {
		*parentChildren = append(*parentChildren, idx)
	}
	return idx, nil
}

// AddParent is AddNode plus a name and an initialised, empty Children
// list the caller can pass as other nodes' parentChildren.
func (w *Writer) AddParent(name string, parentChildren *[]int) (idx int, children *[]int, err error) {
	idx, err = w.AddNode(parentChildren)
	if err != nil {
		return 0, nil, err
	}
	w.nodes[idx].Name = name
	return idx, &w.nodes[idx].Children, nil
}

// SetTransform sets a node's translation and/or rotation. Either may be
// nil to leave that channel unset.
func (w *Writer) SetTransform(nodeIndex int, translation *wdb.Vec3, rotation *[4]float32) {
	if translation != nil {
		w.nodes[nodeIndex].Translation = []float32{translation.X, translation.Y, translation.Z}
	}
	if rotation != nil {
		w.nodes[nodeIndex].Rotation = rotation[:]
	}
}

// appendBinChunk appends data to the binary buffer, zero-padded to a
// 4-byte boundary, and returns the index of the buffer view describing
// the pre-pad span.
func (w *Writer) appendBinChunk(data []byte, target *int) int {
	offset := len(w.bin)
	w.bin = append(w.bin, data...)
	length := len(w.bin) - offset
	for len(w.bin)%4 != 0 {
		w.bin = append(w.bin, 0)
	}
	idx := len(w.bufferViews)
	w.bufferViews = append(w.bufferViews, bufferView{Buffer: 0, ByteOffset: offset, ByteLength: length, Target: target})
	return idx
}

func targetPtr(v int) *int { return &v }

// nonNil returns s, or an empty non-nil slice of the same type if s is
// nil, so json.Marshal emits `[]` rather than `null`.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (w *Writer) addVec3Accessor(vecs []wdb.Vec3, target *int, withMinMax bool) int {
	data := make([]byte, 0, len(vecs)*12)
	for _, v := range vecs {
		data = appendFloat32(data, v.X)
		data = appendFloat32(data, v.Y)
		data = appendFloat32(data, v.Z)
	}
	view := w.appendBinChunk(data, target)
	acc := accessor{BufferView: view, ComponentType: componentFloat, Count: len(vecs), Type: "VEC3"}
	if withMinMax {
		xs, ys, zs := make([]float64, len(vecs)), make([]float64, len(vecs)), make([]float64, len(vecs))
		for i, v := range vecs {
			xs[i], ys[i], zs[i] = float64(v.X), float64(v.Y), float64(v.Z)
		}
		acc.Min = []float32{float32(floats.Min(xs)), float32(floats.Min(ys)), float32(floats.Min(zs))}
		acc.Max = []float32{float32(floats.Max(xs)), float32(floats.Max(ys)), float32(floats.Max(zs))}
	}
	w.accessors = append(w.accessors, acc)
	return len(w.accessors) - 1
}

func (w *Writer) addVec2Accessor(vecs []wdb.Vec2, target *int) int {
	data := make([]byte, 0, len(vecs)*8)
	for _, v := range vecs {
		data = appendFloat32(data, v.U)
		data = appendFloat32(data, v.V)
	}
	view := w.appendBinChunk(data, target)
	w.accessors = append(w.accessors, accessor{BufferView: view, ComponentType: componentFloat, Count: len(vecs), Type: "VEC2"})
	return len(w.accessors) - 1
}

func (w *Writer) addIndexAccessor(indices []uint16, target *int) int {
	data := make([]byte, len(indices)*2)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(data[i*2:], idx)
	}
	view := w.appendBinChunk(data, target)
	w.accessors = append(w.accessors, accessor{BufferView: view, ComponentType: componentUShort, Count: len(indices), Type: "SCALAR"})
	return len(w.accessors) - 1
}

func appendFloat32(b []byte, f float32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
	return append(b, buf[:]...)
}

// AddMesh registers mesh as a new node under parentChildren (nil for a
// standalone root mesh), with name. If texture is non-nil the mesh's
// material is replaced with a textured material once Build drains the
// pending texture list.
func (w *Writer) AddMesh(m *wdb.Mesh, texture *wdb.Gif, name string, parentChildren *[]int) error {
	const op = "glb.Writer.AddMesh"
	if err := w.checkOpen(op); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}

	nodeIdx, err := w.AddNode(parentChildren)
	if err != nil {
		return err
	}
	meshIdx := len(w.meshes)
	w.nodes[nodeIdx].Mesh = &meshIdx

	posIdx := w.addVec3Accessor(m.Vertices, targetPtr(targetArrayBuffer), true)
	normIdx := w.addVec3Accessor(m.Normals, targetPtr(targetArrayBuffer), false)
	idxIdx := w.addIndexAccessor(m.Indices, targetPtr(targetElementArrayBuffer))

	attrs := map[string]int{"POSITION": posIdx, "NORMAL": normIdx}
	materialIdx := len(w.materials)

	// Reproduced verbatim per spec.md §4.5 and §9's Open Questions: the
	// alpha term is 1 - A using the raw [0,255] byte, not A/255. This is
	// almost certainly a bug in the system being reproduced, not a
	// design choice, and is kept exactly as observed.
	w.materials = append(w.materials, material{PBR: pbrMetallicRoughness{
		BaseColorFactor: []float64{
			float64(m.Color.R) / 255,
			float64(m.Color.G) / 255,
			float64(m.Color.B) / 255,
			1 - float64(m.Color.A),
		},
	}})

	if len(m.UVs) != 0 {
		attrs["TEXCOORD_0"] = w.addVec2Accessor(m.UVs, targetPtr(targetArrayBuffer))
	}

	w.meshes = append(w.meshes, mesh{
		Name: name,
		Primitives: []primitive{{
			Attributes: attrs,
			Indices:    idxIdx,
			Material:   materialIdx,
		}},
	})

	if texture != nil {
		w.pending = append(w.pending, pendingTexture{meshIndex: meshIdx, gif: texture})
	}
	return nil
}

// drainTextures PNG-encodes every pending texture, appends it as an
// untargeted buffer view, and replaces its mesh's material with a
// textured one.
func (w *Writer) drainTextures() error {
	const op = "glb.Writer.drainTextures"
	for _, p := range w.pending {
		encoded, err := png.Encode(p.gif.Width, p.gif.Height, p.gif.Image, png.RGB)
		if err != nil {
			return errkind.New(errkind.MalformedInput, op, errors.Wrapf(err, "encoding texture %q", p.gif.Title))
		}
		view := w.appendBinChunk(encoded, nil)

		textureIdx := len(w.textures)
		imageIdx := len(w.images)
		w.images = append(w.images, image{MimeType: "image/png", BufferView: view})
		w.textures = append(w.textures, texture{Source: imageIdx})

		w.materials[p.meshIndex].PBR = pbrMetallicRoughness{BaseColorTexture: &textureRef{Index: textureIdx}}
	}
	w.pending = nil
	return nil
}

// Build finalises the asset and returns the complete GLB file bytes.
// After Build, the Writer is sealed: further AddNode/AddMesh calls fail.
func (w *Writer) Build() ([]byte, error) {
	const op = "glb.Writer.Build"
	if err := w.checkOpen(op); err != nil {
		return nil, err
	}
	if len(w.nodes) == 0 {
		return nil, errkind.New(errkind.InvariantViolation, op, errors.New("no root node added"))
	}

	if err := w.drainTextures(); err != nil {
		return nil, err
	}
	w.sealed = true

	// A model whose ROIs are pure grouping nodes has no meshes, and so no
	// buffer views, accessors, or materials either. glTF requires these
	// arrays to be present as `[]`, never `null`, so a nil slice here must
	// not reach json.Marshal unchanged.
	doc := document{
		Asset:       asset{Version: "2.0"},
		Buffers:     []buffer{{ByteLength: len(w.bin)}},
		BufferViews: nonNil(w.bufferViews),
		Accessors:   nonNil(w.accessors),
		Meshes:      nonNil(w.meshes),
		Materials:   nonNil(w.materials),
		Nodes:       w.nodes,
		Scenes:      []scene{{Nodes: []int{0}}},
		Scene:       0,
	}
	if len(w.images) != 0 {
		doc.Images = w.images
	}
	if len(w.textures) != 0 {
		doc.Textures = w.textures
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, errkind.New(errkind.MalformedInput, op, errors.Wrap(err, "marshalling glTF JSON"))
	}
	for len(jsonBytes)%4 != 0 {
		jsonBytes = append(jsonBytes, ' ')
	}

	var out bytes.Buffer
	writeChunk(&out, "JSON", jsonBytes)
	writeChunk(&out, "BIN\x00", w.bin)

	header := make([]byte, 12)
	copy(header[0:4], "glTF")
	binary.LittleEndian.PutUint32(header[4:8], 2)
	binary.LittleEndian.PutUint32(header[8:12], uint32(12+out.Len()))

	return append(header, out.Bytes()...), nil
}

func writeChunk(out *bytes.Buffer, typ string, data []byte) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	out.Write(lenBuf[:])
	out.WriteString(typ)
	out.Write(data)
}
