/*
NAME
  wdb_test.go

DESCRIPTION
  wdb_test.go tests wdb.go.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

package wdb

import (
	"testing"

	"github.com/floriandotorg/pyisle/errkind"
)

func TestMeshValidate(t *testing.T) {
	tests := []struct {
		name    string
		mesh    Mesh
		wantErr bool
	}{
		{
			name: "ok no uvs",
			mesh: Mesh{
				Vertices: []Vec3{{}, {}, {}},
				Normals:  []Vec3{{}, {}, {}},
				Indices:  []uint16{0, 1, 2},
			},
		},
		{
			name: "ok with uvs and texture",
			mesh: Mesh{
				Vertices:    []Vec3{{}, {}},
				Normals:     []Vec3{{}, {}},
				UVs:         []Vec2{{}, {}},
				Indices:     []uint16{0, 1},
				TextureName: "wall",
			},
		},
		{
			name:    "vertex/normal mismatch",
			mesh:    Mesh{Vertices: []Vec3{{}}, Normals: []Vec3{{}, {}}},
			wantErr: true,
		},
		{
			name:    "uvs without texture name",
			mesh:    Mesh{Vertices: []Vec3{{}}, Normals: []Vec3{{}}, UVs: []Vec2{{}}},
			wantErr: true,
		},
		{
			name:    "texture name without uvs",
			mesh:    Mesh{Vertices: []Vec3{{}}, Normals: []Vec3{{}}, TextureName: "wall"},
			wantErr: true,
		},
		{
			name:    "index out of range",
			mesh:    Mesh{Vertices: []Vec3{{}}, Normals: []Vec3{{}}, Indices: []uint16{1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errkind.Is(err, errkind.MalformedInput) {
				t.Errorf("expected MalformedInput kind, got %v", err)
			}
		})
	}
}

func TestAnimationNodeChildByName(t *testing.T) {
	n := AnimationNode{
		Children: []AnimationNode{
			{Name: "Wheel"},
			{Name: "wheel"},
			{Name: "Door"},
		},
	}

	got, ambiguous := n.ChildByName("WHEEL")
	if got == nil || got.Name != "Wheel" {
		t.Fatalf("expected first case-insensitive match 'Wheel', got %+v", got)
	}
	if !ambiguous {
		t.Error("expected ambiguous=true when more than one name matches")
	}

	got, ambiguous = n.ChildByName("door")
	if got == nil || got.Name != "Door" {
		t.Fatalf("expected match 'Door', got %+v", got)
	}
	if ambiguous {
		t.Error("expected ambiguous=false for a unique match")
	}

	if got, _ := n.ChildByName("missing"); got != nil {
		t.Errorf("expected nil for unmatched name, got %+v", got)
	}
}

func TestTextureByName(t *testing.T) {
	w := &WDB{
		Textures:      []Gif{{Title: "tex1"}},
		ModelTextures: []Gif{{Title: "tex2"}},
		Images:        []Gif{{Title: "tex3"}},
	}

	for _, name := range []string{"tex1", "tex2", "tex3"} {
		if g := w.TextureByName(name); g == nil || g.Title != name {
			t.Errorf("TextureByName(%q) = %v, want a Gif titled %q", name, g, name)
		}
	}
	if g := w.TextureByName("missing"); g != nil {
		t.Errorf("TextureByName(missing) = %v, want nil", g)
	}
	if g := w.TextureByName(""); g != nil {
		t.Errorf("TextureByName(\"\") = %v, want nil", g)
	}
}
