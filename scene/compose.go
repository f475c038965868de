/*
NAME
  compose.go

DESCRIPTION
  compose.go composes a wdb.Model's ROI and animation trees into a glb
  node hierarchy.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package scene composes a wdb.Model's ROI and animation trees into a
// single glb.Writer node hierarchy: one parent node per ROI, mesh nodes
// under the selected LOD(s), first-keyframe transforms applied where the
// paired animation node has them, and textures resolved by name.
package scene

import (
	"strconv"

	"github.com/ausocean/utils/logging"

	"github.com/floriandotorg/pyisle/container/glb"
	"github.com/floriandotorg/pyisle/model/wdb"
)

// Compose walks model's ROI tree in pre-order and writes it into w under
// a new root parent node named after the root ROI. allLODs selects
// whether every LOD is emitted as a named sub-parent or only the finest
// (highest-index) LOD is emitted directly under its ROI node.
func Compose(w *glb.Writer, model *wdb.Model, textures *wdb.WDB, allLODs bool, log logging.Logger) error {
	return composeROI(w, &model.Roi, model.Animation, textures, allLODs, nil, log)
}

func composeROI(w *glb.Writer, roi *wdb.Roi, anim *wdb.AnimationNode, textures *wdb.WDB, allLODs bool, parentChildren *[]int, log logging.Logger) error {
	nodeIdx, children, err := w.AddParent(roi.Name, parentChildren)
	if err != nil {
		return err
	}
	applyFirstKeyframe(w, nodeIdx, roi.Name, anim, log)

	if err := addLODs(w, roi.Name, roi.Lods, textures, allLODs, children, log); err != nil {
		return err
	}

	for i := range roi.Children {
		child := &roi.Children[i]
		var childAnim *wdb.AnimationNode
		if anim != nil {
			found, ambiguous := anim.ChildByName(child.Name)
			if ambiguous {
				log.Warning("multiple animation children match ROI name, using first", "name", child.Name)
			}
			childAnim = found
		}
		if err := composeROI(w, child, childAnim, textures, allLODs, children, log); err != nil {
			return err
		}
	}
	return nil
}

// applyFirstKeyframe sets translation/rotation on node from anim's first
// keys, per spec.md §4.6.a: only a key at time 0 is applied; any
// non-zero first time, or more than one key, is logged and does not
// block the (possibly partial) static transform.
func applyFirstKeyframe(w *glb.Writer, nodeIdx int, name string, anim *wdb.AnimationNode, log logging.Logger) {
	if anim == nil {
		return
	}

	var translation *wdb.Vec3
	if len(anim.TranslationKeys) > 0 {
		if len(anim.TranslationKeys) > 1 {
			log.Warning("animation node has more than one translation key, using first only", "name", name, "count", len(anim.TranslationKeys))
		}
		first := anim.TranslationKeys[0]
		if first.Time == 0 {
			translation = &first.Vec
		} else {
			log.Warning("first translation key is not at time 0, leaving translation unset", "name", name, "time", first.Time)
		}
	}

	var rotation *[4]float32
	if len(anim.RotationKeys) > 0 {
		if len(anim.RotationKeys) > 1 {
			log.Warning("animation node has more than one rotation key, using first only", "name", name, "count", len(anim.RotationKeys))
		}
		first := anim.RotationKeys[0]
		if first.Time == 0 {
			rotation = &[4]float32{float32(first.Quat.Imag), float32(first.Quat.Jmag), float32(first.Quat.Kmag), float32(first.Quat.Real)}
		} else {
			log.Warning("first rotation key is not at time 0, leaving rotation unset", "name", name, "time", first.Time)
		}
	}

	if translation != nil || rotation != nil {
		w.SetTransform(nodeIdx, translation, rotation)
	}
}

func addLODs(w *glb.Writer, roiName string, lods []wdb.Lod, textures *wdb.WDB, allLODs bool, parentChildren *[]int, log logging.Logger) error {
	if len(lods) == 0 {
		return nil
	}

	if allLODs {
		for i, lod := range lods {
			_, lodChildren, err := w.AddParent(roiName+"_L"+strconv.Itoa(i), parentChildren)
			if err != nil {
				return err
			}
			if err := addMeshes(w, lod.Meshes, textures, roiName, i, lodChildren, log); err != nil {
				return err
			}
		}
		return nil
	}

	finestIdx := len(lods) - 1
	return addMeshes(w, lods[finestIdx].Meshes, textures, roiName, finestIdx, parentChildren, log)
}

func addMeshes(w *glb.Writer, meshes []wdb.Mesh, textures *wdb.WDB, roiName string, lodIdx int, parentChildren *[]int, log logging.Logger) error {
	for i := range meshes {
		m := &meshes[i]
		var tex *wdb.Gif
		if len(m.UVs) != 0 && textures != nil {
			tex = textures.TextureByName(m.TextureName)
			if tex == nil {
				log.Warning("mesh texture name did not resolve to any known image", "texture_name", m.TextureName)
			}
		}
		name := roiName + "_L" + strconv.Itoa(lodIdx) + "_M" + strconv.Itoa(i)
		if err := w.AddMesh(m, tex, name, parentChildren); err != nil {
			return err
		}
	}
	return nil
}
