package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/kverness/armature/internal/engine/skin"
	"github.com/kverness/armature/pkg/keyframe"
)

// Importer errors.
var (
	ErrNoScene         = errors.New("asset declares no scene")
	ErrSamplerMismatch = errors.New("sampler key and value counts differ")
	ErrNoPositions     = errors.New("primitive has no positions")
)

// ImportGLTF loads a .gltf or .glb rig into a Document. External buffers
// and images resolve relative to the asset path.
func ImportGLTF(path string) (*Document, error) {
	g, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc, err := importGLTF(g, name)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	return doc, nil
}

func importGLTF(g *gltf.Document, name string) (*Document, error) {
	if len(g.Scenes) == 0 {
		return nil, ErrNoScene
	}

	names := nodeNames(g)
	doc := &Document{
		Name:     name,
		Nodes:    make([]Node, len(g.Nodes)),
		Channels: make(map[string]Channel),
	}

	for i, gn := range g.Nodes {
		node := Node{
			Name:        names[i],
			Translation: vec3From(gn.Translation),
			Rotation:    quatOrIdentity(gn.Rotation),
			Scale:       scaleOrOne(gn.Scale),
			Children:    make([]int, len(gn.Children)),
		}
		for c, child := range gn.Children {
			node.Children[c] = int(child)
		}
		if m, ok := matrixOf(gn.Matrix); ok {
			node.Local = m
		} else {
			node.Local = trsMat4(node.Translation, node.Rotation, node.Scale)
		}
		doc.Nodes[i] = node
	}

	sceneIdx := 0
	if g.Scene != nil && int(*g.Scene) < len(g.Scenes) {
		sceneIdx = int(*g.Scene)
	}
	for _, r := range g.Scenes[sceneIdx].Nodes {
		if int(r) < len(doc.Nodes) {
			doc.Roots = append(doc.Roots, int(r))
		}
	}

	doc.ClipCount = len(g.Animations)
	if len(g.Animations) > 0 {
		if err := importChannels(g, g.Animations[0], names, doc); err != nil {
			return nil, err
		}
	}

	for i, gn := range g.Nodes {
		if gn.Mesh == nil {
			continue
		}
		if int(*gn.Mesh) >= len(g.Meshes) {
			return nil, fmt.Errorf("node %q: mesh %d out of range", names[i], *gn.Mesh)
		}
		gm := g.Meshes[*gn.Mesh]
		for pi, prim := range gm.Primitives {
			mesh, err := importPrimitive(g, gm, prim, pi, names[i], gn.Skin, names)
			if err != nil {
				return nil, err
			}
			doc.Meshes = append(doc.Meshes, *mesh)
		}
	}

	return doc, nil
}

// nodeNames assigns every node a unique, non-empty name. Channels and bone
// tables resolve by name, so collisions get an index suffix.
func nodeNames(g *gltf.Document) []string {
	names := make([]string, len(g.Nodes))
	seen := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		base := n.Name
		if base == "" {
			base = fmt.Sprintf("node_%d", i)
		}
		name := base
		for suffix := 1; seen[name]; suffix++ {
			name = fmt.Sprintf("%s_%d", base, suffix)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

func vec3From(v [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// quatOrIdentity treats the zero value as an absent rotation.
func quatOrIdentity(r [4]float32) mgl32.Quat {
	if r == ([4]float32{}) {
		return mgl32.QuatIdent()
	}
	return mgl32.Quat{
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
		W: float32(r[3]),
	}
}

// scaleOrOne treats the zero value as an absent scale.
func scaleOrOne(s [3]float32) mgl32.Vec3 {
	if s == ([3]float32{}) {
		return mgl32.Vec3{1, 1, 1}
	}
	return vec3From(s)
}

// matrixOf returns the node matrix when it carries something other than
// zero or identity. Matrix nodes are never animation targets, so the
// decomposed TRS stays authoritative everywhere else.
func matrixOf(m [16]float32) (mgl32.Mat4, bool) {
	zero := m == [16]float32{}
	identity := m == [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	if zero || identity {
		return mgl32.Mat4{}, false
	}
	var out mgl32.Mat4
	for i := range out {
		out[i] = float32(m[i])
	}
	return out, true
}

func trsMat4(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Translate3D(t.X(), t.Y(), t.Z())
	m = m.Mul4(r.Normalize().Mat4())
	return m.Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

// importChannels collects the first clip's keys per target node. Sampler
// interpolation hints are ignored; playback blends linearly, with slerp for
// rotations.
func importChannels(g *gltf.Document, anim *gltf.Animation, names []string, doc *Document) error {
	doc.ClipName = anim.Name

	type parts struct {
		translation []keyframe.Key[mgl32.Vec3]
		rotation    []keyframe.Key[mgl32.Quat]
		scale       []keyframe.Key[mgl32.Vec3]
	}
	perNode := make(map[int]*parts)

	for ci, ch := range anim.Channels {
		if ch.Target.Node == nil || ch.Sampler == nil {
			continue
		}
		nodeIdx := int(*ch.Target.Node)
		if nodeIdx >= len(names) {
			return fmt.Errorf("animation channel %d targets unknown node %d", ci, nodeIdx)
		}
		if int(*ch.Sampler) >= len(anim.Samplers) {
			return fmt.Errorf("animation channel %d: sampler %d out of range", ci, *ch.Sampler)
		}
		sampler := anim.Samplers[*ch.Sampler]
		if sampler.Input == nil || sampler.Output == nil {
			continue
		}

		times, err := accessorFloats(g, *sampler.Input, gltf.AccessorScalar)
		if err != nil {
			return fmt.Errorf("animation channel %d times: %w", ci, err)
		}

		p := perNode[nodeIdx]
		if p == nil {
			p = &parts{}
			perNode[nodeIdx] = p
		}

		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			raw, err := accessorFloats(g, *sampler.Output, gltf.AccessorVec3)
			if err != nil {
				return fmt.Errorf("animation channel %d values: %w", ci, err)
			}
			vecs := floatsToVec3s(raw)
			if len(vecs) != len(times) {
				return fmt.Errorf("animation channel %d: %w", ci, ErrSamplerMismatch)
			}
			keys := make([]keyframe.Key[mgl32.Vec3], len(times))
			for i, tm := range times {
				keys[i] = keyframe.Key[mgl32.Vec3]{Time: float64(tm), Value: vecs[i]}
			}
			if ch.Target.Path == gltf.TRSTranslation {
				p.translation = append(p.translation, keys...)
			} else {
				p.scale = append(p.scale, keys...)
			}
		case gltf.TRSRotation:
			raw, err := accessorFloats(g, *sampler.Output, gltf.AccessorVec4)
			if err != nil {
				return fmt.Errorf("animation channel %d values: %w", ci, err)
			}
			quats := floatsToQuats(raw)
			if len(quats) != len(times) {
				return fmt.Errorf("animation channel %d: %w", ci, ErrSamplerMismatch)
			}
			for i, tm := range times {
				p.rotation = append(p.rotation, keyframe.Key[mgl32.Quat]{Time: float64(tm), Value: quats[i]})
			}
		default:
			// Morph target weights are out of scope.
		}
	}

	for idx, p := range perNode {
		// glTF sampler inputs are already seconds.
		doc.Channels[names[idx]] = NewChannel(1, p.translation, p.rotation, p.scale)
	}
	return nil
}

func importPrimitive(g *gltf.Document, gm *gltf.Mesh, prim *gltf.Primitive, pi int, attachTo string, skinIdx *uint32, names []string) (*Mesh, error) {
	name := gm.Name
	if name == "" {
		name = attachTo + "_mesh"
	}
	if len(gm.Primitives) > 1 {
		name = fmt.Sprintf("%s_%d", name, pi)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("mesh %q: %w", name, ErrNoPositions)
	}
	posAcc, err := attrAccessor(g, posIdx)
	if err != nil {
		return nil, fmt.Errorf("mesh %q positions: %w", name, err)
	}
	positions, err := modeler.ReadPosition(g, posAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("mesh %q positions: %w", name, err)
	}

	var indices []uint32
	if prim.Indices != nil {
		idxAcc, err := attrAccessor(g, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("mesh %q indices: %w", name, err)
		}
		indices, err = modeler.ReadIndices(g, idxAcc, nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %q indices: %w", name, err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	var normals [][3]float32
	if nIdx, ok := prim.Attributes["NORMAL"]; ok {
		acc, err := attrAccessor(g, nIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %q normals: %w", name, err)
		}
		normals, err = modeler.ReadNormal(g, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %q normals: %w", name, err)
		}
	} else {
		normals = computeNormals(positions, indices)
	}
	if len(normals) != len(positions) {
		return nil, fmt.Errorf("mesh %q: %d normals for %d positions", name, len(normals), len(positions))
	}

	uvs := make([][2]float32, len(positions))
	if uvIdx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		acc, err := attrAccessor(g, uvIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %q texcoords: %w", name, err)
		}
		uvs, err = modeler.ReadTextureCoord(g, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %q texcoords: %w", name, err)
		}
		if len(uvs) != len(positions) {
			return nil, fmt.Errorf("mesh %q: %d texcoords for %d positions", name, len(uvs), len(positions))
		}
	}

	mesh := &Mesh{
		Name:     name,
		AttachTo: attachTo,
		Indices:  indices,
		Material: importMaterial(g, prim.Material),
		Bounds:   computeBounds(positions),
	}
	mesh.Vertices = make([]Vertex, len(positions))
	for i := range positions {
		mesh.Vertices[i] = Vertex{Position: positions[i], Normal: normals[i], TexCoord: uvs[i]}
	}

	if skinIdx != nil {
		if err := importSkin(g, prim, mesh, *skinIdx, names); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", name, err)
		}
	}
	return mesh, nil
}

func importSkin(g *gltf.Document, prim *gltf.Primitive, mesh *Mesh, skinIdx uint32, names []string) error {
	if int(skinIdx) >= len(g.Skins) {
		return fmt.Errorf("skin %d out of range", skinIdx)
	}
	jIdx, haveJoints := prim.Attributes["JOINTS_0"]
	wIdx, haveWeights := prim.Attributes["WEIGHTS_0"]
	if !haveJoints || !haveWeights {
		// A skin without vertex attributes renders as a static mesh.
		return nil
	}

	jAcc, err := attrAccessor(g, jIdx)
	if err != nil {
		return fmt.Errorf("joints: %w", err)
	}
	joints, err := modeler.ReadJoints(g, jAcc, nil)
	if err != nil {
		return fmt.Errorf("joints: %w", err)
	}
	wAcc, err := attrAccessor(g, wIdx)
	if err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	weights, err := modeler.ReadWeights(g, wAcc, nil)
	if err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if len(joints) != len(mesh.Vertices) || len(weights) != len(mesh.Vertices) {
		return fmt.Errorf("skin attributes cover %d joints / %d weights for %d vertices", len(joints), len(weights), len(mesh.Vertices))
	}

	mesh.Influences = make([][]skin.Influence, len(mesh.Vertices))
	for vi := range mesh.Influences {
		var list []skin.Influence
		for k := 0; k < 4; k++ {
			if weights[vi][k] > 0 {
				list = append(list, skin.Influence{Joint: uint32(joints[vi][k]), Weight: weights[vi][k]})
			}
		}
		mesh.Influences[vi] = list
	}

	sk := g.Skins[skinIdx]
	if len(sk.Joints) > skin.MaxBones {
		return fmt.Errorf("%w: %d", skin.ErrTooManyBones, len(sk.Joints))
	}
	mesh.BoneNames = make([]string, len(sk.Joints))
	for i, j := range sk.Joints {
		if int(j) >= len(names) {
			return fmt.Errorf("skin joint %d out of range", j)
		}
		mesh.BoneNames[i] = names[j]
	}

	if sk.InverseBindMatrices != nil {
		raw, err := accessorFloats(g, *sk.InverseBindMatrices, gltf.AccessorMat4)
		if err != nil {
			return fmt.Errorf("inverse bind matrices: %w", err)
		}
		mesh.BoneOffsets = floatsToMat4s(raw)
		if len(mesh.BoneOffsets) != len(sk.Joints) {
			return fmt.Errorf("%d inverse bind matrices for %d joints", len(mesh.BoneOffsets), len(sk.Joints))
		}
	} else {
		mesh.BoneOffsets = make([]mgl32.Mat4, len(sk.Joints))
		for i := range mesh.BoneOffsets {
			mesh.BoneOffsets[i] = mgl32.Ident4()
		}
	}
	return nil
}

func attrAccessor(g *gltf.Document, idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(g.Accessors) {
		return nil, fmt.Errorf("%w: %d", ErrBadAccessor, idx)
	}
	return g.Accessors[idx], nil
}

func importMaterial(g *gltf.Document, idx *uint32) Material {
	mat := DefaultMaterial()
	if idx == nil || int(*idx) >= len(g.Materials) {
		return mat
	}
	gm := g.Materials[*idx]
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			mat.Diffuse = mgl32.Vec3{
				float32(pbr.BaseColorFactor[0]),
				float32(pbr.BaseColorFactor[1]),
				float32(pbr.BaseColorFactor[2]),
			}
		}
		if pbr.BaseColorTexture != nil {
			mat.Texture = texturePath(g, pbr.BaseColorTexture.Index)
		}
	}
	return mat
}

// texturePath resolves a texture to its external image file. Embedded and
// data-URI images are skipped; the renderer falls back to a flat texture.
func texturePath(g *gltf.Document, idx uint32) string {
	if int(idx) >= len(g.Textures) {
		return ""
	}
	tex := g.Textures[idx]
	if tex.Source == nil || int(*tex.Source) >= len(g.Images) {
		return ""
	}
	img := g.Images[*tex.Source]
	if img.BufferView != nil || strings.HasPrefix(img.URI, "data:") {
		return ""
	}
	return img.URI
}

// computeNormals area-weights face normals into the vertices, for meshes
// shipped without normals.
func computeNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			continue
		}
		va := mgl32.Vec3{positions[a][0], positions[a][1], positions[a][2]}
		vb := mgl32.Vec3{positions[b][0], positions[b][1], positions[b][2]}
		vc := mgl32.Vec3{positions[c][0], positions[c][1], positions[c][2]}
		n := vb.Sub(va).Cross(vc.Sub(va))
		for _, vi := range [3]uint32{a, b, c} {
			normals[vi][0] += n.X()
			normals[vi][1] += n.Y()
			normals[vi][2] += n.Z()
		}
	}
	for i := range normals {
		n := mgl32.Vec3{normals[i][0], normals[i][1], normals[i][2]}
		if l := n.Len(); l > 1e-6 {
			n = n.Mul(1 / l)
			normals[i] = [3]float32{n.X(), n.Y(), n.Z()}
		} else {
			normals[i] = [3]float32{0, 1, 0}
		}
	}
	return normals
}
