// Package model provides the normalized rig document consumed by scene
// assembly: the named node hierarchy with bind-pose transforms, per-node
// animation channels in seconds, and meshes with their skinning tables. The
// glTF importer in this package produces documents; assembly turns them
// into a scene graph.
package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kverness/armature/internal/engine/skin"
	"github.com/kverness/armature/pkg/keyframe"
)

// DefaultTicksPerSecond is assumed for assets that declare a zero tick
// rate, following the common importer convention.
const DefaultTicksPerSecond = 25

// Document is a parsed rig ready for assembly.
type Document struct {
	Name     string
	Nodes    []Node
	Roots    []int
	Channels map[string]Channel
	Meshes   []Mesh

	// ClipName and ClipCount describe the animation clip the channels
	// were taken from; assets may carry more clips than the one loaded.
	ClipName  string
	ClipCount int
}

// Node is one joint or grouping node of the hierarchy. Local is the
// bind-pose local transform; the decomposed TRS fields feed the constant
// keys synthesized for partially animated nodes.
type Node struct {
	Name        string
	Local       mgl32.Mat4
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
	Children    []int
}

// Channel holds one node's animation keys with times in seconds.
type Channel struct {
	Translation []keyframe.Key[mgl32.Vec3]
	Rotation    []keyframe.Key[mgl32.Quat]
	Scale       []keyframe.Key[mgl32.Vec3]
}

// NewChannel converts per-component keys from source time units into
// seconds. Formats that author in seconds pass ticksPerSecond 1; a zero
// rate falls back to DefaultTicksPerSecond.
func NewChannel(ticksPerSecond float64, translation []keyframe.Key[mgl32.Vec3], rotation []keyframe.Key[mgl32.Quat], scale []keyframe.Key[mgl32.Vec3]) Channel {
	if ticksPerSecond == 0 {
		ticksPerSecond = DefaultTicksPerSecond
	}
	return Channel{
		Translation: scaleTimes(translation, ticksPerSecond),
		Rotation:    scaleTimes(rotation, ticksPerSecond),
		Scale:       scaleTimes(scale, ticksPerSecond),
	}
}

func scaleTimes[T any](keys []keyframe.Key[T], ticksPerSecond float64) []keyframe.Key[T] {
	if len(keys) == 0 {
		return nil
	}
	scaled := make([]keyframe.Key[T], len(keys))
	for i, k := range keys {
		scaled[i] = keyframe.Key[T]{Time: k.Time / ticksPerSecond, Value: k.Value}
	}
	return scaled
}

// Empty reports whether the channel animates nothing.
func (c Channel) Empty() bool {
	return len(c.Translation) == 0 && len(c.Rotation) == 0 && len(c.Scale) == 0
}

// Span returns the earliest and latest key time across the components,
// or zeros for an empty channel.
func (c Channel) Span() (start, end float64) {
	first := true
	extend := func(t float64) {
		if first {
			start, end = t, t
			first = false
			return
		}
		if t < start {
			start = t
		}
		if t > end {
			end = t
		}
	}
	for _, k := range c.Translation {
		extend(k.Time)
	}
	for _, k := range c.Rotation {
		extend(k.Time)
	}
	for _, k := range c.Scale {
		extend(k.Time)
	}
	return start, end
}

// Vertex is one mesh vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Material carries the Phong parameters uploaded as shader uniforms.
type Material struct {
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
	Specular  mgl32.Vec3
	Shininess float32
	// Texture is the image path relative to the asset, empty when the
	// surface is untextured.
	Texture string
}

// DefaultMaterial returns the material used when the asset declares none.
func DefaultMaterial() Material {
	return Material{
		Ambient:   mgl32.Vec3{0.3, 0.3, 0.3},
		Diffuse:   mgl32.Vec3{1, 1, 1},
		Specular:  mgl32.Vec3{0.5, 0.5, 0.5},
		Shininess: 32,
	}
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Mesh is one drawable surface. The skinning fields are empty for static
// meshes; Influences carries every contribution found in the asset, before
// truncation to the per-vertex limit.
type Mesh struct {
	Name     string
	AttachTo string
	Vertices []Vertex
	Indices  []uint32
	Material Material
	Bounds   Bounds

	Influences  [][]skin.Influence
	BoneNames   []string
	BoneOffsets []mgl32.Mat4
}

// Skinned reports whether the mesh carries a bone table.
func (m *Mesh) Skinned() bool {
	return len(m.BoneNames) > 0
}

// Bounds merges every mesh's bounding box. Documents without geometry get
// a unit box around the origin so camera fitting stays sane.
func (d *Document) Bounds() Bounds {
	first := true
	var b Bounds
	for i := range d.Meshes {
		mb := d.Meshes[i].Bounds
		if first {
			b = mb
			first = false
			continue
		}
		for c := 0; c < 3; c++ {
			if mb.Min[c] < b.Min[c] {
				b.Min[c] = mb.Min[c]
			}
			if mb.Max[c] > b.Max[c] {
				b.Max[c] = mb.Max[c]
			}
		}
	}
	if first {
		return Bounds{Min: [3]float32{-1, -1, -1}, Max: [3]float32{1, 1, 1}}
	}
	return b
}

func computeBounds(positions [][3]float32) Bounds {
	if len(positions) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		for c := 0; c < 3; c++ {
			if p[c] < b.Min[c] {
				b.Min[c] = p[c]
			}
			if p[c] > b.Max[c] {
				b.Max[c] = p[c]
			}
		}
	}
	return b
}
