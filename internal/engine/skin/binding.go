package skin

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kverness/armature/internal/engine/scene"
)

// Binding errors.
var (
	ErrBoneCountMismatch = errors.New("bone and offset counts differ")
	ErrTooManyBones      = errors.New("bone count exceeds MaxBones")
	ErrUnknownBone       = errors.New("bone handle not registered in graph")
)

// Binding ties a skinned drawable to its bones: an ordered list of node
// handles paired with bind-pose offset matrices. The order defines the index
// the shader's bone matrix array is addressed with, so it must match the
// joint indices encoded into the vertex attributes. The binding never owns
// the bone nodes; the scene tree does.
type Binding struct {
	graph   *scene.Graph
	bones   []scene.NodeID
	offsets []mgl32.Mat4
}

// NewBinding validates and stores the bone list. Mismatched lengths, more
// than MaxBones bones, or handles outside the graph abort scene assembly.
func NewBinding(graph *scene.Graph, bones []scene.NodeID, offsets []mgl32.Mat4) (*Binding, error) {
	if len(bones) != len(offsets) {
		return nil, fmt.Errorf("%w: %d bones, %d offsets", ErrBoneCountMismatch, len(bones), len(offsets))
	}
	if len(bones) > MaxBones {
		return nil, fmt.Errorf("%w: %d", ErrTooManyBones, len(bones))
	}
	for i, id := range bones {
		if !graph.Valid(id) {
			return nil, fmt.Errorf("%w: bone %d", ErrUnknownBone, i)
		}
	}

	b := &Binding{
		graph:   graph,
		bones:   make([]scene.NodeID, len(bones)),
		offsets: make([]mgl32.Mat4, len(offsets)),
	}
	copy(b.bones, bones)
	copy(b.offsets, offsets)
	return b, nil
}

// Len returns the number of bound bones.
func (b *Binding) Len() int {
	return len(b.bones)
}

// Matrices writes bone_matrix[i] = world_i * offset_i for every bone into
// dst and returns it, growing dst only when its capacity falls short. The
// worlds are the ones stored by the current frame's update pass.
func (b *Binding) Matrices(dst []mgl32.Mat4) []mgl32.Mat4 {
	dst = dst[:0]
	for i, id := range b.bones {
		dst = append(dst, b.graph.World(id).Mul4(b.offsets[i]))
	}
	return dst
}
