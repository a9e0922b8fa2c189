package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/go-gl/mathgl/mgl32"
)

// Accessor errors.
var (
	ErrBadAccessor         = errors.New("accessor index out of range")
	ErrUnsupportedAccessor = errors.New("unsupported accessor layout")
	ErrTruncatedBuffer     = errors.New("accessor exceeds buffer bounds")
)

func accessorComponents(t gltf.AccessorType) (int, bool) {
	switch t {
	case gltf.AccessorScalar:
		return 1, true
	case gltf.AccessorVec3:
		return 3, true
	case gltf.AccessorVec4:
		return 4, true
	case gltf.AccessorMat4:
		return 16, true
	default:
		return 0, false
	}
}

// accessorFloats decodes a float accessor into a flat component slice.
// Animation samplers and inverse bind matrices always use float storage,
// so only ComponentFloat is accepted; the typed mesh-attribute readers
// handle everything else.
func accessorFloats(g *gltf.Document, index uint32, want gltf.AccessorType) ([]float32, error) {
	if int(index) >= len(g.Accessors) {
		return nil, fmt.Errorf("%w: %d", ErrBadAccessor, index)
	}
	acc := g.Accessors[index]
	if acc.ComponentType != gltf.ComponentFloat || acc.Type != want {
		return nil, fmt.Errorf("%w: accessor %d has component %v type %v", ErrUnsupportedAccessor, index, acc.ComponentType, acc.Type)
	}
	components, ok := accessorComponents(want)
	if !ok {
		return nil, fmt.Errorf("%w: accessor type %v", ErrUnsupportedAccessor, want)
	}

	count := int(acc.Count)
	out := make([]float32, 0, count*components)
	if count == 0 {
		return out, nil
	}
	// An accessor without a buffer view reads as zeros.
	if acc.BufferView == nil {
		return append(out, make([]float32, count*components)...), nil
	}
	if int(*acc.BufferView) >= len(g.BufferViews) {
		return nil, fmt.Errorf("%w: buffer view %d", ErrBadAccessor, *acc.BufferView)
	}
	view := g.BufferViews[*acc.BufferView]
	if int(view.Buffer) >= len(g.Buffers) {
		return nil, fmt.Errorf("%w: buffer %d", ErrBadAccessor, view.Buffer)
	}
	data := g.Buffers[view.Buffer].Data

	elemSize := components * 4
	stride := int(view.ByteStride)
	if stride == 0 {
		stride = elemSize
	}
	base := int(view.ByteOffset) + int(acc.ByteOffset)
	if base+(count-1)*stride+elemSize > len(data) {
		return nil, fmt.Errorf("%w: accessor %d needs %d bytes", ErrTruncatedBuffer, index, base+(count-1)*stride+elemSize)
	}

	for i := 0; i < count; i++ {
		off := base + i*stride
		for c := 0; c < components; c++ {
			bits := binary.LittleEndian.Uint32(data[off+c*4:])
			out = append(out, math.Float32frombits(bits))
		}
	}
	return out, nil
}

func floatsToVec3s(fs []float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(fs)/3)
	for i := range out {
		out[i] = mgl32.Vec3{fs[i*3], fs[i*3+1], fs[i*3+2]}
	}
	return out
}

// floatsToQuats reads x,y,z,w storage order.
func floatsToQuats(fs []float32) []mgl32.Quat {
	out := make([]mgl32.Quat, len(fs)/4)
	for i := range out {
		out[i] = mgl32.Quat{
			V: mgl32.Vec3{fs[i*4], fs[i*4+1], fs[i*4+2]},
			W: fs[i*4+3],
		}
	}
	return out
}

// floatsToMat4s copies column-major storage straight through.
func floatsToMat4s(fs []float32) []mgl32.Mat4 {
	out := make([]mgl32.Mat4, len(fs)/16)
	for i := range out {
		copy(out[i][:], fs[i*16:(i+1)*16])
	}
	return out
}
