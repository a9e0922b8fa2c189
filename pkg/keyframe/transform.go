package keyframe

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformTrack composes three independently timed keyframe sets
// (translation, rotation, scale) into a single affine transform. The
// sub-tracks may have different key counts and cover different time ranges.
type TransformTrack struct {
	translation *Set[mgl32.Vec3]
	rotation    *Set[mgl32.Quat]
	scale       *Set[mgl32.Vec3]
}

// NewTransformTrack builds a track from translation, rotation and scale
// keys. Each component must satisfy the keyframe set invariants; rotation
// keys are blended with Slerp, the vector components with Lerp.
func NewTransformTrack(translation []Key[mgl32.Vec3], rotation []Key[mgl32.Quat], scale []Key[mgl32.Vec3]) (*TransformTrack, error) {
	tr, err := NewSet(translation, Lerp)
	if err != nil {
		return nil, fmt.Errorf("translation track: %w", err)
	}
	rot, err := NewSet(rotation, Slerp)
	if err != nil {
		return nil, fmt.Errorf("rotation track: %w", err)
	}
	sc, err := NewSet(scale, Lerp)
	if err != nil {
		return nil, fmt.Errorf("scale track: %w", err)
	}
	return &TransformTrack{translation: tr, rotation: rot, scale: sc}, nil
}

// Value returns the composed transform T * R * S at time t.
func (tt *TransformTrack) Value(t float64) mgl32.Mat4 {
	tr := tt.translation.Value(t)
	rot := tt.rotation.Value(t)
	sc := tt.scale.Value(t)

	m := mgl32.Translate3D(tr.X(), tr.Y(), tr.Z())
	m = m.Mul4(rot.Normalize().Mat4())
	return m.Mul4(mgl32.Scale3D(sc.X(), sc.Y(), sc.Z()))
}

// Start returns the earliest keyframe time across the three components.
func (tt *TransformTrack) Start() float64 {
	start := tt.translation.Start()
	if s := tt.rotation.Start(); s < start {
		start = s
	}
	if s := tt.scale.Start(); s < start {
		start = s
	}
	return start
}

// End returns the latest keyframe time across the three components.
func (tt *TransformTrack) End() float64 {
	end := tt.translation.End()
	if e := tt.rotation.End(); e > end {
		end = e
	}
	if e := tt.scale.End(); e > end {
		end = e
	}
	return end
}
