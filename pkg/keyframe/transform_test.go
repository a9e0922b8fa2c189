package keyframe

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func constTrack(t *testing.T, tr mgl32.Vec3, rot mgl32.Quat, sc mgl32.Vec3) *TransformTrack {
	t.Helper()
	track, err := NewTransformTrack(
		[]Key[mgl32.Vec3]{{Time: 0, Value: tr}},
		[]Key[mgl32.Quat]{{Time: 0, Value: rot}},
		[]Key[mgl32.Vec3]{{Time: 0, Value: sc}},
	)
	if err != nil {
		t.Fatalf("NewTransformTrack failed: %v", err)
	}
	return track
}

func TestTransformTrackComposesTRS(t *testing.T) {
	rot := mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 1, 0})
	track := constTrack(t, mgl32.Vec3{1, 2, 3}, rot, mgl32.Vec3{2, 2, 2})

	want := mgl32.Translate3D(1, 2, 3).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(2, 2, 2))
	got := track.Value(0)

	// Compare by applying both to canonical points.
	for _, p := range []mgl32.Vec4{{0, 0, 0, 1}, {1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}} {
		gp := got.Mul4x1(p)
		wp := want.Mul4x1(p)
		for i := 0; i < 4; i++ {
			if math.Abs(float64(gp[i]-wp[i])) > 0.0001 {
				t.Errorf("point %v component %d: expected %v, got %v", p, i, wp[i], gp[i])
			}
		}
	}

	// Scale then rotate then translate: +X ends up at translation + rotated, scaled X.
	gp := got.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	wp := mgl32.Vec4{1, 2, 3 - 2, 1}
	for i := 0; i < 4; i++ {
		if math.Abs(float64(gp[i]-wp[i])) > 0.0001 {
			t.Errorf("unit X through TRS component %d: expected %v, got %v", i, wp[i], gp[i])
		}
	}
}

func TestTransformTrackSingleKeyIsConstant(t *testing.T) {
	track := constTrack(t, mgl32.Vec3{4, 0, 0}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})

	first := track.Value(0)
	for _, tm := range []float64{-5, 0.5, 17} {
		got := track.Value(tm)
		for i := 0; i < 16; i++ {
			if math.Abs(float64(got[i]-first[i])) > 0.0001 {
				t.Errorf("Value(%v) element %d: expected constant %v, got %v", tm, i, first[i], got[i])
			}
		}
	}
}

func TestTransformTrackAnimatesTranslation(t *testing.T) {
	track, err := NewTransformTrack(
		[]Key[mgl32.Vec3]{
			{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
			{Time: 2, Value: mgl32.Vec3{10, 0, 0}},
		},
		[]Key[mgl32.Quat]{{Time: 0, Value: mgl32.QuatIdent()}},
		[]Key[mgl32.Vec3]{{Time: 0, Value: mgl32.Vec3{1, 1, 1}}},
	)
	if err != nil {
		t.Fatalf("NewTransformTrack failed: %v", err)
	}

	got := track.Value(1).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(got.X()-5)) > 0.0001 {
		t.Errorf("origin at t=1: expected x=5, got %v", got.X())
	}
}

func TestTransformTrackRejectsEmptyComponent(t *testing.T) {
	_, err := NewTransformTrack(
		nil,
		[]Key[mgl32.Quat]{{Time: 0, Value: mgl32.QuatIdent()}},
		[]Key[mgl32.Vec3]{{Time: 0, Value: mgl32.Vec3{1, 1, 1}}},
	)
	if !errors.Is(err, ErrNoKeyframes) {
		t.Errorf("empty translation component: expected ErrNoKeyframes, got %v", err)
	}
}

func TestTransformTrackStartEnd(t *testing.T) {
	track, err := NewTransformTrack(
		[]Key[mgl32.Vec3]{{Time: 1, Value: mgl32.Vec3{}}, {Time: 4, Value: mgl32.Vec3{}}},
		[]Key[mgl32.Quat]{{Time: 0.5, Value: mgl32.QuatIdent()}},
		[]Key[mgl32.Vec3]{{Time: 2, Value: mgl32.Vec3{1, 1, 1}}, {Time: 6, Value: mgl32.Vec3{1, 1, 1}}},
	)
	if err != nil {
		t.Fatalf("NewTransformTrack failed: %v", err)
	}
	if track.Start() != 0.5 {
		t.Errorf("Start: expected 0.5, got %v", track.Start())
	}
	if track.End() != 6 {
		t.Errorf("End: expected 6, got %v", track.End())
	}
}
