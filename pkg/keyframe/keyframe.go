// Package keyframe provides time-keyed interpolation over sorted keyframe
// sets and the composition of translation/rotation/scale tracks into 4x4
// transforms.
package keyframe

import (
	"errors"
	"sort"
)

// Keyframe set errors.
var (
	ErrNoKeyframes        = errors.New("keyframe set needs at least one keyframe")
	ErrNonIncreasingTimes = errors.New("keyframe times must be strictly increasing")
	ErrNilBlend           = errors.New("keyframe set needs a blend function")
)

// Key is a single (time, value) sample of an animated quantity.
type Key[T any] struct {
	Time  float64
	Value T
}

// BlendFunc mixes two keyframe values. It receives the later value first,
// the earlier value second, and a fraction f in [0, 1] measured from the
// earlier key, and computes earlier + f*(later-earlier) in whatever space
// T lives in.
type BlendFunc[T any] func(later, earlier T, f float32) T

// Set holds keyframes sorted by time and evaluates them at arbitrary times.
// The value type is opaque to the set; all mixing goes through the blend
// function supplied at construction.
type Set[T any] struct {
	keys  []Key[T]
	blend BlendFunc[T]
}

// NewSet builds a keyframe set from the given keys. The input is copied and
// sorted by time; it must contain at least one key and no two keys may share
// a time.
func NewSet[T any](keys []Key[T], blend BlendFunc[T]) (*Set[T], error) {
	if len(keys) == 0 {
		return nil, ErrNoKeyframes
	}
	if blend == nil {
		return nil, ErrNilBlend
	}

	sorted := make([]Key[T], len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Time <= sorted[i-1].Time {
			return nil, ErrNonIncreasingTimes
		}
	}

	return &Set[T]{keys: sorted, blend: blend}, nil
}

// Value evaluates the set at time t. Times at or before the first key clamp
// to the first value, times at or after the last key clamp to the last
// value. In between, the two surrounding keys are mixed by the blend
// function with fraction (t - t[i-1]) / (t[i] - t[i-1]).
func (s *Set[T]) Value(t float64) T {
	keys := s.keys
	if t <= keys[0].Time {
		return keys[0].Value
	}
	last := len(keys) - 1
	if t >= keys[last].Time {
		return keys[last].Value
	}

	// First key strictly later than t; clamping above guarantees 0 < i <= last.
	i := sort.Search(len(keys), func(i int) bool {
		return keys[i].Time > t
	})
	f := (t - keys[i-1].Time) / (keys[i].Time - keys[i-1].Time)
	return s.blend(keys[i].Value, keys[i-1].Value, float32(f))
}

// Len returns the number of keyframes.
func (s *Set[T]) Len() int {
	return len(s.keys)
}

// Start returns the time of the first keyframe.
func (s *Set[T]) Start() float64 {
	return s.keys[0].Time
}

// End returns the time of the last keyframe.
func (s *Set[T]) End() float64 {
	return s.keys[len(s.keys)-1].Time
}
