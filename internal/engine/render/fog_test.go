package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func vec3Close(a, b mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(float64(a[i]-b[i])) > 0.0001 {
			return false
		}
	}
	return true
}

func TestFogCycleStartsAtDay(t *testing.T) {
	c := FogCycle{Day: mgl32.Vec3{1, 1, 1}, Night: mgl32.Vec3{0, 0, 0}, Period: 60}

	if got := c.Color(0); !vec3Close(got, c.Day) {
		t.Errorf("t=0: expected day colour %v, got %v", c.Day, got)
	}
}

func TestFogCycleReachesNightAtHalfPeriod(t *testing.T) {
	c := FogCycle{Day: mgl32.Vec3{0.8, 0.8, 0.9}, Night: mgl32.Vec3{0.0, 0.0, 0.1}, Period: 60}

	if got := c.Color(30); !vec3Close(got, c.Night) {
		t.Errorf("t=period/2: expected night colour %v, got %v", c.Night, got)
	}
}

func TestFogCycleIsPeriodic(t *testing.T) {
	c := FogCycle{Day: mgl32.Vec3{1, 0.5, 0.25}, Night: mgl32.Vec3{0.1, 0.1, 0.1}, Period: 45}

	a := c.Color(7)
	b := c.Color(7 + 45)
	if !vec3Close(a, b) {
		t.Errorf("expected colour to repeat after one period: %v vs %v", a, b)
	}
}

func TestFogCycleQuarterPeriodIsMidpoint(t *testing.T) {
	c := FogCycle{Day: mgl32.Vec3{1, 1, 1}, Night: mgl32.Vec3{0, 0, 0}, Period: 100}

	if got := c.Color(25); !vec3Close(got, mgl32.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("t=period/4: expected midpoint grey, got %v", got)
	}
}

func TestFogCycleZeroPeriodStaysDay(t *testing.T) {
	c := FogCycle{Day: mgl32.Vec3{0.7, 0.7, 0.7}, Night: mgl32.Vec3{0, 0, 0}}

	for _, tm := range []float64{0, 13, 9999} {
		if got := c.Color(tm); !vec3Close(got, c.Day) {
			t.Errorf("t=%v: expected constant day colour, got %v", tm, got)
		}
	}
}
