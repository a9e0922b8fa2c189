package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FogCycle blends the fog colour between a day and a night tone as
// time advances.
type FogCycle struct {
	Day    mgl32.Vec3
	Night  mgl32.Vec3
	Period float64 // seconds for a full day/night round trip
}

// Color returns the fog colour at time t. The cycle starts at full
// day, reaches full night at half the period and returns to day.
func (c FogCycle) Color(t float64) mgl32.Vec3 {
	if c.Period <= 0 {
		return c.Day
	}
	day := float32((math.Cos(2*math.Pi*t/c.Period) + 1) / 2)
	return c.Night.Add(c.Day.Sub(c.Night).Mul(day))
}

// Fog controls distance fog.
type Fog struct {
	Enabled bool
	Near    float32
	Far     float32
	Cycle   FogCycle
}

// DefaultFog returns fog tuned for viewing a single model: it starts
// well past the fitted camera distance so geometry stays readable.
func DefaultFog() Fog {
	return Fog{
		Enabled: true,
		Near:    20,
		Far:     120,
		Cycle: FogCycle{
			Day:    mgl32.Vec3{0.75, 0.80, 0.85},
			Night:  mgl32.Vec3{0.02, 0.03, 0.08},
			Period: 120,
		},
	}
}
