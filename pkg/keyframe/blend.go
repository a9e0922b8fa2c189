package keyframe

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Lerp blends two vectors linearly: earlier + f*(later-earlier).
func Lerp(later, earlier mgl32.Vec3, f float32) mgl32.Vec3 {
	return earlier.Add(later.Sub(earlier).Mul(f))
}

// Slerp blends two quaternions along the great arc from earlier to later,
// taking the shorter path. Near-parallel quaternions fall back to normalized
// linear interpolation to avoid dividing by a vanishing sine.
func Slerp(later, earlier mgl32.Quat, f float32) mgl32.Quat {
	from, to := earlier, later

	dot := from.Dot(to)

	// Negate one endpoint when the arc is the long way around.
	if dot < 0 {
		to = mgl32.Quat{W: -to.W, V: to.V.Mul(-1)}
		dot = -dot
	}

	if dot > 0.9995 {
		return mgl32.Quat{
			W: from.W + f*(to.W-from.W),
			V: from.V.Add(to.V.Sub(from.V).Mul(f)),
		}.Normalize()
	}

	theta0 := math32.Acos(dot)
	theta := theta0 * f
	sinTheta := math32.Sin(theta)
	sinTheta0 := math32.Sin(theta0)

	s0 := math32.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return mgl32.Quat{
		W: from.W*s0 + to.W*s1,
		V: from.V.Mul(s0).Add(to.V.Mul(s1)),
	}
}
