package particles

import "math"

// Vec3 represents a 3D vector or position with float32 components.
// The engine is float32 end-to-end so that the scalar CPU path and the GPU
// kernels produce identical arithmetic.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Mul returns the vector scaled by a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Neg returns the negation of the vector.
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(w Vec3) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product of two vectors.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the length (magnitude) of the vector.
func (v Vec3) Length() float32 {
	return sqrt32(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// LengthSq returns the squared length of the vector.
func (v Vec3) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalize returns a unit vector in the same direction.
// Returns the zero vector if the original vector has zero length.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
}

// Lerp performs linear interpolation between two vectors.
func (v Vec3) Lerp(w Vec3, t float32) Vec3 {
	return Vec3{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
		Z: v.Z + (w.Z-v.Z)*t,
	}
}

// RotateAround rotates v around the given unit axis by angle radians using
// Rodrigues' rotation formula.
func (v Vec3) RotateAround(axis Vec3, angle float32) Vec3 {
	c := cos32(angle)
	s := sin32(angle)
	k := axis
	// v*cos + (k×v)*sin + k*(k·v)*(1-cos)
	return v.Mul(c).Add(k.Cross(v).Mul(s)).Add(k.Mul(k.Dot(v) * (1 - c)))
}

// Quat is a unit quaternion used for emitter orientation.
type Quat struct {
	W, X, Y, Z float32
}

// QuatIdentity is the identity rotation.
var QuatIdentity = Quat{W: 1}

// QuatFromAxisAngle builds a quaternion rotating by angle radians around the
// given unit axis.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	h := angle * 0.5
	s := sin32(h)
	return Quat{W: cos32(h), X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s}
}

// Rotate applies the quaternion rotation to a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	// t = 2 * (q.xyz × v); v' = v + q.w*t + q.xyz × t
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(u.Cross(t))
}

// rotateYTo rotates a local offset whose major axis is +Y so that +Y aligns
// with dir. Used by the cone and disk shape samplers.
func rotateYTo(local, dir Vec3) Vec3 {
	d := dir.Normalize()
	if d == (Vec3{}) {
		return local
	}
	up := Vec3{Y: 1}
	dot := up.Dot(d)
	if dot > 0.9999 {
		return local
	}
	if dot < -0.9999 {
		// Antiparallel: flip around X.
		return Vec3{X: local.X, Y: -local.Y, Z: -local.Z}
	}
	axis := up.Cross(d).Normalize()
	return local.RotateAround(axis, acos32(dot))
}

// float32 math helpers. The stdlib math package is float64; these keep call
// sites readable and the rounding behavior in one place.

func sqrt32(v float32) float32  { return float32(math.Sqrt(float64(v))) }
func cbrt32(v float32) float32  { return float32(math.Cbrt(float64(v))) }
func sin32(v float32) float32   { return float32(math.Sin(float64(v))) }
func cos32(v float32) float32   { return float32(math.Cos(float64(v))) }
func acos32(v float32) float32  { return float32(math.Acos(float64(v))) }
func abs32(v float32) float32   { return float32(math.Abs(float64(v))) }
func floor32(v float32) float32 { return float32(math.Floor(float64(v))) }

func lerp32(a, b, t float32) float32 { return a + (b-a)*t }

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
