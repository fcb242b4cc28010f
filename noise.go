package particles

// Hash-based 3-D value noise and the curl sampling built on it. The
// turbulence stage adds the curl of a vector noise field to particle
// velocity; curl fields are divergence-free, so the swirl never bunches
// particles into sinks. The WGSL update kernel mirrors this arithmetic.

// latticeHash hashes integer lattice coordinates with a per-channel salt.
func latticeHash(x, y, z int32, salt uint32) uint32 {
	return pcgHash(uint32(x)*374761393 + uint32(y)*668265263 + uint32(z)*2147483647 + salt)
}

// smooth is the smoothstep fade applied to lattice fractions.
func smooth(t float32) float32 {
	return t * t * (3 - 2*t)
}

// valueNoise evaluates one channel of value noise at p, in [0, 1).
func valueNoise(p Vec3, salt uint32) float32 {
	fx, fy, fz := floor32(p.X), floor32(p.Y), floor32(p.Z)
	ix, iy, iz := int32(fx), int32(fy), int32(fz)
	tx := smooth(p.X - fx)
	ty := smooth(p.Y - fy)
	tz := smooth(p.Z - fz)

	corner := func(dx, dy, dz int32) float32 {
		return float32(latticeHash(ix+dx, iy+dy, iz+dz, salt)) * (1.0 / 4294967296.0)
	}

	x00 := lerp32(corner(0, 0, 0), corner(1, 0, 0), tx)
	x10 := lerp32(corner(0, 1, 0), corner(1, 1, 0), tx)
	x01 := lerp32(corner(0, 0, 1), corner(1, 0, 1), tx)
	x11 := lerp32(corner(0, 1, 1), corner(1, 1, 1), tx)
	y0 := lerp32(x00, x10, ty)
	y1 := lerp32(x01, x11, ty)
	return lerp32(y0, y1, tz)
}

// Per-channel salts of the vector potential field.
const (
	noiseSaltX uint32 = 0x8da6b343
	noiseSaltY uint32 = 0xd8163841
	noiseSaltZ uint32 = 0xcb1ab31f
)

// potential evaluates the vector noise field the curl is taken of.
func potential(p Vec3) Vec3 {
	return Vec3{
		X: valueNoise(p, noiseSaltX),
		Y: valueNoise(p, noiseSaltY),
		Z: valueNoise(p, noiseSaltZ),
	}
}

// curlEpsilon is the finite-difference step of the curl estimate.
const curlEpsilon float32 = 0.1

// curlNoise estimates the curl of the vector noise field at p by central
// differences: six offset samples, two per axis.
func curlNoise(p Vec3) Vec3 {
	inv := 1 / (2 * curlEpsilon)

	dx0 := potential(Vec3{X: p.X - curlEpsilon, Y: p.Y, Z: p.Z})
	dx1 := potential(Vec3{X: p.X + curlEpsilon, Y: p.Y, Z: p.Z})
	dy0 := potential(Vec3{X: p.X, Y: p.Y - curlEpsilon, Z: p.Z})
	dy1 := potential(Vec3{X: p.X, Y: p.Y + curlEpsilon, Z: p.Z})
	dz0 := potential(Vec3{X: p.X, Y: p.Y, Z: p.Z - curlEpsilon})
	dz1 := potential(Vec3{X: p.X, Y: p.Y, Z: p.Z + curlEpsilon})

	return Vec3{
		X: ((dy1.Z - dy0.Z) - (dz1.Y - dz0.Y)) * inv,
		Y: ((dz1.X - dz0.X) - (dx1.Z - dx0.Z)) * inv,
		Z: ((dx1.Y - dx0.Y) - (dy1.X - dy0.X)) * inv,
	}
}
