package particles

import "math"

// Emission-shape sampling and the per-slot spawn fill. This is the scalar
// reference the CPU executor runs directly and the WGSL spawn kernel
// mirrors.

const twoPi = float32(2 * math.Pi)

// shapeOffset draws a spawn offset (relative to the spawn origin) for slot
// seed from the configured emission shape.
func shapeOffset(p *Params, seed uint32) Vec3 {
	switch p.Shape {
	case ShapeBox:
		return Vec3{
			X: p.StartPosition.X.Lerp(attrRand(seed, saltBoxX)),
			Y: p.StartPosition.Y.Lerp(attrRand(seed, saltBoxY)),
			Z: p.StartPosition.Z.Lerp(attrRand(seed, saltBoxZ)),
		}
	case ShapeSphere:
		theta := attrRand(seed, saltShapeA) * twoPi
		phi := acos32(1 - 2*attrRand(seed, saltShapeB))
		r := sphereRadius(p, attrRand(seed, saltShapeC))
		sp := sin32(phi)
		return Vec3{
			X: r * sp * cos32(theta),
			Y: r * cos32(phi),
			Z: r * sp * sin32(theta),
		}
	case ShapeCone:
		h := p.Height.Lerp(attrRand(seed, saltShapeB))
		maxR := h * sin32(p.Angle)
		r := diskRadius(maxR, 0, p.SurfaceOnly, attrRand(seed, saltShapeC))
		a := attrRand(seed, saltShapeA) * twoPi
		local := Vec3{X: r * cos32(a), Y: h, Z: r * sin32(a)}
		return rotateYTo(local, p.EmitterDirection)
	case ShapeDisk:
		r := diskRadius(p.Radius.Max, p.Radius.Min, p.SurfaceOnly, attrRand(seed, saltShapeC))
		a := attrRand(seed, saltShapeA) * twoPi
		local := Vec3{X: r * cos32(a), Y: 0, Z: r * sin32(a)}
		return rotateYTo(local, p.EmitterDirection)
	case ShapeEdge:
		t := attrRand(seed, saltShapeA)
		return p.StartPosition.MinCorner().Lerp(p.StartPosition.MaxCorner(), t)
	default: // ShapePoint
		return Vec3{}
	}
}

// sphereRadius interpolates between the inner and outer shell so the volume
// between them fills uniformly (cube-root interpolation), or pins to the
// outer shell when surface-only emission is set.
func sphereRadius(p *Params, t float32) float32 {
	if p.SurfaceOnly {
		return p.Radius.Max
	}
	inner := p.Radius.Min
	outer := p.Radius.Max
	return cbrt32(lerp32(inner*inner*inner, outer*outer*outer, t))
}

// diskRadius interpolates uniformly in area (square-root interpolation)
// between inner and outer, or pins to outer when surface-only is set.
func diskRadius(outer, inner float32, surfaceOnly bool, t float32) float32 {
	if surfaceOnly {
		return outer
	}
	return sqrt32(lerp32(inner*inner, outer*outer, t))
}

// spawnVelocity derives the initial velocity for a spawn offset.
//
// With attract-to-center, velocity is -offset*fadeRate: position integrates
// velocity*dt and lifetime decays by fadeRate*dt from 1, so the particle
// lands exactly on the spawn point the moment its lifetime reaches zero.
func spawnVelocity(p *Params, seed uint32, offset Vec3, fade float32) Vec3 {
	if p.AttractToCenter {
		return offset.Mul(-fade)
	}
	speed := p.Speed.Lerp(attrRand(seed, saltSpeed))
	if p.StartPositionAsDirection {
		return offset.Normalize().Mul(speed)
	}
	dir := Vec3{
		X: p.Direction.X.Lerp(attrRand(seed, saltDirX)),
		Y: p.Direction.Y.Lerp(attrRand(seed, saltDirY)),
		Z: p.Direction.Z.Lerp(attrRand(seed, saltDirZ)),
	}
	return dir.Normalize().Mul(speed)
}

// paletteIndex maps a random scalar to a palette slot.
func paletteIndex(r float32, count int) int {
	if count <= 1 {
		return 0
	}
	i := int(floor32(r * float32(count)))
	if i >= count {
		i = count - 1
	}
	return i
}

// spawnSlot fills one particle slot with randomized attributes. index is the
// slot being written; the per-slot seed is index + batchSeed, so one batch's
// particles are independent yet fully determined by the batch seed.
func spawnSlot(s *Storage, p *Params, index int) {
	seed := uint32(index) + p.BatchSeed

	offset := shapeOffset(p, seed)
	fade := p.FadeRate.Lerp(attrRand(seed, saltFade))

	s.setPosition(index, p.SpawnOrigin.Add(offset))
	s.setVelocity(index, spawnVelocity(p, seed, offset, fade))
	s.Life[index] = 1
	s.FadeRate[index] = fade
	s.Size[index] = p.Size.Lerp(attrRand(seed, saltSize))

	if p.RotationActive && s.Rotation != nil {
		s.Rotation[index*3] = p.Rotation.X.Lerp(attrRand(seed, saltRotX))
		s.Rotation[index*3+1] = p.Rotation.Y.Lerp(attrRand(seed, saltRotY))
		s.Rotation[index*3+2] = p.Rotation.Z.Lerp(attrRand(seed, saltRotZ))
	}
	if p.ColorActive && s.ColorStart != nil {
		ci := paletteIndex(attrRand(seed, saltColorStart), p.ColorStartCount)
		c := p.ColorStart[ci]
		s.ColorStart[index*3], s.ColorStart[index*3+1], s.ColorStart[index*3+2] = c.R, c.G, c.B
		ci = paletteIndex(attrRand(seed, saltColorEnd), p.ColorEndCount)
		c = p.ColorEnd[ci]
		s.ColorEnd[index*3], s.ColorEnd[index*3+1], s.ColorEnd[index*3+2] = c.R, c.G, c.B
	}
}
