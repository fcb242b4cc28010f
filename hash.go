package particles

// The engine's single pseudo-random scheme. Both executors derive every
// randomized attribute from this hash so spawn results are identical no
// matter which backend runs; the WGSL kernels implement the same functions
// with the same constants, bit for bit.

// pcgHash is the PCG-RXS-M-XS-32 output function over a one-step LCG.
func pcgHash(v uint32) uint32 {
	state := v*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// rand01 maps a seed to a float in [0, 1).
func rand01(seed uint32) float32 {
	return float32(pcgHash(seed)) * (1.0 / 4294967296.0)
}

// goldenGamma spreads the per-attribute salt across the seed space.
const goldenGamma uint32 = 0x9E3779B9

// attrRand draws the k-th independent random scalar for a per-slot seed.
func attrRand(seed, k uint32) float32 {
	return rand01(seed + k*goldenGamma)
}

// Per-slot attribute salts. The spawn kernels draw one independent scalar
// per salt; keep the list in sync with the WGSL sources.
const (
	saltShapeA = iota // shape: theta / axis t / edge t
	saltShapeB        // shape: phi / height
	saltShapeC        // shape: radius
	saltFade
	saltSize
	saltSpeed
	saltDirX
	saltDirY
	saltDirZ
	saltRotX
	saltRotY
	saltRotZ
	saltColorStart
	saltColorEnd
	saltBoxX
	saltBoxY
	saltBoxZ
)

// rotSeedMul decorrelates per-particle rotation speed from the spawn-time
// salts: the integrator hashes the slot index alone, so rotation speed is
// stable across a particle's whole life and across respawns of the slot.
const rotSeedMul uint32 = 2654435761

// rotRand draws the integrator's per-slot rotation-speed scalar for an axis.
func rotRand(index, axis uint32) float32 {
	return rand01(index*rotSeedMul + axis*goldenGamma)
}
