package particles

// cpuExecutor is the scalar fallback: a literal loop over the shared
// buffers, always available, numerically equivalent to the GPU kernels.
type cpuExecutor struct {
	storage *Storage
	params  *Params
	closed  bool
}

func (e *cpuExecutor) Name() string { return ExecutorCPU }

func (e *cpuExecutor) Init(s *Storage, p *Params) error {
	e.storage = s
	e.params = p
	e.closed = false
	return nil
}

// Spawn fills the slot range synchronously. Only the slots in the range are
// touched; the range may wrap past the end of the pool.
func (e *cpuExecutor) Spawn(r SpawnRange) error {
	if e.closed {
		return ErrExecutorClosed
	}
	s, p := e.storage, e.params
	count := r.Count
	if count > s.Capacity {
		count = s.Capacity
	}
	for k := 0; k < count; k++ {
		spawnSlot(s, p, (r.Start+k)%s.Capacity)
	}
	s.MarkDirty()
	return nil
}

// Update advances every live slot one frame. The stage order is load-
// bearing: collision must see the post-integration position, and lifetime
// decay runs last so a particle that dies this frame keeps its pre-death
// position for exactly one more render.
func (e *cpuExecutor) Update() error {
	if e.closed {
		return ErrExecutorClosed
	}
	s, p := e.storage, e.params
	dt := p.Dt
	for i := 0; i < s.Capacity; i++ {
		if s.Life[i] <= 0 {
			continue
		}
		stepParticle(s, p, i, dt)
	}
	s.MarkDirty()
	return nil
}

func (e *cpuExecutor) Sync() error {
	if e.closed {
		return ErrExecutorClosed
	}
	return nil
}

func (e *cpuExecutor) Close() {
	e.closed = true
	e.storage = nil
	e.params = nil
}

// stepParticle advances one live particle by dt. Mirrored by the WGSL
// update kernel.
func stepParticle(s *Storage, p *Params, i int, dt float32) {
	pos := s.PositionAt(i)
	vel := s.VelocityAt(i)
	life := s.Life[i]
	size := s.Size[i]
	progress := 1 - life

	// 1. Gravity, optionally scaled by particle size.
	vel = vel.Add(p.Gravity.Mul(dt * (1 + size*p.SizeBasedGravity)))

	// 2. Speed scale: velocity curve wins over friction.
	speedScale := float32(1)
	if p.CurveMask&MaskVelocity != 0 && p.Curves != nil {
		speedScale = p.Curves.Sample(ChannelVelocity, progress)
	} else if p.HasFriction {
		intensity := lerp32(p.Friction.Min, p.Friction.Max, ease(p.FrictionEasing, progress))
		speedScale = 1 - intensity*0.9
	}

	// 3. Curl-noise turbulence.
	if p.Turbulence.Intensity > 0 {
		np := pos.Mul(p.Turbulence.Frequency)
		np.X += p.Elapsed * p.Turbulence.Speed
		vel = vel.Add(curlNoise(np).Mul(p.Turbulence.Intensity * dt))
	}

	// 4. Attractors.
	for a := 0; a < p.AttractorCount; a++ {
		vel = vel.Add(attractorForce(&p.Attractors[a], pos).Mul(dt))
	}

	// 5. Position integration.
	pos = pos.Add(vel.Mul(dt * speedScale))

	// 6. Plane collision.
	if p.CollisionActive && pos.Y < p.Collision.PlaneY {
		if p.Collision.Die {
			s.kill(i)
			return
		}
		pos.Y = p.Collision.PlaneY
		vel.Y = abs32(vel.Y) * p.Collision.Bounce
		vel.X *= p.Collision.Friction
		vel.Z *= p.Collision.Friction
	}

	// 7. Rotation, decorrelated from the spawn-time hash stream.
	if p.RotationActive && s.Rotation != nil {
		scale := dt
		if p.CurveMask&MaskRotationSpeed != 0 && p.Curves != nil {
			scale *= p.Curves.Sample(ChannelRotationSpeed, progress)
		}
		idx := uint32(i)
		s.Rotation[i*3] += p.RotationSpeed.X.Lerp(rotRand(idx, 0)) * scale
		s.Rotation[i*3+1] += p.RotationSpeed.Y.Lerp(rotRand(idx, 1)) * scale
		s.Rotation[i*3+2] += p.RotationSpeed.Z.Lerp(rotRand(idx, 2)) * scale
	}

	// 8. Lifetime decay, last.
	life -= s.FadeRate[i] * dt
	if life <= 0 {
		s.setVelocity(i, vel)
		s.kill(i)
		return
	}
	s.Life[i] = life
	s.setPosition(i, pos)
	s.setVelocity(i, vel)
}

// attractorForce computes one attractor's contribution to velocity per
// second.
func attractorForce(a *AttractorSlot, pos Vec3) Vec3 {
	if a.Strength == 0 {
		return Vec3{}
	}
	to := a.Position.Sub(pos)
	dist := to.Length()
	if dist < 1e-5 {
		return Vec3{}
	}
	if a.Kind == AttractorVortex {
		// Tangential force around the attractor axis. The tangent length
		// epsilon matches the update kernel so near-axis particles get zero
		// force on both executors.
		tangent := a.Axis.Cross(to)
		tlen := tangent.Length()
		if tlen < 1e-6 {
			return Vec3{}
		}
		return tangent.Mul(a.Strength * falloff(a, dist) / tlen)
	}
	return to.Mul(a.Strength * falloff(a, dist) / dist)
}

// falloff returns the distance attenuation of an attractor.
func falloff(a *AttractorSlot, dist float32) float32 {
	if a.InverseSquare {
		return 1 / (1 + dist*dist)
	}
	if a.Radius > 0 {
		f := 1 - dist/a.Radius
		if f < 0 {
			return 0
		}
		return f
	}
	return 1
}

// ease applies the configured friction easing to progress in [0, 1].
func ease(e FrictionEasing, t float32) float32 {
	switch e {
	case EaseIn:
		return t * t
	case EaseOut:
		return t * (2 - t)
	case EaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	default:
		return t
	}
}
