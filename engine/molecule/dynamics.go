package molecule

import "math"

// Force relaxation constants. Bonded atoms are pulled toward the rest length
// by a spring, unbonded atoms repel with an inverse-square falloff, and the
// net force is integrated with a fixed damping step until the structure
// settles or the iteration cap is hit.
const (
	relaxRestLength   float32 = 2.0
	relaxSpringScale  float32 = 2.0
	relaxRepelScale   float32 = 1.0
	relaxStep         float32 = 0.1
	relaxSettleForce  float32 = 1e-3
	relaxDefaultLimit         = 500
)

// Relax iteratively moves atoms along the net force until the largest force
// magnitude drops below the settle threshold. This is a display-quality
// untangler for generated structures, not a physical dynamics model.
func (m *molecule) Relax(maxIterations int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if maxIterations <= 0 {
		maxIterations = relaxDefaultLimit
	}
	if len(m.atoms) < 2 {
		return 0
	}

	bonded := make(map[[2]int]struct{}, len(m.bonds))
	for _, b := range m.bonds {
		bonded[orderedPair(b.A, b.B)] = struct{}{}
	}

	forces := make([][3]float32, len(m.atoms))
	for iter := range maxIterations {
		for i := range forces {
			forces[i] = [3]float32{}
		}

		maxForce := float32(0)
		for i := range m.atoms {
			for j := i + 1; j < len(m.atoms); j++ {
				dx := m.atoms[j].Position[0] - m.atoms[i].Position[0]
				dy := m.atoms[j].Position[1] - m.atoms[i].Position[1]
				dz := m.atoms[j].Position[2] - m.atoms[i].Position[2]
				mag := float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
				if mag < 1e-6 {
					// Coincident atoms have no defined direction; skip and let
					// some other neighbor separate them.
					continue
				}
				ux, uy, uz := dx/mag, dy/mag, dz/mag

				var f float32
				if _, isBonded := bonded[orderedPair(i, j)]; isBonded {
					// Spring toward the rest length: positive pulls i toward j.
					f = relaxSpringScale * (mag - relaxRestLength)
				} else {
					// Pure repulsion, inverse square.
					f = -relaxRepelScale / (mag * mag)
				}

				forces[i][0] += f * ux
				forces[i][1] += f * uy
				forces[i][2] += f * uz
				forces[j][0] -= f * ux
				forces[j][1] -= f * uy
				forces[j][2] -= f * uz
			}
		}

		for i := range m.atoms {
			fx, fy, fz := forces[i][0], forces[i][1], forces[i][2]
			m.atoms[i].Position[0] += fx * relaxStep
			m.atoms[i].Position[1] += fy * relaxStep
			m.atoms[i].Position[2] += fz * relaxStep
			if fm := float32(math.Sqrt(float64(fx*fx + fy*fy + fz*fz))); fm > maxForce {
				maxForce = fm
			}
		}

		if maxForce < relaxSettleForce {
			return iter + 1
		}
	}
	return maxIterations
}
