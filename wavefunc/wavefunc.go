// Package wavefunc bundles trial wavefunctions in closed form. Each
// system pairs the local energy Hψ/ψ with the probability density |ψ|²,
// the two callables a computer-algebra derivation would emit for the
// sampler and the integrator.
package wavefunc

import (
	"math"

	"github.com/MarcSerraPeralta/variational-QMonteCarlo/mc"
)

// System is a trial wavefunction with its derived numeric functions.
type System struct {
	Name string
	// Dim is the dimension of configuration space.
	Dim     int
	ELocal  mc.LocalEnergy
	Density mc.Density
	// GroundAlpha is the parameter vector at which the trial wavefunction
	// is the exact ground state, and GroundEnergy the exact energy there.
	GroundAlpha  []float64
	GroundEnergy float64
}

// Harmonic is the 1-D harmonic oscillator with trial wavefunction
// ψ(r, a) = exp(-a r²), in units m = ħ = ω = 1. The exact ground state is
// a = 1/2 with energy 1/2.
func Harmonic() System {
	return System{
		Name: "harmonic",
		Dim:  1,
		ELocal: func(r, alpha []float64) float64 {
			a := alpha[0]
			return a + r[0]*r[0]*(0.5-2*a*a)
		},
		Density: func(r, alpha []float64) float64 {
			return math.Exp(-2 * alpha[0] * r[0] * r[0])
		},
		GroundAlpha:  []float64{0.5},
		GroundEnergy: 0.5,
	}
}

// Hydrogen is the hydrogen atom with trial wavefunction
// ψ(r, a) = exp(-a |r|), in atomic units. The exact ground state is a = 1
// with energy -1/2.
func Hydrogen() System {
	return System{
		Name: "hydrogen",
		Dim:  3,
		ELocal: func(r, alpha []float64) float64 {
			a := alpha[0]
			return -a*a/2 + (a-1)/radius(r)
		},
		Density: func(r, alpha []float64) float64 {
			return math.Exp(-2 * alpha[0] * radius(r))
		},
		GroundAlpha:  []float64{1},
		GroundEnergy: -0.5,
	}
}

func radius(r []float64) float64 {
	var r2 float64
	for _, x := range r {
		r2 += x * x
	}
	return math.Sqrt(r2)
}
