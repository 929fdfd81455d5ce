// Package mc implements the Monte Carlo machinery of the variational
// Monte Carlo method: the Metropolis random walker, the multi-walker
// sampler, the trajectory integrator, and the proposal step-size tuner.
package mc

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Density is a probability density over configuration space.
// It need not be normalized, since Metropolis acceptance only uses ratios,
// but it must be non-negative and finite wherever it is evaluated.
type Density func(r, alpha []float64) float64

// LocalEnergy is Hψ/ψ evaluated at a configuration.
type LocalEnergy func(r, alpha []float64) float64

// Trajectory is the ordered sequence of configurations visited by one
// walker. The first element is the initial point; every later element is
// either a copy of its predecessor (rejected proposal) or differs from it
// by one accepted Gaussian move.
type Trajectory [][]float64

// Walk runs a Metropolis random walk of nSteps samples starting from init.
// Proposals add an independent Normal(0, sigma) perturbation to every
// coordinate of the current point, and are accepted with probability
// min(1, rho(next)/rho(curr)). Besides the trajectory, Walk returns the
// number of accepted moves out of the nSteps-1 proposals.
//
// A zero density at the current point, or a negative, NaN or infinite
// density anywhere, is an error: continuing would silently bias the chain.
func Walk(rho Density, alpha []float64, nSteps int, init []float64, sigma float64, rng *rand.Rand) (Trajectory, int, error) {
	if nSteps <= 0 {
		return nil, 0, errors.Errorf("non-positive steps %d", nSteps)
	}
	if sigma <= 0 {
		return nil, 0, errors.Errorf("non-positive proposal sigma %f", sigma)
	}
	if len(init) == 0 {
		return nil, 0, errors.Errorf("empty initial point")
	}

	proposal := distuv.Normal{Mu: 0, Sigma: sigma, Src: rng}
	curr := append([]float64{}, init...)
	currRho, err := density(rho, curr, alpha)
	if err != nil {
		return nil, 0, err
	}

	steps := make(Trajectory, 0, nSteps)
	steps = append(steps, append([]float64{}, curr...))
	next := make([]float64, len(curr))
	accepted := 0
	for i := 1; i < nSteps; i++ {
		if currRho == 0 {
			return nil, 0, errors.Errorf("zero density at %v, step %d", curr, i)
		}

		for j, x := range curr {
			next[j] = x + proposal.Rand()
		}
		nextRho, err := density(rho, next, alpha)
		if err != nil {
			return nil, 0, errors.Wrap(err, fmt.Sprintf("step %d", i))
		}

		// Rates above 1 always accept.
		rate := nextRho / currRho
		if rng.Float64() <= rate {
			copy(curr, next)
			currRho = nextRho
			accepted++
		}
		steps = append(steps, append([]float64{}, curr...))
	}
	return steps, accepted, nil
}

func density(rho Density, r, alpha []float64) (float64, error) {
	v := rho(r, alpha)
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("invalid density %f at %v", v, r)
	}
	return v, nil
}
