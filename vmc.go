// Package vmc estimates ground-state energies of quantum systems with the
// variational Monte Carlo method. Given the local energy and probability
// density derived from a trial wavefunction, it samples configuration
// space with an ensemble of Metropolis walkers, integrates the local
// energy over the sampled configurations, and adjusts the variational
// parameters to minimize the resulting energy estimate.
package vmc

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/MarcSerraPeralta/variational-QMonteCarlo/mc"
	"github.com/MarcSerraPeralta/variational-QMonteCarlo/optimize"
)

// Config describes one energy estimation, i.e. one outer iteration of the
// optimization loop. The zero value of a field selects its default.
type Config struct {
	// NSteps is the trajectory length of every walker, default 5000.
	NSteps int
	// NWalkers is the ensemble size, default 250.
	NWalkers int
	// NSkip is the burn-in prefix discarded from every trajectory.
	NSkip int
	// Dim is the dimension of configuration space.
	Dim int
	// SystemSize is the length scale for initial points, default 1.
	SystemSize float64
	// Sigma is the Metropolis proposal width, default 1.
	Sigma float64
	// Seed makes runs with equal seeds bit-identical.
	Seed uint64
}

func (c Config) withDefaults() Config {
	if c.NSteps == 0 {
		c.NSteps = 5000
	}
	if c.NWalkers == 0 {
		c.NWalkers = 250
	}
	if c.SystemSize == 0 {
		c.SystemSize = 1
	}
	if c.Sigma == 0 {
		c.Sigma = 1
	}
	return c
}

// Estimate is the variational energy at one parameter vector.
type Estimate struct {
	Alpha      []float64
	Energy     float64
	Stderr     float64
	Acceptance float64
}

// Saver persists the estimates of an optimization run.
// The format is up to the implementation.
type Saver interface {
	Save(ests []Estimate) error
}

// Energy samples an ensemble at alpha and integrates the local energy
// over it.
func Energy(eLocal mc.LocalEnergy, rho mc.Density, alpha []float64, cfg Config) (Estimate, error) {
	cfg = cfg.withDefaults()
	ens, err := mc.Sample(rho, alpha, mc.Config{
		NWalkers:   cfg.NWalkers,
		NSteps:     cfg.NSteps,
		Dim:        cfg.Dim,
		SystemSize: cfg.SystemSize,
		Sigma:      cfg.Sigma,
		Seed:       cfg.Seed,
	})
	if err != nil {
		return Estimate{}, errors.Wrap(err, "")
	}

	energy, stderr, err := mc.Integrate(eLocal, alpha, ens, cfg.NSkip)
	if err != nil {
		return Estimate{}, errors.Wrap(err, "")
	}

	return Estimate{
		Alpha:      append([]float64{}, alpha...),
		Energy:     energy,
		Stderr:     stderr,
		Acceptance: ens.AcceptanceRate(),
	}, nil
}

// Gradient estimates dE/dalpha by central finite differences with step h.
// All evaluations share cfg.Seed, so the common Monte Carlo noise largely
// cancels in the differences.
func Gradient(eLocal mc.LocalEnergy, rho mc.Density, alpha []float64, cfg Config, h float64) ([]float64, error) {
	if h <= 0 {
		return nil, errors.Errorf("non-positive difference step %f", h)
	}

	grad := make([]float64, len(alpha))
	shifted := append([]float64{}, alpha...)
	for i := range alpha {
		shifted[i] = alpha[i] + h
		plus, err := Energy(eLocal, rho, shifted, cfg)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("alpha %v", shifted))
		}

		shifted[i] = alpha[i] - h
		minus, err := Energy(eLocal, rho, shifted, cfg)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("alpha %v", shifted))
		}

		grad[i] = (plus.Energy - minus.Energy) / (2 * h)
		shifted[i] = alpha[i]
	}
	return grad, nil
}

// RunConfig configures an optimization run.
type RunConfig struct {
	Config
	// MaxIter bounds the outer iterations, default 100. Exhausting it is
	// not an error; the optimizer then simply reports not converged.
	MaxIter int
	// GradStep is the finite-difference step for the energy gradient.
	// Zero skips gradient evaluation, for strategies that need none.
	GradStep float64
}

// Run drives the outer optimization loop: estimate the energy at the
// optimizer's current alpha, feed the estimate back, repeat until the
// optimizer converges or cfg.MaxIter is exhausted. It returns the estimate
// of every completed iteration. Cancellation is checked between
// iterations, never inside one.
func Run(ctx context.Context, eLocal mc.LocalEnergy, rho mc.Density, opt *optimize.Optimizer, cfg RunConfig) ([]Estimate, error) {
	maxIter := cfg.MaxIter
	if maxIter == 0 {
		maxIter = 100
	}

	ests := make([]Estimate, 0)
	for iter := 0; iter < maxIter && !opt.Converged(); iter++ {
		select {
		case <-ctx.Done():
			return ests, errors.Wrap(ctx.Err(), "")
		default:
		}

		alpha := opt.Alpha()
		est, err := Energy(eLocal, rho, alpha, cfg.Config)
		if err != nil {
			return ests, errors.Wrap(err, fmt.Sprintf("alpha %v", alpha))
		}
		ests = append(ests, est)

		octx := optimize.Context{Energy: est.Energy, Stderr: est.Stderr}
		if cfg.GradStep > 0 {
			octx.Gradient, err = Gradient(eLocal, rho, alpha, cfg.Config, cfg.GradStep)
			if err != nil {
				return ests, errors.Wrap(err, fmt.Sprintf("alpha %v", alpha))
			}
		}
		if err := opt.Update(octx); err != nil {
			return ests, errors.Wrap(err, "")
		}
	}
	return ests, nil
}
