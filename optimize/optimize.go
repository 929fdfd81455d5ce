// Package optimize adjusts the variational parameters of a trial
// wavefunction to minimize the estimated energy.
package optimize

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Context carries the observables of the latest energy estimate that a
// strategy may consume when proposing the next parameter vector.
type Context struct {
	// Energy is the estimated variational energy at the current alpha.
	Energy float64
	// Stderr is the statistical error of Energy.
	Stderr float64
	// Gradient is dE/dalpha at the current alpha. Strategies that do not
	// need it tolerate nil.
	Gradient []float64
}

// Strategy proposes parameter vectors.
type Strategy interface {
	// ProposeNext returns the parameter vector to evaluate next, and
	// whether the search is complete. On completion the returned vector
	// is the strategy's final answer. A context missing an observable
	// the strategy requires is an error.
	ProposeNext(alpha []float64, ctx Context) ([]float64, bool, error)
}

// Optimizer drives a Strategy over outer iterations. It starts in the
// optimizing state and becomes terminal once the strategy declares
// convergence.
type Optimizer struct {
	strategy  Strategy
	alpha     []float64
	converged bool
}

func New(strategy Strategy, initAlpha []float64) *Optimizer {
	return &Optimizer{strategy: strategy, alpha: append([]float64{}, initAlpha...)}
}

// Alpha is the parameter vector to evaluate, or the final answer once
// Converged reports true.
func (o *Optimizer) Alpha() []float64 {
	return append([]float64{}, o.alpha...)
}

func (o *Optimizer) Converged() bool {
	return o.converged
}

// Update advances the optimizer by one outer iteration, feeding the
// strategy the energy estimate obtained at the current alpha. Updating a
// converged optimizer is an error.
func (o *Optimizer) Update(ctx Context) error {
	if o.converged {
		return errors.Errorf("update after convergence at alpha %v", o.alpha)
	}
	alpha, converged, err := o.strategy.ProposeNext(o.alpha, ctx)
	if err != nil {
		return errors.Wrap(err, "")
	}
	o.alpha, o.converged = alpha, converged
	return nil
}

// Scan walks a fixed grid of NSteps increments of Step from the starting
// alpha, and converges on the grid point with the lowest energy.
type Scan struct {
	// Step is the grid increment, one entry per parameter.
	Step []float64
	// NSteps is the number of increments to take.
	NSteps int

	taken      int
	bestAlpha  []float64
	bestEnergy float64
}

func NewScan(step []float64, nSteps int) *Scan {
	return &Scan{Step: append([]float64{}, step...), NSteps: nSteps, bestEnergy: math.Inf(1)}
}

func (s *Scan) ProposeNext(alpha []float64, ctx Context) ([]float64, bool, error) {
	if len(s.Step) != len(alpha) {
		return nil, false, errors.Errorf("step length %d, alpha length %d", len(s.Step), len(alpha))
	}

	if ctx.Energy < s.bestEnergy {
		s.bestEnergy = ctx.Energy
		s.bestAlpha = append([]float64{}, alpha...)
	}

	if s.taken >= s.NSteps {
		return append([]float64{}, s.bestAlpha...), true, nil
	}
	s.taken++

	next := append([]float64{}, alpha...)
	floats.Add(next, s.Step)
	return next, false, nil
}

// SteepestDescent steps against the energy gradient with a learning rate
// that decays over iterations, and converges when the applied step becomes
// shorter than Tol.
type SteepestDescent struct {
	// Rate is the initial learning rate.
	Rate float64
	// Decay damps the rate as Rate/(1+Decay*iteration).
	Decay float64
	// Tol is the step-norm convergence threshold.
	Tol float64

	iter int
}

func (sd *SteepestDescent) ProposeNext(alpha []float64, ctx Context) ([]float64, bool, error) {
	if len(ctx.Gradient) != len(alpha) {
		return nil, false, errors.Errorf("gradient length %d, alpha length %d", len(ctx.Gradient), len(alpha))
	}

	rate := sd.Rate / (1 + sd.Decay*float64(sd.iter))
	sd.iter++

	step := append([]float64{}, ctx.Gradient...)
	floats.Scale(-rate, step)
	next := append([]float64{}, alpha...)
	floats.Add(next, step)
	return next, floats.Norm(step, 2) < sd.Tol, nil
}
