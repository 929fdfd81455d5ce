package mc

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// TuneOptions configures TuneSigma. The zero value selects the defaults.
type TuneOptions struct {
	// Target is the desired acceptance rate, default 0.5.
	Target float64
	// Tol is the allowed deviation from Target, default 0.05.
	Tol float64
	// MaxIter is the batch budget, default 500.
	MaxIter int
	// BatchSize is the number of Metropolis steps per batch, default 100.
	BatchSize int
	// Seed seeds the tuning chain.
	Seed uint64
}

func (o TuneOptions) withDefaults() TuneOptions {
	if o.Target == 0 {
		o.Target = 0.5
	}
	if o.Tol == 0 {
		o.Tol = 0.05
	}
	if o.MaxIter == 0 {
		o.MaxIter = 500
	}
	if o.BatchSize == 0 {
		o.BatchSize = 100
	}
	return o
}

// TuneSigma searches for a proposal width whose empirical acceptance rate
// is within opts.Tol of opts.Target. It runs short Metropolis batches at
// the current sigma, measuring the accepted-move fraction of each batch:
// too many acceptances mean the chain moves too timidly and sigma grows,
// too few mean it rejects too often and sigma shrinks, with a step that
// decays over the batch budget. The tuning chain starts at the origin and
// keeps walking across batches.
//
// Exhausting the budget is not an error: TuneSigma then returns the
// best-known sigma and false.
func TuneSigma(rho Density, alpha []float64, dim int, initialSigma float64, opts TuneOptions) (float64, bool, error) {
	if dim <= 0 {
		return 0, false, errors.Errorf("non-positive dimension %d", dim)
	}
	if initialSigma <= 0 {
		return 0, false, errors.Errorf("non-positive initial sigma %f", initialSigma)
	}
	opts = opts.withDefaults()
	if opts.Target <= 0 || opts.Target >= 1 {
		return 0, false, errors.Errorf("acceptance target %f outside (0, 1)", opts.Target)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	curr := make([]float64, dim)
	sigma := initialSigma
	best := sigma
	bestDiff := math.Inf(1)
	for iter := 0; iter < opts.MaxIter; iter++ {
		// One extra step, since a trajectory of n samples has n-1 proposals.
		traj, accepted, err := Walk(rho, alpha, opts.BatchSize+1, curr, sigma, rng)
		if err != nil {
			return 0, false, err
		}
		curr = traj[len(traj)-1]

		diff := float64(accepted)/float64(opts.BatchSize) - opts.Target
		if math.Abs(diff) < bestDiff {
			best, bestDiff = sigma, math.Abs(diff)
		}
		if math.Abs(diff) <= opts.Tol {
			return sigma, true, nil
		}

		sigma *= 1 + tuneRate(iter, opts.MaxIter)*diff
	}
	return best, false, nil
}

// tuneRate decays the relative sigma update over the batch budget.
func tuneRate(iter, maxIter int) float64 {
	switch progress := float64(iter) / float64(maxIter); {
	case progress < 0.1:
		return 1
	case progress < 0.3:
		return 0.5
	case progress < 0.6:
		return 0.25
	default:
		return 0.1
	}
}
