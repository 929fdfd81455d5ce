package mc

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Config describes one multi-walker sampling run.
type Config struct {
	// NWalkers is the number of independent walkers.
	NWalkers int
	// NSteps is the trajectory length of every walker.
	NSteps int
	// Dim is the dimension of configuration space,
	// i.e. particles times spatial dimensions.
	Dim int
	// SystemSize is the standard deviation of the Gaussian from which
	// initial points are drawn, a typical length scale of the system.
	SystemSize float64
	// Sigma is the standard deviation of the Metropolis proposal.
	Sigma float64
	// Seed seeds the random streams. Walker i owns the stream Seed+i,
	// so runs with equal seeds are bit-identical.
	Seed uint64
}

func (c Config) validate() error {
	switch {
	case c.NWalkers <= 0:
		return errors.Errorf("non-positive walkers %d", c.NWalkers)
	case c.NSteps <= 0:
		return errors.Errorf("non-positive steps %d", c.NSteps)
	case c.Dim <= 0:
		return errors.Errorf("non-positive dimension %d", c.Dim)
	case c.SystemSize <= 0:
		return errors.Errorf("non-positive system size %f", c.SystemSize)
	case c.Sigma <= 0:
		return errors.Errorf("non-positive proposal sigma %f", c.Sigma)
	}
	return nil
}

// Ensemble is a set of independent walker trajectories sharing alpha and
// the density, together with their pooled acceptance counts.
type Ensemble struct {
	Trajectories []Trajectory

	accepted int
	proposed int
}

// AcceptanceRate is the fraction of proposals the ensemble accepted.
func (e Ensemble) AcceptanceRate() float64 {
	if e.proposed == 0 {
		return 0
	}
	return float64(e.accepted) / float64(e.proposed)
}

// Sample runs cfg.NWalkers independent Metropolis walkers, each from an
// initial point with coordinates drawn Normal(0, cfg.SystemSize).
// Walkers share nothing mutable and run concurrently, one goroutine and
// one random stream each.
func Sample(rho Density, alpha []float64, cfg Config) (Ensemble, error) {
	if err := cfg.validate(); err != nil {
		return Ensemble{}, err
	}

	trajectories := make([]Trajectory, cfg.NWalkers)
	accepted := make([]int, cfg.NWalkers)
	errs := make([]error, cfg.NWalkers)
	var wg sync.WaitGroup
	for i := range cfg.NWalkers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + uint64(i)))

			initDist := distuv.Normal{Mu: 0, Sigma: cfg.SystemSize, Src: rng}
			init := make([]float64, cfg.Dim)
			for j := range init {
				init[j] = initDist.Rand()
			}

			traj, acc, err := Walk(rho, alpha, cfg.NSteps, init, cfg.Sigma, rng)
			if err != nil {
				errs[i] = errors.Wrap(err, fmt.Sprintf("walker %d", i))
				return
			}
			trajectories[i] = traj
			accepted[i] = acc
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Ensemble{}, err
		}
	}

	ens := Ensemble{Trajectories: trajectories}
	for _, acc := range accepted {
		ens.accepted += acc
		ens.proposed += cfg.NSteps - 1
	}
	return ens, nil
}
