package mc

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// stdNormal is the unnormalized standard normal density in any dimension.
func stdNormal(r, alpha []float64) float64 {
	var r2 float64
	for _, x := range r {
		r2 += x * x
	}
	return math.Exp(-r2 / 2)
}

func TestWalkTrajectoryInvariant(t *testing.T) {
	t.Parallel()
	tests := []struct {
		nSteps int
		init   []float64
		sigma  float64
	}{
		{nSteps: 1000, init: []float64{0}, sigma: 1},
		{nSteps: 1000, init: []float64{2, -1, 0.5}, sigma: 0.3},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v", test.init), func(t *testing.T) {
			t.Parallel()
			rng := rand.New(rand.NewSource(1))
			traj, accepted, err := Walk(stdNormal, nil, test.nSteps, test.init, test.sigma, rng)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if len(traj) != test.nSteps {
				t.Fatalf("%d, expected %d", len(traj), test.nSteps)
			}
			if !reflect.DeepEqual(traj[0], test.init) {
				t.Fatalf("%v, expected %v", traj[0], test.init)
			}

			// Consecutive samples either repeat (rejection) or change in
			// every coordinate (an accepted Gaussian move almost surely
			// perturbs them all).
			moves := 0
			for i := 1; i < len(traj); i++ {
				switch {
				case reflect.DeepEqual(traj[i], traj[i-1]):
				default:
					for j := range traj[i] {
						if traj[i][j] == traj[i-1][j] {
							t.Fatalf("partial move %v -> %v", traj[i-1], traj[i])
						}
					}
					moves++
				}
			}
			if moves != accepted {
				t.Fatalf("%d, expected %d", moves, accepted)
			}
		})
	}
}

func TestWalkStationarity(t *testing.T) {
	t.Parallel()
	const nSteps = 200000
	const nSkip = 1000
	rng := rand.New(rand.NewSource(2))
	traj, _, err := Walk(stdNormal, nil, nSteps, []float64{5}, 1, rng)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	xs := make([]float64, 0, nSteps-nSkip)
	for _, r := range traj[nSkip:] {
		xs = append(xs, r[0])
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if math.Abs(mean) > 0.05 {
		t.Fatalf("%f, expected 0", mean)
	}
	if math.Abs(std-1) > 0.05 {
		t.Fatalf("%f, expected 1", std)
	}
}

func TestWalkZeroDensityProposal(t *testing.T) {
	t.Parallel()
	// Zero density at a proposed point is a certain rejection, not an
	// error; the chain must stay inside the box.
	box := func(r, alpha []float64) float64 {
		if math.Abs(r[0]) > 1 {
			return 0
		}
		return 1
	}
	rng := rand.New(rand.NewSource(3))
	traj, _, err := Walk(box, nil, 10000, []float64{0}, 1, rng)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	for _, r := range traj {
		if math.Abs(r[0]) > 1 {
			t.Fatalf("escaped the support at %v", r)
		}
	}
}

func TestWalkErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		rho    Density
		nSteps int
		init   []float64
		sigma  float64
	}{
		{
			name:   "zero density at the initial point",
			rho:    func(r, alpha []float64) float64 { return 0 },
			nSteps: 10, init: []float64{0}, sigma: 1,
		},
		{
			name:   "negative density",
			rho:    func(r, alpha []float64) float64 { return -1 },
			nSteps: 10, init: []float64{0}, sigma: 1,
		},
		{
			name:   "NaN density",
			rho:    func(r, alpha []float64) float64 { return math.NaN() },
			nSteps: 10, init: []float64{0}, sigma: 1,
		},
		{name: "non-positive steps", rho: stdNormal, nSteps: 0, init: []float64{0}, sigma: 1},
		{name: "non-positive sigma", rho: stdNormal, nSteps: 10, init: []float64{0}, sigma: 0},
		{name: "empty initial point", rho: stdNormal, nSteps: 10, init: nil, sigma: 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			rng := rand.New(rand.NewSource(4))
			if _, _, err := Walk(test.rho, nil, test.nSteps, test.init, test.sigma, rng); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestWalkAcceptanceMonotonic(t *testing.T) {
	t.Parallel()
	const nSteps = 20000
	rates := make([]float64, 0, 3)
	for _, sigma := range []float64{0.5, 2, 8} {
		var accepted int
		seeds := []uint64{5, 6, 7}
		for _, seed := range seeds {
			rng := rand.New(rand.NewSource(seed))
			_, acc, err := Walk(stdNormal, nil, nSteps, []float64{0}, sigma, rng)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			accepted += acc
		}
		rates = append(rates, float64(accepted)/float64(len(seeds)*(nSteps-1)))
	}

	for i := 1; i < len(rates); i++ {
		if rates[i] >= rates[i-1] {
			t.Fatalf("%v not decreasing", rates)
		}
	}
}

func TestWalkReproducible(t *testing.T) {
	t.Parallel()
	walk := func(seed uint64) Trajectory {
		rng := rand.New(rand.NewSource(seed))
		traj, _, err := Walk(stdNormal, nil, 500, []float64{1, 2}, 1, rng)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		return traj
	}
	if !reflect.DeepEqual(walk(8), walk(8)) {
		t.Fatalf("equal seeds, different trajectories")
	}
	if reflect.DeepEqual(walk(8), walk(9)) {
		t.Fatalf("different seeds, equal trajectories")
	}
}
