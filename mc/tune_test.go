package mc

import (
	"fmt"
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func TestTuneSigma(t *testing.T) {
	t.Parallel()
	tests := []struct {
		dim          int
		initialSigma float64
	}{
		{dim: 1, initialSigma: 30},
		{dim: 1, initialSigma: 0.01},
		{dim: 3, initialSigma: 5},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d %f", test.dim, test.initialSigma), func(t *testing.T) {
			t.Parallel()
			sigma, converged, err := TuneSigma(stdNormal, nil, test.dim, test.initialSigma, TuneOptions{Seed: 31})
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if !converged {
				t.Fatalf("not converged, sigma %f", sigma)
			}

			// Verify the tuned sigma on a long chain. The tuner accepts a
			// single 100-step batch within tolerance, so the long-run rate
			// carries batch noise on top of it.
			rng := rand.New(rand.NewSource(32))
			_, accepted, err := Walk(stdNormal, nil, 20001, make([]float64, test.dim), sigma, rng)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			rate := float64(accepted) / 20000
			if math.Abs(rate-0.5) > 0.2 {
				t.Fatalf("acceptance %f at sigma %f, expected about 0.5", rate, sigma)
			}
		})
	}
}

func TestTuneSigmaBudget(t *testing.T) {
	t.Parallel()
	// An unreachable target exhausts the budget without failing.
	opts := TuneOptions{Target: 0.999, Tol: 0.0001, MaxIter: 3, Seed: 33}
	sigma, converged, err := TuneSigma(stdNormal, nil, 1, 1, opts)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if converged {
		t.Fatalf("converged on an unreachable target")
	}
	if sigma <= 0 {
		t.Fatalf("%f, expected positive sigma", sigma)
	}
}

func TestTuneSigmaErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		dim          int
		initialSigma float64
		opts         TuneOptions
	}{
		{name: "non-positive dimension", dim: 0, initialSigma: 1},
		{name: "non-positive sigma", dim: 1, initialSigma: 0},
		{name: "target above 1", dim: 1, initialSigma: 1, opts: TuneOptions{Target: 1.5}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if _, _, err := TuneSigma(stdNormal, nil, test.dim, test.initialSigma, test.opts); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
