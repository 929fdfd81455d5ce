package wavefunc

import (
	"fmt"
	"math"
	"testing"
)

func TestHarmonic(t *testing.T) {
	t.Parallel()
	sys := Harmonic()
	tests := []struct {
		r      []float64
		alpha  []float64
		eLocal float64
	}{
		// At the exact ground state the local energy is constant.
		{r: []float64{0}, alpha: []float64{0.5}, eLocal: 0.5},
		{r: []float64{1.7}, alpha: []float64{0.5}, eLocal: 0.5},
		{r: []float64{2}, alpha: []float64{0.25}, eLocal: 0.25 + 4*(0.5-0.125)},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v %v", test.r, test.alpha), func(t *testing.T) {
			t.Parallel()
			if got := sys.ELocal(test.r, test.alpha); math.Abs(got-test.eLocal) > 1e-12 {
				t.Fatalf("%f, expected %f", got, test.eLocal)
			}
			rho := sys.Density(test.r, test.alpha)
			if rho <= 0 || rho > 1 {
				t.Fatalf("density %f outside (0, 1]", rho)
			}
		})
	}
}

func TestHydrogen(t *testing.T) {
	t.Parallel()
	sys := Hydrogen()
	tests := []struct {
		r      []float64
		alpha  []float64
		eLocal float64
	}{
		// At the exact ground state the local energy is constant.
		{r: []float64{1, 0, 0}, alpha: []float64{1}, eLocal: -0.5},
		{r: []float64{0.3, -2, 0.9}, alpha: []float64{1}, eLocal: -0.5},
		{r: []float64{2, 0, 0}, alpha: []float64{0.8}, eLocal: -0.32 - 0.2/2},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v %v", test.r, test.alpha), func(t *testing.T) {
			t.Parallel()
			if got := sys.ELocal(test.r, test.alpha); math.Abs(got-test.eLocal) > 1e-12 {
				t.Fatalf("%f, expected %f", got, test.eLocal)
			}
			rho := sys.Density(test.r, test.alpha)
			if rho <= 0 || rho > 1 {
				t.Fatalf("density %f outside (0, 1]", rho)
			}
		})
	}
}
