package mc

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Integrate estimates the variational energy of an ensemble by the plain
// sample mean of the local energy over all retained configurations. The
// first nSkip configurations of every trajectory are discarded as burn-in.
// It returns the mean and the standard error of the mean.
//
// No importance weights appear because the walkers already sample
// proportionally to the density: the mean of E over the ensemble realizes
// ∫ E(r) rho(r) dr / ∫ rho(r) dr directly.
func Integrate(eLocal LocalEnergy, alpha []float64, ens Ensemble, nSkip int) (float64, float64, error) {
	if len(ens.Trajectories) == 0 {
		return 0, 0, errors.Errorf("empty ensemble")
	}
	if nSkip < 0 {
		return 0, 0, errors.Errorf("negative skip %d", nSkip)
	}

	n := 0
	for _, traj := range ens.Trajectories {
		if nSkip >= len(traj) {
			return 0, 0, errors.Errorf("skip %d >= steps %d", nSkip, len(traj))
		}
		n += len(traj) - nSkip
	}
	if n < 2 {
		return 0, 0, errors.Errorf("%d retained samples, need at least 2", n)
	}

	energies := make([]float64, 0, n)
	for i, traj := range ens.Trajectories {
		for _, r := range traj[nSkip:] {
			e := eLocal(r, alpha)
			if math.IsNaN(e) || math.IsInf(e, 0) {
				return 0, 0, errors.Errorf("invalid local energy %f at %v, walker %d", e, r, i)
			}
			energies = append(energies, e)
		}
	}

	mean, std := stat.MeanStdDev(energies, nil)
	return mean, stat.StdErr(std, float64(len(energies))), nil
}
