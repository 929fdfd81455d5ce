// Command run optimizes the variational parameters of the bundled trial
// wavefunctions and persists the results per run directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"

	vmc "github.com/MarcSerraPeralta/variational-QMonteCarlo"
	"github.com/MarcSerraPeralta/variational-QMonteCarlo/mc"
	"github.com/MarcSerraPeralta/variational-QMonteCarlo/optimize"
	"github.com/MarcSerraPeralta/variational-QMonteCarlo/results"
	"github.com/MarcSerraPeralta/variational-QMonteCarlo/wavefunc"
)

const (
	fnameResultsCSV  = "results.csv"
	fnameResultsDB   = "results.db"
	fnameResultsXLSX = "results.xlsx"
	fnameDone        = "done.txt"
	fnameStatistics  = "statistics.txt"
)

var (
	runDir   = flag.String("d", filepath.Join("runs", "vmc"), "run directory")
	seed     = flag.Uint64("seed", 0, "run seed")
	strategy = flag.String("strategy", "scan", "optimization strategy, scan or descent")
)

type config struct {
	system    wavefunc.System
	initAlpha []float64
	scanStep  float64
}

// statistics is the converged result of one system.
type statistics struct {
	Alpha      []float64
	Energy     float64
	Stderr     float64
	Converged  bool
	Iterations int
}

func solve(dir string, c config) error {
	donePath := filepath.Join(dir, fnameDone)
	if _, err := os.Stat(donePath); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	sys := c.system
	sigma, converged, err := mc.TuneSigma(sys.Density, c.initAlpha, sys.Dim, 1, mc.TuneOptions{Seed: *seed})
	if err != nil {
		return errors.Wrap(err, "")
	}
	if !converged {
		log.Printf("%s: sigma tuning exhausted its budget, continuing with %f", sys.Name, sigma)
	}

	opt, runCfg := newOptimizer(c, sigma)
	ests, err := vmc.Run(context.Background(), sys.ELocal, sys.Density, opt, runCfg)
	if err != nil {
		return errors.Wrap(err, "")
	}

	for _, saver := range []vmc.Saver{
		results.CSV{Path: filepath.Join(dir, fnameResultsCSV)},
		results.SQLite{Path: filepath.Join(dir, fnameResultsDB)},
		results.XLSX{Path: filepath.Join(dir, fnameResultsXLSX)},
	} {
		if err := saver.Save(ests); err != nil {
			return errors.Wrap(err, "")
		}
	}

	final, err := finalEstimate(sys, opt.Alpha(), ests, runCfg)
	if err != nil {
		return errors.Wrap(err, "")
	}
	stats := statistics{
		Alpha:      final.Alpha,
		Energy:     final.Energy,
		Stderr:     final.Stderr,
		Converged:  opt.Converged(),
		Iterations: len(ests),
	}
	b, err := json.Marshal(stats)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.WriteFile(filepath.Join(dir, fnameStatistics), b, 0644); err != nil {
		return errors.Wrap(err, "")
	}

	if err := os.WriteFile(donePath, nil, 0644); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// finalEstimate is the estimate at the optimizer's final alpha. The scan
// converges on an already visited grid point whose estimate can be
// reused; steepest descent ends on a point it never evaluated, which
// needs one more estimation before reporting.
func finalEstimate(sys wavefunc.System, alpha []float64, ests []vmc.Estimate, cfg vmc.RunConfig) (vmc.Estimate, error) {
	for _, est := range ests {
		if slices.Equal(est.Alpha, alpha) {
			return est, nil
		}
	}

	est, err := vmc.Energy(sys.ELocal, sys.Density, alpha, cfg.Config)
	if err != nil {
		return vmc.Estimate{}, errors.Wrap(err, "")
	}
	return est, nil
}

func newOptimizer(c config, sigma float64) (*optimize.Optimizer, vmc.RunConfig) {
	cfg := vmc.RunConfig{
		Config: vmc.Config{
			NSkip: 500,
			Dim:   c.system.Dim,
			Sigma: sigma,
			Seed:  *seed,
		},
	}

	switch *strategy {
	case "descent":
		cfg.GradStep = 0.05
		return optimize.New(&optimize.SteepestDescent{Rate: 0.3, Decay: 0.05, Tol: 1e-3}, c.initAlpha), cfg
	default:
		step := make([]float64, len(c.initAlpha))
		for i := range step {
			step[i] = c.scanStep
		}
		return optimize.New(optimize.NewScan(step, 12), c.initAlpha), cfg
	}
}

func gather(dir string, configs []config) ([]statistics, error) {
	stats := make([]statistics, 0, len(configs))
	for _, c := range configs {
		b, err := os.ReadFile(filepath.Join(dir, c.system.Name, fnameStatistics))
		if err != nil {
			return nil, errors.Wrap(err, c.system.Name)
		}
		var s statistics
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, errors.Wrap(err, c.system.Name)
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	configs := []config{
		{system: wavefunc.Harmonic(), initAlpha: []float64{0.2}, scanStep: 0.05},
		{system: wavefunc.Hydrogen(), initAlpha: []float64{0.7}, scanStep: 0.05},
	}

	for _, c := range configs {
		dir := filepath.Join(*runDir, c.system.Name)
		if err := solve(dir, c); err != nil {
			return errors.Wrap(err, c.system.Name)
		}
		log.Printf("%s done", c.system.Name)
	}

	stats, err := gather(*runDir, configs)
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Printf("system,alpha,energy,stderr,converged,iterations\n")
	for i, s := range stats {
		fmt.Printf("%s,%v,%f,%f,%t,%d\n", configs[i].system.Name, s.Alpha, s.Energy, s.Stderr, s.Converged, s.Iterations)
	}
	return nil
}
