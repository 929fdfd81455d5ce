// Package results persists optimization runs. Every type implements
// vmc.Saver; the caller injects whichever formats it wants.
package results

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/pkg/errors"

	vmc "github.com/MarcSerraPeralta/variational-QMonteCarlo"
)

// CSV writes one row per outer iteration:
// iter, alpha0..alphaN, energy, stderr, acceptance.
type CSV struct {
	Path string
}

func (c CSV) Save(ests []vmc.Estimate) error {
	if len(ests) == 0 {
		return errors.Errorf("no estimates")
	}

	f, err := os.Create(c.Path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	if err1 := w.Write(header(len(ests[0].Alpha))); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	row := make([]string, 0, len(ests[0].Alpha)+4)
	for i, est := range ests {
		row = row[:0]
		row = append(row, strconv.Itoa(i))
		for _, a := range est.Alpha {
			row = append(row, strconv.FormatFloat(a, 'f', -1, 64))
		}
		row = append(row, strconv.FormatFloat(est.Energy, 'f', -1, 64))
		row = append(row, strconv.FormatFloat(est.Stderr, 'f', -1, 64))
		row = append(row, strconv.FormatFloat(est.Acceptance, 'f', -1, 64))
		if err1 := w.Write(row); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
			break
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

func header(nAlpha int) []string {
	h := make([]string, 0, nAlpha+4)
	h = append(h, "iter")
	for i := 0; i < nAlpha; i++ {
		h = append(h, "alpha"+strconv.Itoa(i))
	}
	return append(h, "energy", "stderr", "acceptance")
}
