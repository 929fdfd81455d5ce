package results

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	vmc "github.com/MarcSerraPeralta/variational-QMonteCarlo"
)

// XLSX writes a workbook with one row per outer iteration.
type XLSX struct {
	Path string
}

func (x XLSX) Save(ests []vmc.Estimate) error {
	if len(ests) == 0 {
		return errors.Errorf("no estimates")
	}

	f := excelize.NewFile()
	const sheet = "Results"
	f.SetSheetName("Sheet1", sheet)

	for j, h := range header(len(ests[0].Alpha)) {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return errors.Wrap(err, "")
		}
		f.SetCellValue(sheet, cell, h)
	}

	for i, est := range ests {
		row := i + 2
		values := make([]any, 0, len(est.Alpha)+4)
		values = append(values, i)
		for _, a := range est.Alpha {
			values = append(values, a)
		}
		values = append(values, est.Energy, est.Stderr, est.Acceptance)

		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return errors.Wrap(err, "row "+strconv.Itoa(row))
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.SaveAs(x.Path); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
