package importer

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"FlowLab/internal/calc/calcerr"
	"FlowLab/internal/calc/series"
)

// ParseXLSXRows reads flow rows from the first sheet of a workbook. The
// first row is a header; data columns are lift, Q intake, Q exhaust,
// depression and optional mean area, effective area and swirl RPM, in the
// same units as the IOP SI rows. Rows that fail to parse are skipped, as
// spreadsheets from benches routinely carry trailing notes.
func ParseXLSXRows(r io.Reader) ([]series.FlowPoint, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(calcerr.ErrInvalidArgument, "invalid workbook")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		return nil, errors.Wrap(calcerr.ErrInvalidArgument, "empty sheet")
	}

	var points []series.FlowPoint
	for i := 1; i < len(rows); i++ {
		p, err := parseXLSXRow(rows[i])
		if err != nil {
			continue
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, errors.Wrap(calcerr.ErrInvalidArgument, "no parsable rows")
	}
	return points, nil
}

func parseXLSXRow(row []string) (series.FlowPoint, error) {
	if len(row) < 4 {
		return series.FlowPoint{}, errors.Wrap(calcerr.ErrInvalidArgument, "short row")
	}
	var p series.FlowPoint
	var err error
	if p.LiftMM, err = normNumber(row[0]); err != nil {
		return series.FlowPoint{}, err
	}
	if p.FlowInM3Min, err = normNumber(row[1]); err != nil {
		return series.FlowPoint{}, err
	}
	if p.FlowExM3Min, err = normNumber(row[2]); err != nil {
		return series.FlowPoint{}, err
	}
	if p.DepressionInH2O, err = normNumber(row[3]); err != nil {
		return series.FlowPoint{}, err
	}
	if len(row) > 4 && row[4] != "" {
		if v, err := normNumber(row[4]); err == nil {
			p.MeanAreaMM2 = &v
		}
	}
	if len(row) > 5 && row[5] != "" {
		if v, err := normNumber(row[5]); err == nil {
			p.EffAreaMM2 = &v
		}
	}
	if len(row) > 6 && row[6] != "" {
		if v, err := normNumber(row[6]); err == nil {
			p.SwirlRPM = &v
		}
	}
	return p, nil
}
