package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/attunehq/vernier/benchmark"
)

// renderCSV writes one row per completed unit: statistics in seconds plus one
// parameter_<name> column per parameter dimension. Failed units carry no
// statistics and are omitted.
func renderCSV(rep *benchmark.Report) ([]byte, error) {
	params := parameterNames(rep)

	header := []string{"command", "mean", "stddev", "median", "user", "system", "min", "max"}
	for _, p := range params {
		header = append(header, "parameter_"+p)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rep.Results {
		if r.Failed || r.Stats.N == 0 {
			continue
		}
		row := []string{
			r.Unit.Name,
			csvNum(r.Stats.Mean),
			csvNum(r.Stats.StdDev),
			csvNum(r.Stats.Median),
			csvNum(r.Stats.MeanUser),
			csvNum(r.Stats.MeanSystem),
			csvNum(r.Stats.Min),
			csvNum(r.Stats.Max),
		}
		for _, p := range params {
			row = append(row, r.Unit.Params[p])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func csvNum(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
