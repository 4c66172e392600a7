package export

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/attunehq/vernier/benchmark"
)

type jsonDocument struct {
	Metadata jsonMetadata `json:"metadata"`
	Results  []jsonResult `json:"results"`
}

type jsonMetadata struct {
	Tool        string    `json:"tool"`
	Version     string    `json:"version"`
	SessionID   string    `json:"session_id"`
	Name        string    `json:"name,omitempty"`
	Interpreter string    `json:"interpreter"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// jsonResult is the full record for one unit. Statistics cover successful
// runs only; the parallel times/exit_codes arrays cover every timed run.
type jsonResult struct {
	Command       string            `json:"command"`
	Name          string            `json:"name"`
	Failed        bool              `json:"failed,omitempty"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Mean          float64           `json:"mean"`
	StdDev        float64           `json:"stddev"`
	Median        float64           `json:"median"`
	User          float64           `json:"user"`
	System        float64           `json:"system"`
	Min           float64           `json:"min"`
	Max           float64           `json:"max"`
	P90           float64           `json:"p90"`
	P95           float64           `json:"p95"`
	Runs          int               `json:"runs"`
	Times         []float64         `json:"times"`
	ExitCodes     []int             `json:"exit_codes"`
	PeakRSSBytes  []int64           `json:"peak_rss_bytes,omitempty"`
	Outliers      *jsonOutliers     `json:"outliers,omitempty"`
	Warnings      []string          `json:"warnings,omitempty"`
	Parameters    map[string]string `json:"parameters,omitempty"`
	Relative      *jsonRelative     `json:"relative,omitempty"`
}

// jsonOutliers lists flagged samples by run number.
type jsonOutliers struct {
	Slow []int `json:"slow,omitempty"`
	Fast []int `json:"fast,omitempty"`
}

type jsonRelative struct {
	Factor      float64 `json:"factor"`
	Uncertainty float64 `json:"uncertainty"`
}

func renderJSON(meta Metadata, rep *benchmark.Report) ([]byte, error) {
	doc := jsonDocument{
		Metadata: jsonMetadata{
			Tool:        meta.Tool,
			Version:     meta.Version,
			SessionID:   rep.SessionID,
			Name:        rep.Name,
			Interpreter: rep.Interpreter,
			StartTime:   rep.StartTime,
			EndTime:     rep.EndTime,
		},
		Results: make([]jsonResult, 0, len(rep.Results)),
	}
	rel := relativeFactors(rep)
	for _, r := range rep.Results {
		doc.Results = append(doc.Results, jsonResultFor(r, rel))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func jsonResultFor(r *benchmark.Result, rel map[*benchmark.Result]benchmark.RelativeSpeed) jsonResult {
	out := jsonResult{
		Command:       r.Unit.Command,
		Name:          r.Unit.Name,
		Failed:        r.Failed,
		FailureReason: r.FailureReason,
		Mean:          r.Stats.Mean,
		StdDev:        r.Stats.StdDev,
		Median:        r.Stats.Median,
		User:          r.Stats.MeanUser,
		System:        r.Stats.MeanSystem,
		Min:           r.Stats.Min,
		Max:           r.Stats.Max,
		P90:           r.Stats.P90,
		P95:           r.Stats.P95,
		Runs:          r.Stats.N,
		Times:         r.WallTimes(),
		ExitCodes:     r.ExitCodes(),
	}

	anyRSS := false
	rss := make([]int64, len(r.Samples))
	for i, s := range r.Samples {
		rss[i] = s.PeakRSS
		if s.PeakRSS > 0 {
			anyRSS = true
		}
	}
	if anyRSS {
		out.PeakRSSBytes = rss
	}

	var outliers jsonOutliers
	for _, s := range r.Samples {
		if s.SlowOutlier {
			outliers.Slow = append(outliers.Slow, s.Run)
		}
		if s.FastOutlier {
			outliers.Fast = append(outliers.Fast, s.Run)
		}
	}
	if len(outliers.Slow) > 0 || len(outliers.Fast) > 0 {
		out.Outliers = &outliers
	}

	for _, w := range r.Warnings {
		out.Warnings = append(out.Warnings, w.Message)
	}
	if len(r.Unit.Params) > 0 {
		out.Parameters = r.Unit.Params
	}
	if rs, ok := rel[r]; ok {
		out.Relative = &jsonRelative{Factor: rs.Factor, Uncertainty: rs.Uncertainty}
	}
	return out
}
