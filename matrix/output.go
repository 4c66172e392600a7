package matrix

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// PrintSummaryTable prints an aligned summary of all configurations to
// stdout.
func PrintSummaryTable(result *Result) {
	fmt.Printf("\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("Matrix Benchmark Summary\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	fmt.Printf("Image:      %s\n", result.Config.Image)
	if result.Config.RepoURL != "" {
		fmt.Printf("Repository: %s\n", result.Config.RepoURL)
	}
	fmt.Printf("Command:    %s\n", result.Config.Command)
	fmt.Printf("Runs:       %d per configuration\n\n", result.Config.Runs)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CPUs\tRAM\tMean\tMedian\tStd Dev\tMin\tMax\tRuns\n")
	fmt.Fprintf(w, "----\t---\t----\t------\t-------\t---\t---\t----\n")
	for _, r := range result.Results {
		if r.Success {
			fmt.Fprintf(w, "%d\t%d GB\t%s\t%s\t%s\t%s\t%s\t%d\n",
				r.Config.CPUs,
				r.Config.MemoryGB,
				formatDuration(r.Mean),
				formatDuration(r.Median),
				formatDuration(r.StdDev),
				formatDuration(r.Min),
				formatDuration(r.Max),
				r.Runs,
			)
		} else {
			fmt.Fprintf(w, "%d\t%d GB\tFAILED\t-\t-\t-\t-\t0\n",
				r.Config.CPUs,
				r.Config.MemoryGB,
			)
		}
	}
	w.Flush()

	if failed := failedResults(result.Results); len(failed) > 0 {
		fmt.Printf("\nFailed Configurations:\n")
		for _, r := range failed {
			fmt.Printf("  - %s: %s\n", r.Config, r.Error)
		}
	}
	fmt.Printf("\n")
}

// PrintMeanTimeGraph prints an ASCII chart of mean time against the varying
// resource dimension.
func PrintMeanTimeGraph(result *Result) {
	successful := successfulResults(result.Results)
	if len(successful) == 0 {
		return
	}

	if result.Config.Type == BenchmarkTypeSweepRAM {
		printGraph(fmt.Sprintf("Mean time vs RAM (%d CPUs)", result.Config.FixedCPU), ramRows(successful))
		return
	}
	printGraph("Mean time vs CPU count", cpuRows(successful))
}

// PrintAllGraphs prints the scaling graphs for a full grid session: one CPU
// graph per RAM value, then one RAM graph per CPU value.
func PrintAllGraphs(result *Result) {
	successful := successfulResults(result.Results)
	if len(successful) == 0 {
		return
	}

	byRAM := make(map[int][]ConfigResult)
	byCPU := make(map[int][]ConfigResult)
	for _, r := range successful {
		byRAM[r.Config.MemoryGB] = append(byRAM[r.Config.MemoryGB], r)
		byCPU[r.Config.CPUs] = append(byCPU[r.Config.CPUs], r)
	}

	for _, ram := range sortedKeys(byRAM) {
		rows := byRAM[ram]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Config.CPUs < rows[j].Config.CPUs })
		printGraph(fmt.Sprintf("Mean time vs CPU count (%dGB RAM)", ram), cpuRows(rows))
	}
	for _, cpu := range sortedKeys(byCPU) {
		rows := byCPU[cpu]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Config.MemoryGB < rows[j].Config.MemoryGB })
		printGraph(fmt.Sprintf("Mean time vs RAM (%d CPUs)", cpu), ramRows(rows))
	}
}

type graphRow struct {
	label string
	mean  float64
}

func cpuRows(results []ConfigResult) []graphRow {
	rows := make([]graphRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, graphRow{label: fmt.Sprintf("%d CPU", r.Config.CPUs), mean: r.Mean})
	}
	return rows
}

func ramRows(results []ConfigResult) []graphRow {
	rows := make([]graphRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, graphRow{label: fmt.Sprintf("%d GB", r.Config.MemoryGB), mean: r.Mean})
	}
	return rows
}

func printGraph(title string, rows []graphRow) {
	if len(rows) == 0 {
		return
	}

	fmt.Printf("%s\n%s\n\n", title, strings.Repeat("=", len(title)))

	maxMean := 0.0
	for _, row := range rows {
		if row.mean > maxMean {
			maxMean = row.mean
		}
	}

	const graphWidth = 50
	for _, row := range rows {
		barWidth := 1
		if maxMean > 0 {
			if w := int(row.mean / maxMean * graphWidth); w > 1 {
				barWidth = w
			}
		}
		fmt.Printf("%8s │%s %s\n", row.label, strings.Repeat("█", barWidth), formatDuration(row.mean))
	}

	maxLabel := formatDuration(maxMean)
	fmt.Printf("%8s └%s\n", "", strings.Repeat("─", graphWidth+2))
	fmt.Printf("%8s  0%s%s\n", "", strings.Repeat(" ", graphWidth-len(maxLabel)+1), maxLabel)
	fmt.Printf("\n")
}

type summaryStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	Runs   int     `json:"runs"`
}

type summaryResult struct {
	CPUs     int           `json:"cpus"`
	MemoryGB int           `json:"memory_gb"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Stats    *summaryStats `json:"statistics,omitempty"`
}

type summaryDocument struct {
	Name      string          `json:"name"`
	Type      BenchmarkType   `json:"type"`
	Image     string          `json:"image"`
	Repo      string          `json:"repo,omitempty"`
	Command   string          `json:"command"`
	Runs      int             `json:"runs"`
	Warmup    int             `json:"warmup,omitempty"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Results   []summaryResult `json:"results"`
}

// SaveSummaryJSON writes the matrix results as JSON.
func SaveSummaryJSON(result *Result, filename string) error {
	doc := summaryDocument{
		Name:      result.Config.Name,
		Type:      result.Config.Type,
		Image:     result.Config.Image,
		Repo:      result.Config.RepoURL,
		Command:   result.Config.Command,
		Runs:      result.Config.Runs,
		Warmup:    result.Config.Warmup,
		StartTime: result.StartTime,
		EndTime:   result.EndTime,
	}
	for _, r := range result.Results {
		sr := summaryResult{
			CPUs:     r.Config.CPUs,
			MemoryGB: r.Config.MemoryGB,
			Success:  r.Success,
			Error:    r.Error,
		}
		if r.Success {
			sr.Stats = &summaryStats{
				Mean:   r.Mean,
				StdDev: r.StdDev,
				Median: r.Median,
				Min:    r.Min,
				Max:    r.Max,
				P90:    r.P90,
				P95:    r.P95,
				Runs:   r.Runs,
			}
		}
		doc.Results = append(doc.Results, sr)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// SaveSummaryCSV writes one row per configuration.
func SaveSummaryCSV(result *Result, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"cpus", "memory_gb", "success",
		"mean", "stddev", "median", "min", "max", "p90", "p95",
		"runs", "error",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range result.Results {
		record := []string{
			fmt.Sprintf("%d", r.Config.CPUs),
			fmt.Sprintf("%d", r.Config.MemoryGB),
			fmt.Sprintf("%t", r.Success),
			fmt.Sprintf("%.3f", r.Mean),
			fmt.Sprintf("%.3f", r.StdDev),
			fmt.Sprintf("%.3f", r.Median),
			fmt.Sprintf("%.3f", r.Min),
			fmt.Sprintf("%.3f", r.Max),
			fmt.Sprintf("%.3f", r.P90),
			fmt.Sprintf("%.3f", r.P95),
			fmt.Sprintf("%d", r.Runs),
			r.Error,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// SaveSummaryMarkdown writes a human-readable report.
func SaveSummaryMarkdown(result *Result, filename string) error {
	var md strings.Builder

	md.WriteString("# Matrix Benchmark Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", result.EndTime.Format(time.RFC1123)))

	md.WriteString("## Configuration\n\n")
	md.WriteString(fmt.Sprintf("- **Docker Image:** `%s`\n", result.Config.Image))
	if result.Config.RepoURL != "" {
		md.WriteString(fmt.Sprintf("- **Repository:** %s\n", result.Config.RepoURL))
	}
	md.WriteString(fmt.Sprintf("- **Command:** `%s`\n", result.Config.Command))
	md.WriteString(fmt.Sprintf("- **Runs per Config:** %d\n", result.Config.Runs))
	if result.Config.Warmup > 0 {
		md.WriteString(fmt.Sprintf("- **Warmup Runs:** %d\n", result.Config.Warmup))
	}
	md.WriteString("\n")

	md.WriteString("## Results Summary\n\n")
	md.WriteString("| CPUs | RAM | Mean | Median | Std Dev | Min | Max | Runs |\n")
	md.WriteString("|------|-----|------|--------|---------|-----|-----|------|\n")
	for _, r := range result.Results {
		if r.Success {
			md.WriteString(fmt.Sprintf("| %d | %d GB | %s | %s | %s | %s | %s | %d |\n",
				r.Config.CPUs,
				r.Config.MemoryGB,
				formatDuration(r.Mean),
				formatDuration(r.Median),
				formatDuration(r.StdDev),
				formatDuration(r.Min),
				formatDuration(r.Max),
				r.Runs,
			))
		} else {
			md.WriteString(fmt.Sprintf("| %d | %d GB | FAILED | - | - | - | - | 0 |\n",
				r.Config.CPUs,
				r.Config.MemoryGB,
			))
		}
	}
	md.WriteString("\n")

	md.WriteString("## Detailed Statistics\n\n")
	for _, r := range result.Results {
		md.WriteString(fmt.Sprintf("### %s\n\n", r.Config))
		if !r.Success {
			md.WriteString("**Status:** Failed\n\n")
			md.WriteString(fmt.Sprintf("**Error:** %s\n\n", r.Error))
			continue
		}
		md.WriteString("| Metric | Value |\n")
		md.WriteString("|--------|-------|\n")
		md.WriteString(fmt.Sprintf("| Mean | %s (%.3fs) |\n", formatDuration(r.Mean), r.Mean))
		md.WriteString(fmt.Sprintf("| Median | %s (%.3fs) |\n", formatDuration(r.Median), r.Median))
		md.WriteString(fmt.Sprintf("| Std Dev | %s (%.3fs) |\n", formatDuration(r.StdDev), r.StdDev))
		md.WriteString(fmt.Sprintf("| Min | %s (%.3fs) |\n", formatDuration(r.Min), r.Min))
		md.WriteString(fmt.Sprintf("| Max | %s (%.3fs) |\n", formatDuration(r.Max), r.Max))
		md.WriteString(fmt.Sprintf("| P90 | %s (%.3fs) |\n", formatDuration(r.P90), r.P90))
		md.WriteString(fmt.Sprintf("| P95 | %s (%.3fs) |\n", formatDuration(r.P95), r.P95))
		md.WriteString(fmt.Sprintf("| Runs | %d |\n", r.Runs))
		md.WriteString("\n")
	}

	if failed := failedResults(result.Results); len(failed) > 0 {
		md.WriteString("## Failed Configurations\n\n")
		for _, r := range failed {
			md.WriteString(fmt.Sprintf("- **%s:** %s\n", r.Config, r.Error))
		}
		md.WriteString("\n")
	}

	return os.WriteFile(filename, []byte(md.String()), 0o644)
}

// formatDuration renders a duration in seconds as a compact human-readable
// string.
func formatDuration(seconds float64) string {
	if seconds == 0 {
		return "0s"
	}

	duration := time.Duration(seconds * float64(time.Second))
	switch {
	case duration >= time.Hour:
		h := int(duration.Hours())
		m := int(duration.Minutes()) % 60
		s := int(duration.Seconds()) % 60
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	case duration >= time.Minute:
		m := int(duration.Minutes())
		s := int(duration.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	case duration >= time.Second:
		return fmt.Sprintf("%.1fs", seconds)
	default:
		return fmt.Sprintf("%.0fms", seconds*1000)
	}
}

func successfulResults(results []ConfigResult) []ConfigResult {
	var out []ConfigResult
	for _, r := range results {
		if r.Success {
			out = append(out, r)
		}
	}
	return out
}

func failedResults(results []ConfigResult) []ConfigResult {
	var out []ConfigResult
	for _, r := range results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

func sortedKeys(m map[int][]ConfigResult) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
