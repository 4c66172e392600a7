package matrix

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BenchmarkType identifies how a session's configuration grid was generated.
type BenchmarkType string

const (
	BenchmarkTypeCustom   BenchmarkType = "custom"
	BenchmarkTypeSweepCPU BenchmarkType = "sweep-cpu"
	BenchmarkTypeSweepRAM BenchmarkType = "sweep-ram"
	BenchmarkTypeAll      BenchmarkType = "all"
)

// ResourceConfig is one CPU/memory allocation to benchmark under.
type ResourceConfig struct {
	CPUs     int
	MemoryGB int
}

func (r ResourceConfig) String() string {
	return fmt.Sprintf("%d CPUs, %dGB RAM", r.CPUs, r.MemoryGB)
}

// DirName returns a filesystem-friendly name for per-config artifacts.
func (r ResourceConfig) DirName() string {
	return fmt.Sprintf("cpu%d_ram%d", r.CPUs, r.MemoryGB)
}

// Config describes a full matrix session: one command benchmarked under a
// set of container resource configurations.
type Config struct {
	Image         string
	RepoURL       string // optional; cloned into the container when set
	Command       string
	Runs          int
	Warmup        int
	IgnoreFailure bool
	OutputDir     string
	Name          string
	Configs       []ResourceConfig

	// Grid metadata, used for file naming and graph grouping.
	Type     BenchmarkType
	FixedCPU int
	FixedRAM int
	CPUList  []int
	RAMList  []int
}

// RepoName returns the short repository name used to prefix summary files,
// or a generic prefix when no repository is involved.
func (c Config) RepoName() string {
	if c.RepoURL == "" {
		return "benchmark"
	}
	return ExtractRepoName(c.RepoURL)
}

// ConfigResult holds the statistics reported by one containerized run.
// Times are in seconds.
type ConfigResult struct {
	Config  ResourceConfig
	Success bool
	Error   string
	Mean    float64
	StdDev  float64
	Median  float64
	Min     float64
	Max     float64
	P90     float64
	P95     float64
	Runs    int
}

// Result is the outcome of a whole matrix session.
type Result struct {
	Config    Config
	Results   []ConfigResult
	StartTime time.Time
	EndTime   time.Time
}

// ParseConfigs parses a "CPU:RAM,CPU:RAM" list such as "2:8,4:16" into
// resource configs. RAM is in GB.
func ParseConfigs(s string) ([]ResourceConfig, error) {
	var configs []ResourceConfig
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cpuStr, ramStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid configuration %q: expected CPU:RAM", part)
		}
		cpus, err := strconv.Atoi(strings.TrimSpace(cpuStr))
		if err != nil || cpus <= 0 {
			return nil, fmt.Errorf("invalid CPU count %q: expected a positive integer", cpuStr)
		}
		ram, err := strconv.Atoi(strings.TrimSpace(ramStr))
		if err != nil || ram <= 0 {
			return nil, fmt.Errorf("invalid RAM size %q: expected a positive integer", ramStr)
		}
		configs = append(configs, ResourceConfig{CPUs: cpus, MemoryGB: ram})
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("no configurations in %q", s)
	}
	return configs, nil
}

// ParseIntList parses a comma-separated list of positive integers, e.g.
// "2,4,8,16".
func ParseIntList(s string) ([]int, error) {
	var values []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid value %q: expected a positive integer", part)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no values in %q", s)
	}
	return values, nil
}

// GenerateSweepCPUConfigs pairs each CPU count with a fixed RAM size.
func GenerateSweepCPUConfigs(cpus []int, ram int) []ResourceConfig {
	configs := make([]ResourceConfig, 0, len(cpus))
	for _, c := range cpus {
		configs = append(configs, ResourceConfig{CPUs: c, MemoryGB: ram})
	}
	return configs
}

// GenerateSweepRAMConfigs pairs each RAM size with a fixed CPU count.
func GenerateSweepRAMConfigs(rams []int, cpu int) []ResourceConfig {
	configs := make([]ResourceConfig, 0, len(rams))
	for _, r := range rams {
		configs = append(configs, ResourceConfig{CPUs: cpu, MemoryGB: r})
	}
	return configs
}

// GenerateGridConfigs produces the full CPU x RAM grid, CPU-major: all RAM
// values for the first CPU count, then the next, and so on.
func GenerateGridConfigs(cpus, rams []int) []ResourceConfig {
	configs := make([]ResourceConfig, 0, len(cpus)*len(rams))
	for _, c := range cpus {
		for _, r := range rams {
			configs = append(configs, ResourceConfig{CPUs: c, MemoryGB: r})
		}
	}
	return configs
}

// ExtractRepoName returns the last path component of a repository URL,
// without any .git suffix. It handles both https and scp-style URLs.
func ExtractRepoName(url string) string {
	name := strings.TrimSuffix(strings.TrimSpace(url), "/")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".git")
	if name == "" {
		return "repo"
	}
	return name
}
