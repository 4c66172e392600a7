package matrix

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Container filesystem layout. The host result directory is bind-mounted at
// outputDir so the export lands on the host without a copy step; the binary
// and any cloned repository live on the container filesystem to keep the
// benchmarked workload off the bind mount.
const (
	workspaceDir    = "/workspace"
	outputDir       = "/workspace/out"
	repoDir         = "/workspace/repo"
	containerBinary = "/usr/local/bin/vernier"
	containerResult = "/workspace/out/result.json"
	resultFile      = "result.json"
)

// Run benchmarks the configured command under every resource configuration,
// sequentially, and collects per-config statistics. A cancelled context
// stops the session after the current configuration's teardown.
func Run(ctx context.Context, cfg Config, binaryPath string) (*Result, error) {
	dc, err := NewDockerClient()
	if err != nil {
		return nil, err
	}
	defer dc.Close()

	if err := dc.EnsureImage(ctx, cfg.Image); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	workRoot, err := os.MkdirTemp("", "vernier-matrix-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workRoot)

	result := &Result{Config: cfg, StartTime: time.Now()}
	for i, rc := range cfg.Configs {
		if ctx.Err() != nil {
			result.EndTime = time.Now()
			return result, ctx.Err()
		}

		fmt.Printf("\n[%d/%d] %s\n", i+1, len(cfg.Configs), rc)
		cr := runSingleConfig(ctx, dc, cfg, rc, binaryPath, workRoot)
		if cr.Success {
			fmt.Printf("  mean %s over %d runs\n", formatDuration(cr.Mean), cr.Runs)
		} else {
			fmt.Printf("  failed: %s\n", cr.Error)
		}
		result.Results = append(result.Results, cr)
	}
	result.EndTime = time.Now()
	return result, nil
}

func runSingleConfig(ctx context.Context, dc *DockerClient, cfg Config, rc ResourceConfig, binaryPath, workRoot string) ConfigResult {
	cr := ConfigResult{Config: rc}
	fail := func(err error) ConfigResult {
		cr.Success = false
		cr.Error = err.Error()
		return cr
	}

	hostDir := filepath.Join(workRoot, rc.DirName())
	if err := os.MkdirAll(hostDir, 0o755); err != nil {
		return fail(fmt.Errorf("failed to create result directory: %w", err))
	}

	ctr, err := dc.CreateContainer(ctx, ContainerConfig{
		Image:     cfg.Image,
		CPUs:      rc.CPUs,
		MemoryGB:  rc.MemoryGB,
		MountPath: hostDir,
	})
	if err != nil {
		return fail(err)
	}
	// Teardown must run even when the session is being cancelled.
	defer ctr.Stop(context.WithoutCancel(ctx))

	if err := ctr.CopyFileToContainer(ctx, binaryPath, containerBinary); err != nil {
		return fail(err)
	}

	workDir := workspaceDir
	if cfg.RepoURL != "" {
		if res, err := ctr.ExecShell(ctx, "command -v git", ""); err != nil {
			return fail(err)
		} else if res.ExitCode != 0 {
			return fail(fmt.Errorf("image %s has no git; cannot clone %s", cfg.Image, cfg.RepoURL))
		}

		fmt.Printf("  cloning %s\n", cfg.RepoURL)
		clone, err := ctr.Exec(ctx, []string{"git", "clone", "--depth", "1", cfg.RepoURL, repoDir}, "")
		if err != nil {
			return fail(err)
		}
		if clone.ExitCode != 0 {
			return fail(fmt.Errorf("git clone exited %d: %s", clone.ExitCode, tail(clone.Stderr)))
		}
		workDir = repoDir
	}

	argv := benchArgs(cfg)
	slog.Debug("running benchmark", "container", ctr.ID[:12], "workdir", workDir, "args", strings.Join(argv, " "))

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		// Stream the container's output live under --debug.
		code, err := ctr.ExecStreaming(ctx, argv, workDir, os.Stdout, os.Stderr)
		if err != nil {
			return fail(err)
		}
		if code != 0 {
			return fail(fmt.Errorf("benchmark exited %d", code))
		}
	} else {
		res, err := ctr.Exec(ctx, argv, workDir)
		if err != nil {
			return fail(err)
		}
		if res.ExitCode != 0 {
			return fail(fmt.Errorf("benchmark exited %d: %s", res.ExitCode, tail(res.Stderr)))
		}
	}

	data, err := os.ReadFile(filepath.Join(hostDir, resultFile))
	if err != nil {
		return fail(fmt.Errorf("failed to read results: %w", err))
	}
	if err := parseResults(data, &cr); err != nil {
		return fail(err)
	}
	cr.Success = true
	return cr
}

// benchArgs builds the vernier invocation run inside the container. The
// command is passed as a single positional argument after --, so no shell
// quoting is involved on the way in.
func benchArgs(cfg Config) []string {
	args := []string{
		containerBinary,
		"--runs", strconv.Itoa(cfg.Runs),
		"--style", "basic",
		"--export-json", containerResult,
	}
	if cfg.Warmup > 0 {
		args = append(args, "--warmup", strconv.Itoa(cfg.Warmup))
	}
	if cfg.IgnoreFailure {
		args = append(args, "--ignore-failure")
	}
	return append(args, "--", cfg.Command)
}

// parseResults fills cr's statistics from a JSON export written by the
// vernier run inside the container.
func parseResults(data []byte, cr *ConfigResult) error {
	var doc struct {
		Results []struct {
			Failed        bool    `json:"failed"`
			FailureReason string  `json:"failure_reason"`
			Mean          float64 `json:"mean"`
			StdDev        float64 `json:"stddev"`
			Median        float64 `json:"median"`
			Min           float64 `json:"min"`
			Max           float64 `json:"max"`
			P90           float64 `json:"p90"`
			P95           float64 `json:"p95"`
			Runs          int     `json:"runs"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse results: %w", err)
	}
	if len(doc.Results) == 0 {
		return fmt.Errorf("results file has no entries")
	}

	r := doc.Results[0]
	if r.Failed {
		return fmt.Errorf("benchmark failed: %s", r.FailureReason)
	}
	cr.Mean = r.Mean
	cr.StdDev = r.StdDev
	cr.Median = r.Median
	cr.Min = r.Min
	cr.Max = r.Max
	cr.P90 = r.P90
	cr.P95 = r.P95
	cr.Runs = r.Runs
	return nil
}

// BuildStaticBinary cross-compiles vernier as a static linux binary for the
// host's architecture so it can run inside the benchmark containers. It must
// be invoked from within a vernier source checkout.
func BuildStaticBinary(output string) error {
	root, err := moduleRoot()
	if err != nil {
		return err
	}

	cmd := exec.Command("go", "build", "-ldflags", "-s -w", "-o", output, ".")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS=linux", "GOARCH="+runtime.GOARCH)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to build static binary: %w\n%s", err, out)
	}
	slog.Debug("built static binary", "path", output, "arch", runtime.GOARCH)
	return nil
}

// moduleRoot walks up from the working directory to the enclosing go.mod.
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found: matrix benchmarks must run from a source checkout")
		}
		dir = parent
	}
}

// tail trims captured output down to something fit for an error message.
func tail(s string) string {
	s = strings.TrimSpace(s)
	const max = 300
	if len(s) > max {
		return "…" + s[len(s)-max:]
	}
	return s
}
