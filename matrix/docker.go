package matrix

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// DockerClient wraps the Docker SDK client.
type DockerClient struct {
	cli *client.Client
}

// NewDockerClient connects to the Docker daemon using the standard
// environment configuration.
func NewDockerClient() (*DockerClient, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &DockerClient{cli: cli}, nil
}

// Close closes the Docker client.
func (d *DockerClient) Close() error {
	return d.cli.Close()
}

// ContainerConfig holds what CreateContainer needs: the image, the resource
// limits, and a host directory to bind-mount at /workspace/out.
type ContainerConfig struct {
	Image     string
	CPUs      int
	MemoryGB  int
	MountPath string
}

// Container is a running benchmark container.
type Container struct {
	ID     string
	client *DockerClient
}

// EnsureImage checks whether the image exists locally and pulls it if not.
func (d *DockerClient) EnsureImage(ctx context.Context, imageName string) error {
	if _, _, err := d.cli.ImageInspectWithRaw(ctx, imageName); err == nil {
		slog.Debug("image present", "image", imageName)
		return nil
	}

	fmt.Printf("Pulling image %s...\n", imageName)
	reader, err := d.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer reader.Close()

	// The pull stream must be drained for the pull to complete.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	return nil
}

// CreateContainer creates and starts a container pinned to the given CPU and
// memory limits. Swap is disabled by capping it at the memory limit, and the
// container is restricted to the first CPUs via cpuset so the kernel cannot
// spread partial load over more cores.
func (d *DockerClient) CreateContainer(ctx context.Context, cfg ContainerConfig) (*Container, error) {
	memoryBytes := int64(cfg.MemoryGB) * 1024 * 1024 * 1024
	nanoCPUs := int64(cfg.CPUs) * 1e9

	cpusetCPUs := "0"
	if cfg.CPUs > 1 {
		cpusetCPUs = fmt.Sprintf("0-%d", cfg.CPUs-1)
	}

	containerCfg := &container.Config{
		Image:      cfg.Image,
		Cmd:        []string{"sleep", "infinity"},
		WorkingDir: workspaceDir,
		Tty:        false,
	}
	hostCfg := &container.HostConfig{
		Resources: container.Resources{
			Memory:     memoryBytes,
			MemorySwap: memoryBytes,
			NanoCPUs:   nanoCPUs,
			CpusetCpus: cpusetCPUs,
		},
		Binds: []string{
			fmt.Sprintf("%s:%s", cfg.MountPath, outputDir),
		},
	}

	resp, err := d.cli.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	if err := d.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		_ = d.cli.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	slog.Debug("container started",
		"id", resp.ID[:12], "cpus", cfg.CPUs, "memory_gb", cfg.MemoryGB)
	return &Container{ID: resp.ID, client: d}, nil
}

// ExecResult holds the captured output of a command run in a container.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ExecStreaming runs a command in the container, copying its output to the
// given writers as it is produced, and returns the exit code.
func (c *Container) ExecStreaming(ctx context.Context, cmd []string, workDir string, stdout, stderr io.Writer) (int, error) {
	execCfg := container.ExecOptions{
		Cmd:          cmd,
		WorkingDir:   workDir,
		AttachStdout: true,
		AttachStderr: true,
	}

	execResp, err := c.client.cli.ContainerExecCreate(ctx, c.ID, execCfg)
	if err != nil {
		return 0, fmt.Errorf("failed to create exec: %w", err)
	}

	attachResp, err := c.client.cli.ContainerExecAttach(ctx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer attachResp.Close()

	// Docker multiplexes stdout and stderr over one stream.
	if _, err := stdcopy.StdCopy(stdout, stderr, attachResp.Reader); err != nil {
		return 0, fmt.Errorf("failed to read exec output: %w", err)
	}

	inspectResp, err := c.client.cli.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect exec: %w", err)
	}
	return inspectResp.ExitCode, nil
}

// Exec runs a command in the container and returns its buffered output.
func (c *Container) Exec(ctx context.Context, cmd []string, workDir string) (*ExecResult, error) {
	var stdout, stderr bytes.Buffer
	code, err := c.ExecStreaming(ctx, cmd, workDir, &stdout, &stderr)
	if err != nil {
		return nil, err
	}
	return &ExecResult{ExitCode: code, Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// ExecShell runs a command through /bin/sh in the container.
func (c *Container) ExecShell(ctx context.Context, command string, workDir string) (*ExecResult, error) {
	return c.Exec(ctx, []string{"/bin/sh", "-c", command}, workDir)
}

// CopyFileToContainer copies a single host file into the container,
// preserving its mode. The destination directory must already exist in the
// image.
func (c *Container) CopyFileToContainer(ctx context.Context, srcPath, dstPath string) error {
	content, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}
	fileInfo, err := os.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	header := &tar.Header{
		Name:    filepath.Base(dstPath),
		Size:    int64(len(content)),
		Mode:    int64(fileInfo.Mode()),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}
	if _, err := tw.Write(content); err != nil {
		return fmt.Errorf("failed to write tar content: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}

	dstDir := filepath.Dir(dstPath)
	if err := c.client.cli.CopyToContainer(ctx, c.ID, dstDir, &buf, container.CopyToContainerOptions{}); err != nil {
		return fmt.Errorf("failed to copy to container: %w", err)
	}
	return nil
}

// Stop stops and removes the container.
func (c *Container) Stop(ctx context.Context) error {
	timeout := 10 // seconds
	stopOptions := container.StopOptions{Timeout: &timeout}

	// The container may already have exited; removal is what matters.
	_ = c.client.cli.ContainerStop(ctx, c.ID, stopOptions)

	if err := c.client.cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}
	return nil
}
