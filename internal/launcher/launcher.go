// Package launcher provisions the boj-mcp-server binary and hands the
// process over to it.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/binary"
	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/config"
	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/platform"
	"github.com/coreos/go-semver/semver"
)

// Options carries the inputs of Run. Zero values select the process defaults.
type Options struct {
	// Version is the launcher's own build version. It is the server version
	// provisioned when no other source names one.
	Version string
	// Config holds explicit settings that win over env and config file.
	Config config.Config
	// ConfigFile overrides BOJ_MCP_CONFIG and the default config location.
	ConfigFile string
	// Env is the environment in os.Environ form. Defaults to os.Environ().
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Detector platform.Detector
	Fetcher  binary.Fetcher
	Runner   Runner
	// Logger defaults to a logrus logger on Stderr at the configured level.
	Logger config.Logger
	// Getwd resolves relative override paths. Defaults to os.Getwd.
	Getwd func() (string, error)
}

// Run resolves the server binary, either from the override path or by
// provisioning the release into the cache, and runs it with args. It returns
// the child's exit status. Errors are returned for any failure before or
// while starting the child and for signal termination (status 1).
func Run(ctx context.Context, args []string, opts Options) (int, error) {
	opts = withDefaults(opts)
	env := config.EnvMap(opts.Env)

	cfg, err := config.Load(ctx, config.LoadOptions{
		Explicit:   opts.Config,
		Env:        env,
		ConfigFile: opts.ConfigFile,
		GOOS:       runtime.GOOS,
		Detector:   opts.Detector,
	})
	if err != nil {
		return 1, err
	}

	logger := opts.Logger
	if logger == nil {
		logger, err = config.NewLogrusLogger(cfg.LogLevel, opts.Stderr)
		if err != nil {
			return 1, err
		}
	}

	binaryPath, err := resolveBinary(ctx, cfg, opts, logger)
	if err != nil {
		return 1, err
	}

	logger.Debug("starting server", "path", binaryPath, "args", len(args))
	return opts.Runner.Run(ctx, Command{
		Path:   binaryPath,
		Args:   args,
		Env:    opts.Env,
		Stdin:  opts.Stdin,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
}

func withDefaults(opts Options) Options {
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Detector == nil {
		opts.Detector = platform.NewDetector()
	}
	if opts.Runner == nil {
		opts.Runner = NewExecRunner()
	}
	if opts.Getwd == nil {
		opts.Getwd = os.Getwd
	}
	return opts
}

// resolveBinary returns the override path when one is configured, otherwise
// the provisioned release binary.
func resolveBinary(ctx context.Context, cfg config.Config, opts Options, logger config.Logger) (string, error) {
	if override := strings.TrimSpace(cfg.BinaryPath); override != "" {
		path, err := ResolveOverridePath(override, opts.Getwd)
		if err != nil {
			return "", err
		}
		logger.Debug("using binary override", "path", path)
		return path, nil
	}

	requested := cfg.Version
	if requested == "" {
		requested = opts.Version
	}
	version, err := NormalizeVersion(requested)
	if err != nil {
		return "", err
	}

	info, err := opts.Detector.Detect(ctx)
	if err != nil {
		return "", fmt.Errorf("detect platform: %w", err)
	}
	logger.Debug("detected platform",
		"os", info.OS,
		"arch", info.Arch,
		"distro", info.Distro,
		"libc", info.Libc,
	)
	if info.IsMusl() {
		logger.Warn("linux release builds link against glibc and may not start on this host",
			"distro", info.Distro)
	}

	installer := binary.NewInstaller(binary.InstallerConfig{
		Fetcher:     opts.Fetcher,
		Logger:      logger,
		KeyringPath: cfg.KeyringPath,
	})

	return installer.EnsureArtifact(ctx, binary.Request{
		Version:   version,
		BaseURL:   cfg.ReleaseBaseURL,
		CacheRoot: cfg.CacheDir,
		OS:        info.OS,
		Arch:      info.Arch,
	})
}

// ResolveOverridePath returns an absolute override path verbatim and joins a
// relative one onto the working directory. The path is not checked for
// existence; starting the process reports that.
func ResolveOverridePath(override string, getwd func() (string, error)) (string, error) {
	if filepath.IsAbs(override) {
		return override, nil
	}

	cwd, err := getwd()
	if err != nil {
		return "", fmt.Errorf("resolve %s relative to working directory: %w", config.EnvBinaryPath, err)
	}
	return filepath.Join(cwd, override), nil
}

// NormalizeVersion validates a semantic version, accepting a leading "v",
// and returns it without the prefix.
func NormalizeVersion(version string) (string, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(version), "v")
	if trimmed == "" {
		return "", errors.New("server version is not set")
	}

	v, err := semver.NewVersion(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid server version %q: %w", version, err)
	}
	return v.String(), nil
}
