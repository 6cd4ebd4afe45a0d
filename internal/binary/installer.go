package binary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/config"
	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/lock"
	"github.com/google/uuid"
)

// InstallerConfig holds the collaborators of an Installer.
type InstallerConfig struct {
	// Fetcher downloads release files. Defaults to an HTTP Downloader.
	Fetcher Fetcher
	// Logger receives progress records. Defaults to a no-op logger.
	Logger config.Logger
	// Lock tunes the per-slot install lock.
	Lock lock.Options
	// KeyringPath enables manifest signature verification when set.
	KeyringPath string
}

// Installer provisions release binaries into a version/platform keyed cache.
type Installer struct {
	fetcher     Fetcher
	logger      config.Logger
	lockOpts    lock.Options
	keyringPath string
	now         func() time.Time
	randSuffix  func() string
}

// NewInstaller creates an Installer.
func NewInstaller(cfg InstallerConfig) *Installer {
	if cfg.Fetcher == nil {
		cfg.Fetcher = NewDownloader(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = config.DefaultLogger()
	}
	if cfg.Lock.Logger == nil {
		cfg.Lock.Logger = cfg.Logger
	}

	return &Installer{
		fetcher:     cfg.Fetcher,
		logger:      cfg.Logger,
		lockOpts:    cfg.Lock,
		keyringPath: cfg.KeyringPath,
		now:         time.Now,
		randSuffix:  randomSuffix,
	}
}

// Request describes the binary to provision.
type Request struct {
	Version string
	// BaseURL overrides DefaultReleaseBaseURL.
	BaseURL string
	// CacheRoot defaults to config.DefaultCacheDir for the running platform.
	CacheRoot string
	OS        string
	Arch      string
}

// SlotDir returns the cache directory holding the binary for version and target.
func SlotDir(cacheRoot, version string, target Target) string {
	return filepath.Join(cacheRoot, version, target.Triple)
}

// EnsureArtifact returns the path of the installed binary, installing it
// first if the cache slot is empty.
//
// The existence check before locking is lock-free; installation itself runs
// under the slot lock and re-checks the slot once the lock is held, so
// concurrent callers download at most once. The slot is published by a
// single rename and is never observable half-written. The lock and the
// staging directory are cleaned up on every return path.
func (i *Installer) EnsureArtifact(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Version) == "" {
		return "", errors.New("version is required for binary install")
	}

	target, err := ResolveTarget(req.OS, req.Arch)
	if err != nil {
		return "", err
	}
	release := BuildRelease(req.Version, target.Triple, req.BaseURL)

	cacheRoot := req.CacheRoot
	if cacheRoot == "" {
		cacheRoot = config.DefaultCacheDir(runtime.GOOS, config.EnvMap(os.Environ()))
	}
	slotDir := SlotDir(cacheRoot, req.Version, target)
	binaryPath := filepath.Join(slotDir, target.BinaryName)

	if installed, err := isRegularFile(binaryPath); err != nil {
		return "", fmt.Errorf("check installed binary: %w", err)
	} else if installed {
		i.logger.Debug("binary cache hit", "path", binaryPath)
		return binaryPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(slotDir), 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	slotLock, err := lock.Acquire(ctx, slotDir+".lock", i.lockOpts)
	if err != nil {
		return "", fmt.Errorf("acquire install lock: %w", err)
	}
	defer func() {
		if err := slotLock.Release(); err != nil {
			i.logger.Warn("failed to release install lock", "error", err)
		}
	}()

	if installed, err := isRegularFile(binaryPath); err != nil {
		return "", fmt.Errorf("check installed binary: %w", err)
	} else if installed {
		i.logger.Debug("binary installed by another process", "path", binaryPath)
		return binaryPath, nil
	}

	stagingDir := i.stagingDir(slotDir)
	if err := os.Mkdir(stagingDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(stagingDir); err != nil {
			i.logger.Warn("failed to remove staging dir", "path", stagingDir, "error", err)
		}
	}()

	i.logger.Info("installing binary",
		"version", req.Version,
		"triple", target.Triple,
		"url", release.AssetURL,
	)

	start := i.now()
	if err := i.install(ctx, release, target, stagingDir, slotDir); err != nil {
		return "", err
	}

	i.logger.Info("binary installed", "path", binaryPath, "duration", time.Since(start))
	return binaryPath, nil
}

// install assembles the slot in stagingDir and renames it into slotDir.
// Verification strictly precedes extraction, extraction precedes publishing.
func (i *Installer) install(ctx context.Context, release Release, target Target, stagingDir, slotDir string) error {
	expected, err := i.expectedDigest(ctx, release)
	if err != nil {
		return err
	}

	archivePath := filepath.Join(stagingDir, release.AssetName)
	if err := i.fetcher.DownloadToFile(ctx, release.AssetURL, archivePath); err != nil {
		return err
	}

	ok, err := VerifyFile(archivePath, expected)
	if err != nil {
		return fmt.Errorf("compute checksum of %s: %w", release.AssetName, err)
	}
	if !ok {
		return fmt.Errorf("%w for %s", ErrChecksumMismatch, release.AssetName)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	files, err := ExtractTarGz(archivePath, stagingDir)
	if err != nil {
		return fmt.Errorf("extract %s: %w", release.AssetName, err)
	}
	i.logger.Debug("archive extracted", "asset", release.AssetName, "files", len(files))

	extracted := filepath.Join(stagingDir, target.BinaryName)
	if present, err := isRegularFile(extracted); err != nil {
		return fmt.Errorf("check extracted binary: %w", err)
	} else if !present {
		return fmt.Errorf("%w: %s", ErrArchiveContentMissing, target.BinaryName)
	}

	if !target.IsWindows() {
		if err := markExecutable(extracted); err != nil {
			return err
		}
	}

	if err := os.Remove(archivePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove archive: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.RemoveAll(slotDir); err != nil {
		return fmt.Errorf("remove previous slot: %w", err)
	}
	if err := os.Rename(stagingDir, slotDir); err != nil {
		return fmt.Errorf("publish slot: %w", err)
	}

	return nil
}

// expectedDigest fetches the manifest, checks its signature when a keyring
// is configured, and returns the digest recorded for the release asset.
func (i *Installer) expectedDigest(ctx context.Context, release Release) (string, error) {
	text, err := i.fetcher.FetchText(ctx, release.ChecksumURL)
	if err != nil {
		return "", err
	}

	if i.keyringPath != "" {
		keyring, err := LoadKeyring(i.keyringPath)
		if err != nil {
			return "", err
		}
		signature, err := i.fetcher.FetchText(ctx, release.SignatureURL)
		if err != nil {
			return "", err
		}
		if err := VerifyManifestSignature([]byte(text), []byte(signature), keyring); err != nil {
			return "", err
		}
		i.logger.Debug("checksum manifest signature verified", "url", release.SignatureURL)
	}

	digest, ok := ParseManifest(text).Lookup(release.AssetName)
	if !ok {
		return "", fmt.Errorf("%w for %s in %s", ErrChecksumEntryMissing, release.AssetName, release.ChecksumURL)
	}
	return digest, nil
}

// stagingDir names a private directory for one install attempt. The random
// suffix keeps names unique even if a reclaimed lock lets two attempts for
// the same slot start within the same clock tick.
func (i *Installer) stagingDir(slotDir string) string {
	return fmt.Sprintf("%s.tmp-%d-%d-%s", slotDir, os.Getpid(), i.now().UnixNano(), i.randSuffix())
}

// randomSuffix returns 8 hex characters from a random UUID.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// isRegularFile reports whether path exists as a regular file. Only "not
// found" maps to false; other stat errors are returned.
func isRegularFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
