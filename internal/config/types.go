package config

import "strings"

// ProductName is the directory name used under cache and config roots.
const ProductName = "boj-mcp-server"

// Environment variables read by the launcher.
const (
	EnvBinaryPath     = "BOJ_MCP_SERVER_PATH"
	EnvReleaseBaseURL = "BOJ_MCP_RELEASE_BASE_URL"
	EnvCacheDir       = "BOJ_MCP_CACHE_DIR"
	EnvVersion        = "BOJ_MCP_VERSION"
	EnvKeyring        = "BOJ_MCP_KEYRING"
	EnvLogLevel       = "BOJ_MCP_LOG_LEVEL"
	EnvConfigFile     = "BOJ_MCP_CONFIG"
)

// DefaultLogLevel keeps the launcher quiet unless something goes wrong.
const DefaultLogLevel = "warn"

// Config is the resolved launcher configuration.
type Config struct {
	// BinaryPath bypasses all provisioning when set.
	BinaryPath string
	// ReleaseBaseURL overrides the release download location.
	ReleaseBaseURL string
	// CacheDir is the root of the binary cache.
	CacheDir string
	// Version of the server binary to provision.
	Version string
	// KeyringPath points at an OpenPGP public keyring used to verify the
	// checksum manifest signature. Empty disables signature checks.
	KeyringPath string
	// LogLevel is a logrus level name.
	LogLevel string
}

// Merge returns a copy of c with every non-empty field of over applied on top.
func (c Config) Merge(over Config) Config {
	pick := func(base, o string) string {
		if strings.TrimSpace(o) != "" {
			return o
		}
		return base
	}

	return Config{
		BinaryPath:     pick(c.BinaryPath, over.BinaryPath),
		ReleaseBaseURL: pick(c.ReleaseBaseURL, over.ReleaseBaseURL),
		CacheDir:       pick(c.CacheDir, over.CacheDir),
		Version:        pick(c.Version, over.Version),
		KeyringPath:    pick(c.KeyringPath, over.KeyringPath),
		LogLevel:       pick(c.LogLevel, over.LogLevel),
	}
}

// FromEnv extracts the launcher settings present in env.
func FromEnv(env map[string]string) Config {
	return Config{
		BinaryPath:     env[EnvBinaryPath],
		ReleaseBaseURL: env[EnvReleaseBaseURL],
		CacheDir:       env[EnvCacheDir],
		Version:        env[EnvVersion],
		KeyringPath:    env[EnvKeyring],
		LogLevel:       env[EnvLogLevel],
	}
}

// EnvMap converts an os.Environ style list into a map. Later entries win.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}
