package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/platform"
)

// LoadOptions controls Load.
type LoadOptions struct {
	// Explicit values win over every other source.
	Explicit Config
	// Env is the process environment, see EnvMap.
	Env map[string]string
	// ConfigFile overrides BOJ_MCP_CONFIG and the default location.
	ConfigFile string
	// GOOS selects platform defaults.
	GOOS string
	// Detector feeds the platform table of the Lua config; may be nil.
	Detector platform.Detector
}

// Load resolves the configuration with precedence
// explicit > environment > config file > platform default.
//
// A config file that was asked for explicitly (option or BOJ_MCP_CONFIG)
// must exist; the default location is optional.
func Load(ctx context.Context, opts LoadOptions) (Config, error) {
	env := opts.Env
	if env == nil {
		env = map[string]string{}
	}

	path := opts.ConfigFile
	if path == "" {
		path = env[EnvConfigFile]
	}
	required := path != ""
	if path == "" {
		path = DefaultConfigFile(opts.GOOS, env)
	}

	var fileCfg Config
	if path != "" {
		var err error
		fileCfg, err = NewParser(opts.Detector).ParseFile(ctx, path)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist) && !required:
			fileCfg = Config{}
		default:
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	defaults := Config{
		CacheDir: DefaultCacheDir(opts.GOOS, env),
		LogLevel: DefaultLogLevel,
	}

	return defaults.
		Merge(fileCfg).
		Merge(FromEnv(env)).
		Merge(opts.Explicit), nil
}
