package config

import (
	"os"
	"path/filepath"
)

// configFileName is the Lua config file looked up under the config root.
const configFileName = "launcher.lua"

// DefaultCacheDir computes the platform default cache root.
//
// Windows uses %LOCALAPPDATA%, falling back to the temp directory. Other
// platforms use $XDG_CACHE_HOME, then $HOME/.cache, then the temp directory.
func DefaultCacheDir(goos string, env map[string]string) string {
	if goos == "windows" {
		if dir := env["LOCALAPPDATA"]; dir != "" {
			return filepath.Join(dir, ProductName)
		}
		return filepath.Join(os.TempDir(), ProductName)
	}

	if dir := env["XDG_CACHE_HOME"]; dir != "" {
		return filepath.Join(dir, ProductName)
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".cache", ProductName)
	}
	return filepath.Join(os.TempDir(), ProductName)
}

// DefaultConfigFile returns where launcher.lua is looked up when no path is
// configured, or "" when no config root can be derived.
func DefaultConfigFile(goos string, env map[string]string) string {
	if goos == "windows" {
		if dir := env["APPDATA"]; dir != "" {
			return filepath.Join(dir, ProductName, configFileName)
		}
		return ""
	}

	if dir := env["XDG_CONFIG_HOME"]; dir != "" {
		return filepath.Join(dir, ProductName, configFileName)
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", ProductName, configFileName)
	}
	return ""
}
