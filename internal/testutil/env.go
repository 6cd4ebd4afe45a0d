// Package testutil provides utilities for testing the launcher in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// launcherEnvVars are cleared so a developer's own settings never leak into tests.
var launcherEnvVars = []string{
	"BOJ_MCP_SERVER_PATH",
	"BOJ_MCP_RELEASE_BASE_URL",
	"BOJ_MCP_CACHE_DIR",
	"BOJ_MCP_VERSION",
	"BOJ_MCP_KEYRING",
	"BOJ_MCP_LOG_LEVEL",
	"BOJ_MCP_CONFIG",
}

// SetupTestEnv points HOME and the XDG roots at a fresh temp directory and
// clears every BOJ_MCP_* variable. It returns the temp root.
//
// Cleanup is handled by t.TempDir and t.Setenv.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	for _, key := range launcherEnvVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("LOCALAPPDATA", filepath.Join(tmpDir, "localappdata"))
	t.Setenv("APPDATA", filepath.Join(tmpDir, "appdata"))

	for _, dir := range []string{"home", "cache", "config"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return tmpDir
}
