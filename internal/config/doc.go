// Package config resolves the launcher configuration.
//
// # Sources
//
// A Config is assembled from four layers, highest precedence first:
//   - explicit values supplied by the caller
//   - BOJ_MCP_* environment variables
//   - the optional Lua config file (launcher.lua)
//   - computed platform defaults (cache directory, log level)
//
// Nothing is read from global state: callers pass the environment in, and
// the resulting Config value is threaded through every provisioning call.
//
// # Lua config file
//
// The config file is executed in a sandboxed gopher-lua VM with the platform
// table injected, so it can branch on the host:
//
//	launcher = {
//	    version = "0.3.1",
//	    cache_dir = platform.when(platform.is_linux, "/var/cache/boj"),
//	    log_level = "info",
//	}
//
// The os, io, debug and module loading libraries are removed before the
// file runs.
//
// # Logging
//
// Logger is a small key/value logging interface. The default is a no-op;
// NewLogrusLogger returns a logrus-backed implementation that writes to
// stderr so that stdout stays free for the provisioned server's protocol.
package config
