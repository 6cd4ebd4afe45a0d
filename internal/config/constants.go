package config

// Lua schema field names and globals
const (
	luaGlobalLauncher     = "launcher"
	luaFieldVersion       = "version"
	luaFieldBaseURL       = "release_base_url"
	luaFieldCacheDir      = "cache_dir"
	luaFieldBinaryPath    = "binary_path"
	luaFieldKeyring       = "keyring"
	luaFieldLogLevel      = "log_level"
	maxConfigFileSizeByte = 1 << 20
)
