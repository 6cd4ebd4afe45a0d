package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser reads launcher.lua files.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser. A nil detector skips injecting the
// platform table.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// ParseFile reads and parses the config file at path.
// A missing file yields an error matching os.ErrNotExist.
func (p *Parser) ParseFile(ctx context.Context, path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigFileSizeByte+1))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if len(data) > maxConfigFileSizeByte {
		return Config{}, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, maxConfigFileSizeByte),
		}
	}

	return p.ParseString(ctx, string(data))
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (Config, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return Config{}, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return Config{}, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return Config{}, &ParseError{
			Message: "Lua error",
			Detail:  trimTraceback(err.Error()),
		}
	}

	return extractConfig(L)
}

// extractConfig reads the global launcher table.
func extractConfig(L *lua.LState) (Config, error) {
	value := L.GetGlobal(luaGlobalLauncher)
	table, ok := value.(*lua.LTable)
	if !ok {
		return Config{}, &ParseError{
			Message: "missing or invalid 'launcher' table",
			Detail:  fmt.Sprintf("expected table, got %s", value.Type()),
		}
	}

	var cfg Config
	fields := []struct {
		name string
		dst  *string
	}{
		{luaFieldVersion, &cfg.Version},
		{luaFieldBaseURL, &cfg.ReleaseBaseURL},
		{luaFieldCacheDir, &cfg.CacheDir},
		{luaFieldBinaryPath, &cfg.BinaryPath},
		{luaFieldKeyring, &cfg.KeyringPath},
		{luaFieldLogLevel, &cfg.LogLevel},
	}

	for _, f := range fields {
		v := table.RawGetString(f.name)
		switch v.Type() {
		case lua.LTNil:
			// platform.when() yields nil for non-matching platforms
		case lua.LTString:
			*f.dst = strings.TrimSpace(v.String())
		default:
			return Config{}, &ParseError{
				Message: "invalid launcher config",
				Detail:  fmt.Sprintf("field %q must be a string, got %s", f.name, v.Type()),
			}
		}
	}

	return cfg, nil
}

func trimTraceback(detail string) string {
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		return strings.TrimSpace(detail[:idx])
	}
	return detail
}
