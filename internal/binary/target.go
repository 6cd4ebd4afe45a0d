package binary

import (
	"sort"
	"strings"
)

// Target identifies the release build for one platform.
type Target struct {
	OS         string // GOOS
	Arch       string // GOARCH
	Triple     string // release target triple, e.g. "x86_64-unknown-linux-gnu"
	BinaryName string // executable file name inside the archive
}

// IsWindows reports whether the target is a Windows build.
func (t Target) IsWindows() bool {
	return t.OS == "windows"
}

const (
	serverBinaryName    = "boj-mcp-server"
	serverBinaryNameExe = serverBinaryName + ".exe"
)

var supportedTargets = map[string]Target{
	"linux/amd64":   {OS: "linux", Arch: "amd64", Triple: "x86_64-unknown-linux-gnu", BinaryName: serverBinaryName},
	"darwin/amd64":  {OS: "darwin", Arch: "amd64", Triple: "x86_64-apple-darwin", BinaryName: serverBinaryName},
	"darwin/arm64":  {OS: "darwin", Arch: "arm64", Triple: "aarch64-apple-darwin", BinaryName: serverBinaryName},
	"windows/amd64": {OS: "windows", Arch: "amd64", Triple: "x86_64-pc-windows-msvc", BinaryName: serverBinaryNameExe},
}

// Node-style platform names (process.platform, process.arch) map onto GOOS/GOARCH.
var (
	osAliases   = map[string]string{"win32": "windows", "macos": "darwin"}
	archAliases = map[string]string{"x64": "amd64", "x86_64": "amd64", "aarch64": "arm64"}
)

// ResolveTarget maps (goos, goarch) to its release target. Pairs outside the
// support table fail with *UnsupportedTargetError listing every supported pair.
func ResolveTarget(goos, goarch string) (Target, error) {
	osName := strings.ToLower(strings.TrimSpace(goos))
	if alias, ok := osAliases[osName]; ok {
		osName = alias
	}
	archName := strings.ToLower(strings.TrimSpace(goarch))
	if alias, ok := archAliases[archName]; ok {
		archName = alias
	}

	target, ok := supportedTargets[osName+"/"+archName]
	if !ok {
		return Target{}, &UnsupportedTargetError{
			OS:        goos,
			Arch:      goarch,
			Supported: SupportedTargets(),
		}
	}
	return target, nil
}

// SupportedTargets returns the supported "os/arch" keys in sorted order.
func SupportedTargets() []string {
	keys := make([]string, 0, len(supportedTargets))
	for key := range supportedTargets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
