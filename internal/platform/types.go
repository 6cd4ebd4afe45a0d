// Package platform detects the operating system and CPU architecture the
// launcher runs on, and exposes that information to Lua launcher configs.
//
// OS and architecture come from the Go runtime. On Linux, gopsutil reports
// the distribution, which decides whether the host uses glibc or musl. The
// published Linux build links against glibc, so a musl host is worth a
// warning before the server fails to start.
package platform

import "context"

// C library flavours reported for Linux hosts.
const (
	LibcGNU  = "gnu"
	LibcMusl = "musl"
)

// Info describes the host.
type Info struct {
	OS            string // GOOS, e.g. "linux", "darwin", "windows"
	Arch          string // GOARCH with aliases folded, e.g. "amd64", "arm64"
	ArchRaw       string // architecture as reported before normalization
	Distro        string // Linux distribution ID, e.g. "ubuntu"; empty elsewhere
	DistroVersion string // e.g. "22.04"
	Libc          string // LibcGNU or LibcMusl on Linux; empty elsewhere
}

// Key returns "os/arch", the form release targets are looked up by.
func (i *Info) Key() string {
	return i.OS + "/" + i.Arch
}

// IsLinux reports whether the host runs Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS reports whether the host runs macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows reports whether the host runs Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// IsMusl reports a Linux host built on musl libc.
func (i *Info) IsMusl() bool {
	return i.IsLinux() && i.Libc == LibcMusl
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. Tests use it to provision for a
// platform other than the one they run on.
type StaticDetector struct {
	Info Info
}

// Detect returns a copy of the configured info.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	info := s.Info
	return &info, nil
}
