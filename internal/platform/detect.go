package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// muslLoaderGlob matches the musl dynamic loader, e.g. /lib/ld-musl-x86_64.so.1.
const muslLoaderGlob = "/lib/ld-musl-*.so.1"

// RealDetector implements Detector for the running host.
type RealDetector struct {
	goos   string
	goarch string
	// muslLoader reports whether a musl dynamic loader is installed.
	muslLoader func() bool
}

// NewDetector creates a detector for the running host.
func NewDetector() Detector {
	return &RealDetector{
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
		muslLoader: hasMuslLoader,
	}
}

// Detect reports OS and architecture from the Go runtime. On Linux it adds
// the distribution from gopsutil and the libc flavour.
//
// A gopsutil failure leaves the distribution empty and is not an error; a
// cancelled context is.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:      normalizeOS(d.goos),
		Arch:    normalizeArch(d.goarch),
		ArchRaw: d.goarch,
	}
	if !info.IsLinux() {
		return info, nil
	}

	distro, _, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
	}
	if err == nil {
		info.Distro = strings.ToLower(strings.TrimSpace(distro))
		info.DistroVersion = strings.TrimSpace(version)
	}
	info.Libc = libcFor(info.Distro, d.muslLoader())

	return info, nil
}

func hasMuslLoader() bool {
	matches, err := filepath.Glob(muslLoaderGlob)
	return err == nil && len(matches) > 0
}
