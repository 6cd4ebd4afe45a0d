package platform

import (
	"context"
	"runtime"
	"testing"
)

func TestRealDetector_Detect(t *testing.T) {
	info, err := NewDetector().Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.OS != runtime.GOOS {
		t.Errorf("OS = %v, want %v", info.OS, runtime.GOOS)
	}
	if info.ArchRaw != runtime.GOARCH {
		t.Errorf("ArchRaw = %v, want %v", info.ArchRaw, runtime.GOARCH)
	}
	if info.Arch != normalizeArch(runtime.GOARCH) {
		t.Errorf("Arch = %v, want %v", info.Arch, normalizeArch(runtime.GOARCH))
	}

	if runtime.GOOS == "linux" && info.Libc != LibcGNU && info.Libc != LibcMusl {
		t.Errorf("Libc = %q, want gnu or musl on linux", info.Libc)
	}
	if runtime.GOOS != "linux" && (info.Libc != "" || info.Distro != "") {
		t.Errorf("libc and distro should be empty off linux: %+v", info)
	}
}

func TestRealDetector_NonLinuxSkipsDistro(t *testing.T) {
	probed := false
	d := &RealDetector{
		goos:       "win32",
		goarch:     "x64",
		muslLoader: func() bool { probed = true; return true },
	}

	info, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if info.Key() != "windows/amd64" {
		t.Errorf("Key() = %q, want windows/amd64", info.Key())
	}
	if info.ArchRaw != "x64" {
		t.Errorf("ArchRaw = %q, want x64", info.ArchRaw)
	}
	if probed || info.IsMusl() {
		t.Error("musl probing should only happen on linux")
	}
}

func TestRealDetector_MuslLoader(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("gopsutil distro detection only runs on linux")
	}

	d := &RealDetector{goos: "linux", goarch: "amd64", muslLoader: func() bool { return true }}
	info, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !info.IsMusl() {
		t.Errorf("expected musl host, got %+v", info)
	}
}

func TestRealDetector_CancelledContext(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("distro detection only runs on linux")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// gopsutil may answer from cache without consulting ctx, so only
	// assert that a returned error mentions cancellation.
	if _, err := NewDetector().Detect(ctx); err != nil && ctx.Err() == nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStaticDetector(t *testing.T) {
	want := Info{OS: "windows", Arch: "amd64", ArchRaw: "amd64"}
	d := StaticDetector{Info: want}

	got, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if *got != want {
		t.Errorf("Detect() = %+v, want %+v", *got, want)
	}

	got.OS = "linux"
	again, _ := d.Detect(context.Background())
	if again.OS != "windows" {
		t.Error("StaticDetector should return a copy")
	}
}

func TestInfoHelpers(t *testing.T) {
	tests := []struct {
		name        string
		info        Info
		wantWindows bool
		wantMacOS   bool
		wantLinux   bool
		wantMusl    bool
	}{
		{"linux gnu", Info{OS: "linux", Arch: "amd64", Libc: LibcGNU}, false, false, true, false},
		{"linux musl", Info{OS: "linux", Arch: "amd64", Libc: LibcMusl}, false, false, true, true},
		{"darwin arm64", Info{OS: "darwin", Arch: "arm64"}, false, true, false, false},
		{"windows amd64", Info{OS: "windows", Arch: "amd64"}, true, false, false, false},
		{"musl libc ignored off linux", Info{OS: "darwin", Libc: LibcMusl}, false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.IsWindows(); got != tt.wantWindows {
				t.Errorf("IsWindows() = %v, want %v", got, tt.wantWindows)
			}
			if got := tt.info.IsMacOS(); got != tt.wantMacOS {
				t.Errorf("IsMacOS() = %v, want %v", got, tt.wantMacOS)
			}
			if got := tt.info.IsLinux(); got != tt.wantLinux {
				t.Errorf("IsLinux() = %v, want %v", got, tt.wantLinux)
			}
			if got := tt.info.IsMusl(); got != tt.wantMusl {
				t.Errorf("IsMusl() = %v, want %v", got, tt.wantMusl)
			}
		})
	}
}
