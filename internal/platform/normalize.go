package platform

import "strings"

// muslDistros lists distributions whose system libc is musl.
var muslDistros = map[string]bool{
	"alpine":       true,
	"chimera":      true,
	"postmarketos": true,
}

// normalizeArch folds architecture aliases into GOARCH names. Unknown values
// are lowercased and passed through so the release target table can reject
// them with its own message.
func normalizeArch(arch string) string {
	switch a := strings.ToLower(strings.TrimSpace(arch)); a {
	case "amd64", "x86_64", "x64":
		return "amd64"
	case "arm64", "aarch64":
		return "arm64"
	default:
		return a
	}
}

// normalizeOS folds Node-style platform names into GOOS names.
func normalizeOS(goos string) string {
	switch o := strings.ToLower(strings.TrimSpace(goos)); o {
	case "win32":
		return "windows"
	case "macos":
		return "darwin"
	default:
		return o
	}
}

// libcFor decides the C library of a Linux host from its distribution ID and
// whether a musl dynamic loader is installed.
func libcFor(distro string, hasMuslLoader bool) string {
	if muslDistros[strings.ToLower(strings.TrimSpace(distro))] || hasMuslLoader {
		return LibcMusl
	}
	return LibcGNU
}
