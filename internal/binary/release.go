package binary

import (
	"fmt"
	"strings"
)

const (
	// DefaultReleaseBaseURL is where releases are downloaded from unless overridden.
	DefaultReleaseBaseURL = "https://github.com/explorrrr/boj-client/releases/download"
	// ChecksumManifestName is the manifest published with every release.
	ChecksumManifestName = "SHA256SUMS"

	releaseTagPrefix = "mcp-server-v"
	signatureSuffix  = ".asc"
)

// Release holds the download locations of one release build.
type Release struct {
	Tag          string
	AssetName    string
	AssetURL     string
	ChecksumURL  string
	SignatureURL string
}

// NormalizeBaseURL falls back to DefaultReleaseBaseURL for a blank value and
// strips trailing slashes. Normalizing twice gives the same result as once.
func NormalizeBaseURL(baseURL string) string {
	normalized := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if normalized == "" {
		return DefaultReleaseBaseURL
	}
	return normalized
}

// ReleaseTag returns the git tag of a server release.
func ReleaseTag(version string) string {
	return releaseTagPrefix + version
}

// AssetName returns the archive file name for a target triple.
func AssetName(triple string) string {
	return fmt.Sprintf("%s-%s.tar.gz", serverBinaryName, triple)
}

// BuildRelease computes the release URLs. It performs no I/O and does not
// validate version.
func BuildRelease(version, triple, baseURL string) Release {
	tag := ReleaseTag(version)
	asset := AssetName(triple)
	prefix := NormalizeBaseURL(baseURL) + "/" + tag
	checksumURL := prefix + "/" + ChecksumManifestName

	return Release{
		Tag:          tag,
		AssetName:    asset,
		AssetURL:     prefix + "/" + asset,
		ChecksumURL:  checksumURL,
		SignatureURL: checksumURL + signatureSuffix,
	}
}
