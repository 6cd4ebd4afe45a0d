package binary

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"regexp"
	"strings"
)

// Manifest maps asset file names to lowercase SHA-256 hex digests.
type Manifest map[string]string

// manifestLine matches "<digest>  <name>" and "<digest> *<name>".
var manifestLine = regexp.MustCompile(`^([a-fA-F0-9]{64})\s+\*?(.+)$`)

// ParseManifest parses sha256sum output. Lines that do not match, such as
// comments or SHA-512 entries, are skipped without error.
func ParseManifest(text string) Manifest {
	manifest := make(Manifest)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		match := manifestLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		manifest[strings.TrimSpace(match[2])] = strings.ToLower(match[1])
	}

	return manifest
}

// Lookup returns the digest recorded for exactly name. Entries with a
// directory prefix ("dist/foo.tar.gz") do not match "foo.tar.gz".
func (m Manifest) Lookup(name string) (string, bool) {
	digest, ok := m[name]
	return digest, ok
}

// DigestFile streams the file through SHA-256 and returns the lowercase hex digest.
func DigestFile(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifyFile reports whether the file's digest equals expected, ignoring case.
// A mismatch is (false, nil); only I/O failures return an error.
func VerifyFile(filePath, expected string) (bool, error) {
	actual, err := DigestFile(filePath)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(actual, strings.TrimSpace(expected)), nil
}
