package binary

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxExtractedBytes caps the uncompressed size of a release archive.
const maxExtractedBytes = 512 << 20

// ExtractTarGz unpacks a gzip-compressed tar archive into destDir and returns
// the relative paths of the regular files it wrote.
//
// Directories and regular files are materialised; links, devices and other
// entry types are ignored. Entries resolving outside destDir, entries that
// would overwrite the archive itself and archives expanding beyond
// maxExtractedBytes are rejected.
func ExtractTarGz(archivePath, destDir string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read gzip stream: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create dest dir: %w", err)
	}

	tr := tar.NewReader(gz)
	budget := int64(maxExtractedBytes)
	var written []string
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read tar entry: %w", err)
		}

		target, err := entryPath(destDir, hdr.Name)
		if err != nil {
			return nil, err
		}
		if target == filepath.Clean(archivePath) {
			return nil, fmt.Errorf("archive entry %s would overwrite the archive", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, fmt.Errorf("create directory %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if hdr.Size > budget {
				return nil, fmt.Errorf("archive expands beyond %d bytes", int64(maxExtractedBytes))
			}
			budget -= hdr.Size
			if err := writeRegular(target, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return nil, err
			}
			written = append(written, filepath.ToSlash(filepath.Clean(hdr.Name)))
		}
	}
}

// entryPath resolves an archive entry name below destDir.
func entryPath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	root := filepath.Clean(destDir) + string(os.PathSeparator)
	if !strings.HasPrefix(target+string(os.PathSeparator), root) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return target, nil
}

// writeRegular copies one file entry out of the archive. The owner always
// gets read and write access so the staging directory can be cleaned up.
func writeRegular(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	return out.Close()
}

// markExecutable sets mode 0755 on the installed binary.
func markExecutable(path string) error {
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("mark %s executable: %w", filepath.Base(path), err)
	}
	return nil
}
