package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// ReleaseServer serves static release files and counts requests per path.
type ReleaseServer struct {
	*httptest.Server

	mu     sync.Mutex
	files  map[string][]byte
	counts map[string]int
}

// NewReleaseServer starts a server that is closed when the test ends.
func NewReleaseServer(t *testing.T) *ReleaseServer {
	t.Helper()

	s := &ReleaseServer{
		files:  make(map[string][]byte),
		counts: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

func (s *ReleaseServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.counts[r.URL.Path]++
	data, ok := s.files[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// AddFile publishes data at urlPath (e.g. "/mcp-server-v1.0.0/SHA256SUMS").
func (s *ReleaseServer) AddFile(urlPath string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[urlPath] = data
}

// Count returns how many requests hit urlPath.
func (s *ReleaseServer) Count(urlPath string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[urlPath]
}

// TotalRequests returns the number of requests served so far.
func (s *ReleaseServer) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.counts {
		total += n
	}
	return total
}

// TarGz builds a gzip-compressed tar archive in memory with one regular file
// per entry, each with mode 0755.
func TarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzipWriter)

	for name, content := range files {
		header := &tar.Header{
			Name:     name,
			Mode:     0o755,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header for %s: %v", name, err)
		}
		if _, err := tarWriter.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write content for %s: %v", name, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	if err := gzipWriter.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}

	return buf.Bytes()
}

// SHA256Hex returns the lowercase hex SHA-256 of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
