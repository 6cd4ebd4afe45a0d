package binary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// newAssetServer serves a fixed set of paths and fails requests that do not
// identify themselves as the launcher.
func newAssetServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var badAgents atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			badAgents.Add(1)
		}
		switch r.URL.Path {
		case "/asset.tar.gz":
			w.Write([]byte("archive bytes"))
		case "/SHA256SUMS":
			w.Write([]byte(digestA + "  asset.tar.gz\n"))
		case "/huge":
			w.Write([]byte(strings.Repeat("x", maxManifestSize+1)))
		case "/moved":
			http.Redirect(w, r, "/asset.tar.gz", http.StatusFound)
		case "/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return server, &badAgents
}

func TestDownloader_DownloadToFile(t *testing.T) {
	server, badAgents := newAssetServer(t)
	downloader := NewDownloader(nil)

	tests := []struct {
		name       string
		path       string
		wantBody   string
		wantStatus int
	}{
		{name: "ok", path: "/asset.tar.gz", wantBody: "archive bytes"},
		{name: "follows_redirect", path: "/moved", wantBody: "archive bytes"},
		{name: "not_found", path: "/missing.tar.gz", wantStatus: http.StatusNotFound},
		{name: "bad_gateway", path: "/broken", wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "asset.tar.gz")
			err := downloader.DownloadToFile(context.Background(), server.URL+tt.path, dest)

			if tt.wantStatus != 0 {
				var statusErr *HTTPStatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("expected *HTTPStatusError, got %v", err)
				}
				if statusErr.StatusCode != tt.wantStatus || statusErr.URL != server.URL+tt.path {
					t.Errorf("status error = %+v", statusErr)
				}
				for _, leftover := range []string{dest, dest + ".part"} {
					if _, err := os.Stat(leftover); !os.IsNotExist(err) {
						t.Errorf("%s should not exist after a failed download", filepath.Base(leftover))
					}
				}
				return
			}

			if err != nil {
				t.Fatalf("DownloadToFile() error: %v", err)
			}
			body, err := os.ReadFile(dest)
			if err != nil {
				t.Fatal(err)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
				t.Error("partial file should be renamed away")
			}
		})
	}

	if n := badAgents.Load(); n != 0 {
		t.Errorf("%d requests without the launcher User-Agent", n)
	}
}

func TestDownloader_FetchText(t *testing.T) {
	server, _ := newAssetServer(t)
	downloader := NewDownloader(server.Client())
	ctx := context.Background()

	text, err := downloader.FetchText(ctx, server.URL+"/SHA256SUMS")
	if err != nil {
		t.Fatalf("FetchText() error: %v", err)
	}
	if _, ok := ParseManifest(text).Lookup("asset.tar.gz"); !ok {
		t.Errorf("manifest body not returned intact: %q", text)
	}

	_, err = downloader.FetchText(ctx, server.URL+"/missing")
	if err == nil || err.Error() != "failed to download "+server.URL+"/missing: HTTP 404" {
		t.Errorf("unexpected error for missing manifest: %v", err)
	}

	if _, err := downloader.FetchText(ctx, server.URL+"/huge"); err == nil {
		t.Error("expected error for oversized response")
	}
}

func TestDownloader_CancelledContext(t *testing.T) {
	server, _ := newAssetServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "asset.tar.gz")
	err := NewDownloader(nil).DownloadToFile(ctx, server.URL+"/asset.tar.gz", dest)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
