package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "boj-launcher/1.0"
	// maxManifestSize bounds text fetches (manifests, signatures).
	maxManifestSize = 1 << 20
)

// Fetcher retrieves release files. The Installer depends on this interface so
// transports can be swapped or counted in tests.
type Fetcher interface {
	// FetchText returns the body of url as text.
	FetchText(ctx context.Context, url string) (string, error)
	// DownloadToFile streams the body of url into destPath.
	DownloadToFile(ctx context.Context, url, destPath string) error
}

// Downloader is the HTTP Fetcher. It does not retry; retry policy belongs
// to whoever invoked the launcher.
type Downloader struct {
	client    *http.Client
	userAgent string
}

// NewDownloader creates a new downloader. A nil client gets a default with
// DefaultTimeout and a ten-redirect limit.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}

	return &Downloader{
		client:    client,
		userAgent: DefaultUserAgent,
	}
}

// get issues a GET and returns the response if the status is 2xx.
func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return resp, nil
}

// FetchText downloads a small text document such as a checksum manifest.
func (d *Downloader) FetchText(ctx context.Context, url string) (string, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize+1))
	if err != nil {
		return "", fmt.Errorf("read response body from %s: %w", url, err)
	}
	if len(body) > maxManifestSize {
		return "", fmt.Errorf("response from %s exceeds %d bytes", url, maxManifestSize)
	}

	return string(body), nil
}

// DownloadToFile streams url into destPath. The body is written to a
// "<destPath>.part" sibling first and renamed on success, so destPath never
// holds a truncated download.
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) (err error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	partPath := destPath + ".part"
	part, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(partPath), err)
	}
	defer func() {
		if err != nil {
			part.Close()
			os.Remove(partPath)
		}
	}()

	if _, err = io.Copy(part, resp.Body); err != nil {
		return fmt.Errorf("read body of %s: %w", url, err)
	}
	if err = part.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(partPath), err)
	}
	if err = os.Rename(partPath, destPath); err != nil {
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}
