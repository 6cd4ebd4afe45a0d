package binary

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedTarget     = errors.New("unsupported platform/arch combination")
	ErrChecksumEntryMissing  = errors.New("checksum entry not found")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrArchiveContentMissing = errors.New("archive did not contain expected binary")
	ErrSignatureInvalid      = errors.New("checksum manifest signature verification failed")
)

// UnsupportedTargetError reports an (os, arch) pair outside the support table.
type UnsupportedTargetError struct {
	OS        string
	Arch      string
	Supported []string
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("%s: %s/%s. supported combinations: %s",
		ErrUnsupportedTarget, e.OS, e.Arch, strings.Join(e.Supported, ", "))
}

// Is makes errors.Is(err, ErrUnsupportedTarget) match.
func (e *UnsupportedTargetError) Is(target error) bool {
	return target == ErrUnsupportedTarget
}

// HTTPStatusError is returned for a non-2xx response.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("failed to download %s: HTTP %d", e.URL, e.StatusCode)
}
