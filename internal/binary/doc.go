// Package binary provisions the boj-mcp-server binary into a local cache.
//
// # Security Model
//
// Every archive is checked against the release's SHA256SUMS manifest before
// it is unpacked; nothing unverified is ever extracted. When a public keyring
// is configured, the manifest itself must carry a valid detached OpenPGP
// signature (SHA256SUMS.asc).
//
// # Cache layout
//
//	<cacheRoot>/<version>/<triple>/<binaryName>
//	<cacheRoot>/<version>/<triple>.lock            while installing
//	<cacheRoot>/<version>/<triple>.tmp-<pid>-...   staging, per attempt
//
// A slot is published by renaming a fully prepared staging directory into
// place, so a concurrent reader either sees no binary or a complete one.
//
// # Architecture
//
//   - ResolveTarget: (GOOS, GOARCH) to release triple and binary name
//   - BuildRelease: deterministic release URLs
//   - ParseManifest / DigestFile / VerifyFile: SHA-256 checks
//   - VerifyManifestSignature: optional OpenPGP check of the manifest
//   - Downloader: HTTP fetches, no retries
//   - ExtractTarGz: bounded, traversal-safe tar.gz unpacking
//   - Installer: lock, download, verify, unpack and publish
package binary
