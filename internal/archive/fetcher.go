// Package archive downloads browser build artifacts and establishes trust in
// them before they are used.
//
// Fetching and trust are split in two composable layers. Fetch gets bytes
// onto disk safely: it probes for existence, reuses verified local copies,
// streams the download in bounded chunks, and compares the result against the
// server-published checksum companion. Verify is the authority check for
// files already on disk: it matches the full checksum companion byte for byte
// and then validates the cryptographic signature over the checksum.
package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/heavyprofile/hprofile/internal/signing"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 5 * time.Minute
	// DefaultChunkSize is the download read chunk size.
	DefaultChunkSize = 1024
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "hprofile/1.0"

	// ChecksumSuffix locates the checksum companion of an artifact URL or
	// path. The companion holds the hex SHA-256 of the artifact bytes.
	ChecksumSuffix = ".sha256"
)

// Fetcher downloads artifacts over HTTP(S).
//
// A Fetcher performs no internal retries: every failure surfaces to the
// caller, which owns the retry and backoff policy. Concurrent fetches of the
// same target are likewise a caller concern (see internal/lock).
type Fetcher struct {
	client    *http.Client
	sink      StatusSink
	chunkSize int
	userAgent string
}

// Config holds construction options for a Fetcher. Zero values get defaults.
type Config struct {
	// Sink receives status messages and progress. Defaults to a no-op sink.
	Sink StatusSink
	// ChunkSize is the streaming read size in bytes.
	ChunkSize int
	// Timeout bounds each HTTP request end to end.
	Timeout time.Duration
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Sink == nil {
		cfg.Sink = nopSink{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		sink:      cfg.Sink,
		chunkSize: cfg.ChunkSize,
		userAgent: cfg.UserAgent,
	}
}

// FetchOptions controls a single Fetch call.
type FetchOptions struct {
	// Target is the local destination path. Empty derives the path from the
	// final URL segment, in the working directory.
	Target string
	// VerifyChecksum requires a checksum companion at url+ChecksumSuffix and
	// refuses to hand back bytes that do not match it.
	VerifyChecksum bool
}

// Fetch ensures a local file exists for the artifact at rawURL and returns
// its path.
//
// The remote resource is probed first; a missing artifact fails with
// *NotFoundError before any download. An existing local target is reused
// outright when VerifyChecksum is off, or after a cheap checksum comparison
// when it is on. Otherwise the artifact is streamed down in bounded chunks
// with progress reported through the status sink, and the result is checked
// against the expected checksum. A mismatch fails with *IntegrityError and
// leaves the corrupt file in place for inspection.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts FetchOptions) (string, error) {
	f.sink.Msg(fmt.Sprintf("Check if %s exists", rawURL))
	if err := f.probe(ctx, rawURL); err != nil {
		return "", err
	}

	target := opts.Target
	if target == "" {
		target, _ = TargetFromURL(rawURL)
	}
	if target == "" {
		return "", fmt.Errorf("cannot derive target path from %s", rawURL)
	}

	var expected string
	if opts.VerifyChecksum {
		// Fetched up front: a missing companion must fail the call rather
		// than silently downgrade to an unverified download.
		var err error
		expected, err = f.fetchCompanion(ctx, rawURL+ChecksumSuffix)
		if err != nil {
			return "", err
		}
	}

	if fileExists(target) {
		if !opts.VerifyChecksum {
			return target, nil
		}
		actual, err := signing.FileChecksum(target)
		if err == nil && actual == expected {
			f.sink.Msg("Already downloaded")
			if err := writeChecksumCompanion(target, expected); err != nil {
				return "", err
			}
			return target, nil
		}
	}

	f.sink.Msg(fmt.Sprintf("Downloading %s", rawURL))
	if err := f.download(ctx, rawURL, target); err != nil {
		return "", err
	}

	if opts.VerifyChecksum {
		actual, err := signing.FileChecksum(target)
		if err != nil {
			return "", &ArchiveError{Path: target, Err: err}
		}
		if actual != expected {
			f.sink.Msg("Bad checksum!")
			return "", &IntegrityError{Path: target, Expected: expected, Actual: actual}
		}
		// Persist the companion so later Verify calls can re-check the
		// artifact without the server.
		if err := writeChecksumCompanion(target, expected); err != nil {
			return "", err
		}
	}

	return target, nil
}

// FetchSignature downloads the detached signature companion of rawURL and
// writes it to target+signing.SignatureSuffix, overwriting any previous copy
// so the signature on disk always corresponds to the artifact last fetched
// from rawURL. A missing remote signature is a *NotFoundError.
func (f *Fetcher) FetchSignature(ctx context.Context, rawURL, target string) error {
	signature, err := f.fetchCompanion(ctx, rawURL+signing.SignatureSuffix)
	if err != nil {
		return err
	}
	if err := os.WriteFile(target+signing.SignatureSuffix, []byte(signature), 0644); err != nil {
		return fmt.Errorf("write signature companion: %w", err)
	}
	return nil
}

// probe issues a metadata-only request for the artifact.
func (f *Fetcher) probe(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.sink.Msg(fmt.Sprintf("Cannot find %s", rawURL))
		return &NotFoundError{URL: rawURL}
	}

	return nil
}

// fetchCompanion retrieves a small companion file. The full response body is
// the companion's value, verbatim: no trimming, no parsing.
func (f *Fetcher) fetchCompanion(ctx context.Context, companionURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, companionURL, nil)
	if err != nil {
		return "", fmt.Errorf("create companion request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch companion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &NotFoundError{URL: companionURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read companion: %w", err)
	}

	return string(body), nil
}

// writeChecksumCompanion persists the expected checksum next to the artifact
// so the on-disk pair is self-contained for later verification.
func writeChecksumCompanion(target, expected string) error {
	if err := os.WriteFile(target+ChecksumSuffix, []byte(expected), 0644); err != nil {
		return fmt.Errorf("write checksum companion: %w", err)
	}
	return nil
}

// download streams the artifact to destPath in bounded chunks, reporting
// fractional progress after every chunk. The body is written through a
// temporary file and renamed into place once complete.
func (f *Fetcher) download(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dest dir: %w", err)
		}
	}

	tmpPath := destPath + ".part"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	// ContentLength is -1 when undeclared, which matches UnknownTotal:
	// progress degrades to "unknown total" but the download proceeds.
	total := resp.ContentLength

	buf := make([]byte, f.chunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			// os.File writes are unbuffered, so each chunk reaches the
			// kernel before the next read.
			if _, err := tmpFile.Write(buf[:n]); err != nil {
				return fmt.Errorf("write chunk: %w", err)
			}
			written += int64(n)
			f.sink.Progress(written, total)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read response body: %w", readErr)
		}
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

// TargetFromURL derives a local file name from the final URL path segment,
// ignoring any query string or fragment. Callers that need the destination
// before Fetch (to place a lock, or to prefix a cache directory) use this so
// their path always agrees with the one Fetch would derive.
func TargetFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return "", fmt.Errorf("no file name in %s", rawURL)
	}
	return base, nil
}

// fileExists checks if a file exists and is not empty.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
