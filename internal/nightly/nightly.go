// Package nightly resolves the download link for the latest Firefox nightly
// build by scraping the mozilla.org directory listing for the archive that
// matches the running platform.
package nightly

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/heavyprofile/hprofile/internal/platform"
)

const (
	// DefaultBaseURL is the host serving nightly builds.
	DefaultBaseURL = "https://ftp.mozilla.org"

	// DefaultListingPath is the directory listing of the latest
	// mozilla-central nightly.
	DefaultListingPath = "/pub/firefox/nightly/latest-mozilla-central/"

	// DefaultTimeout bounds the listing request.
	DefaultTimeout = 30 * time.Second
)

// NotFoundError reports that the listing held no archive for the platform.
type NotFoundError struct {
	Suffix string
	URL    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no archive ending in %q at %s", e.Suffix, e.URL)
}

// Resolver locates nightly build archives.
type Resolver struct {
	client  *http.Client
	baseURL string
	listing string
}

// Config carries optional Resolver settings. Zero values select defaults.
type Config struct {
	Client      *http.Client
	BaseURL     string
	ListingPath string
}

// New creates a Resolver with defaults applied.
func New(cfg Config) *Resolver {
	r := &Resolver{
		client:  cfg.Client,
		baseURL: cfg.BaseURL,
		listing: cfg.ListingPath,
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: DefaultTimeout}
	}
	if r.baseURL == "" {
		r.baseURL = DefaultBaseURL
	}
	if r.listing == "" {
		r.listing = DefaultListingPath
	}
	return r
}

// DownloadLink fetches the directory listing and returns the absolute URL of
// the first archive whose name matches the platform's archive suffix.
func (r *Resolver) DownloadLink(ctx context.Context, info *platform.Info) (string, error) {
	suffix, err := platform.ArchiveSuffix(info)
	if err != nil {
		return "", err
	}

	listingURL := r.baseURL + r.listing
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return "", fmt.Errorf("build listing request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch listing %s: unexpected status %s", listingURL, resp.Status)
	}

	href, err := findArchiveHref(resp.Body, suffix)
	if err != nil {
		return "", err
	}
	if href == "" {
		return "", &NotFoundError{Suffix: suffix, URL: listingURL}
	}

	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href, nil
	}
	return r.baseURL + href, nil
}

// findArchiveHref streams through the anchor tags of an HTML document and
// returns the first href ending in suffix, or "" when none matches.
func findArchiveHref(body io.Reader, suffix string) (string, error) {
	tokenizer := html.NewTokenizer(body)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return "", fmt.Errorf("parse listing: %w", err)
			}
			return "", nil
		case html.StartTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key == "href" && strings.HasSuffix(attr.Val, suffix) {
					return attr.Val, nil
				}
			}
		}
	}
}
