package checker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	consts "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/constants"
	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

const (
	maxRedirects = 5
	userAgent    = "corscheck/1.0"
)

var errBlockedRedirect = errors.New("redirect to non-http(s) scheme blocked")

// Page is a fetched root page. Body is limited to consts.MaxPageBytes.
type Page struct {
	// FinalURL is the URL after redirects; relative references resolve against it.
	FinalURL *url.URL
	Status   int
	Body     []byte
}

// PageFetcher retrieves the root page markup for discovery.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (Page, error)
}

// HTTPFetcher implements PageFetcher with a plain GET.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPClient returns the client shared by the fetcher and the prober.
// Preflight (OPTIONS) requests never follow redirects.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = consts.DefaultRequestTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: redirectPolicy,
	}
}

func redirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) > 0 && via[0].Method == http.MethodOptions {
		return http.ErrUseLastResponse
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Fetch downloads the page. Transport failures and error statuses both wrap
// ErrPageFetchFailed.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (Page, error) {
	client := f.Client
	if client == nil {
		client = NewHTTPClient(0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: create request: %v", sharedErrors.ErrPageFetchFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", sharedErrors.ErrPageFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return Page{Status: resp.StatusCode}, fmt.Errorf("%w: %w: %s", sharedErrors.ErrPageFetchFailed, sharedErrors.ErrPageStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, consts.MaxPageBytes))
	if err != nil {
		return Page{}, fmt.Errorf("%w: read body: %v", sharedErrors.ErrPageFetchFailed, err)
	}

	final := resp.Request.URL
	if final == nil {
		final = req.URL
	}
	return Page{FinalURL: final, Status: resp.StatusCode, Body: body}, nil
}
