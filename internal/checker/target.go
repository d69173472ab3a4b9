package checker

import (
	"fmt"
	"net/url"
	"strings"

	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

// Target is the immutable configuration of one verification run.
type Target struct {
	PageURL     string // page whose dependency references are verified
	Origin      string // caller identity sent in the Origin header
	HostPattern string // substring identifying the dependency host
}

// NewTarget normalizes and validates the run configuration.
// The page URL may omit its scheme; https is assumed.
func NewTarget(pageURL, origin, hostPattern string) (Target, error) {
	t := Target{
		PageURL:     NormalizePageURL(pageURL),
		Origin:      strings.TrimRight(strings.TrimSpace(origin), "/"),
		HostPattern: strings.ToLower(strings.TrimSpace(hostPattern)),
	}
	return t, t.Validate()
}

// Validate reports whether every field is usable.
func (t Target) Validate() error {
	if t.PageURL == "" {
		return fmt.Errorf("%w: page url", sharedErrors.ErrMissingRequired)
	}
	u, err := url.Parse(t.PageURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: page url %q must be an absolute http(s) URL", sharedErrors.ErrInvalidInput, t.PageURL)
	}
	if t.Origin == "" {
		return fmt.Errorf("%w: origin", sharedErrors.ErrMissingRequired)
	}
	o, err := url.Parse(t.Origin)
	if err != nil || o.Host == "" || o.Path != "" || o.RawQuery != "" {
		return fmt.Errorf("%w: origin %q must be scheme://host[:port]", sharedErrors.ErrInvalidInput, t.Origin)
	}
	if t.HostPattern == "" {
		return fmt.Errorf("%w: target host", sharedErrors.ErrMissingRequired)
	}
	return nil
}

// MatchesHost reports whether the host of rawURL contains the pattern.
func (t Target) MatchesHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return t.matchesParsed(u)
}

func (t Target) matchesParsed(u *url.URL) bool {
	if u == nil || u.Hostname() == "" || t.HostPattern == "" {
		return false
	}
	return strings.Contains(strings.ToLower(u.Hostname()), t.HostPattern)
}

// MatchesText reports whether free text (an event URL or a console message)
// mentions the dependency.
func (t Target) MatchesText(text string) bool {
	if t.HostPattern == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), t.HostPattern)
}

// NormalizePageURL accepts the usual operator input formats:
//   - my.example.com/about
//   - https://my.example.com/about
//   - http://localhost:8080/
func NormalizePageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	// A missing scheme or a "scheme" that is really a host (contains dots)
	// means the operator typed a bare host.
	if err != nil || parsed.Scheme == "" || strings.Contains(parsed.Scheme, ".") || parsed.Host == "" {
		parsed, err = url.Parse("https://" + strings.TrimPrefix(raw, "//"))
		if err != nil {
			return raw
		}
	}
	return parsed.String()
}
