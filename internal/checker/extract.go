package checker

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	consts "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/constants"
	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

// scriptURLPattern finds absolute URL literals in inline script text. It stops
// at whitespace, quotes, brackets, backticks and backslashes.
var scriptURLPattern = regexp.MustCompile("(?i)https?://[^\\s\"'<>()\\[\\]{}`\\\\]+")

// resourceAttrs lists the attributes that may carry a resource reference.
// The value marks list-valued attributes (srcset syntax).
var resourceAttrs = map[string]bool{
	"src":             false,
	"href":            false,
	"data-src":        false,
	"data-href":       false,
	"data-url":        false,
	"data-background": false,
	"poster":          false,
	"action":          false,
	"formaction":      false,
	"srcset":          true,
	"data-srcset":     true,
	"imagesrcset":     true,
}

// ExtractURLs performs a single pass over the markup and returns the sorted,
// deduplicated absolute URLs whose host matches the target pattern. It does no
// network access. On unreadable or oversized input it returns an empty result
// and an error wrapping ErrParseFailed.
func ExtractURLs(body io.Reader, base *url.URL, target Target) ([]string, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: base url is required", sharedErrors.ErrInvalidInput)
	}

	found := make(map[string]struct{})
	add := func(u *url.URL) {
		if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		if !target.matchesParsed(u) {
			return
		}
		found[canonicalURL(u)] = struct{}{}
	}

	z := html.NewTokenizer(body)
	z.SetMaxBuf(consts.MaxTokenBytes)
	var inScript bool

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return sortedKeys(found), nil
			}
			return nil, fmt.Errorf("%w: %v", sharedErrors.ErrParseFailed, z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := z.TagName()
			tag := string(tn)
			switch tag {
			case "script":
				// "<script/>" still switches the tokenizer to raw text.
				inScript = true
			case "noscript":
				// Fallback markup inside noscript carries real references.
				if tt == html.StartTagToken {
					z.NextIsNotRawText()
				}
			}
			for hasAttr {
				key, val, more := z.TagAttr()
				hasAttr = more

				name := string(key)
				listValued, ok := resourceAttrs[name]
				if !ok {
					continue
				}
				if listValued {
					for _, candidate := range splitSrcset(string(val)) {
						add(resolveReference(base, candidate))
					}
					continue
				}
				ref := resolveReference(base, string(val))
				add(ref)
				if tag == "base" && name == "href" && ref != nil {
					base = ref
				}
			}

		case html.TextToken:
			if !inScript {
				continue
			}
			for _, match := range scriptURLPattern.FindAllString(string(z.Text()), -1) {
				if u, err := url.Parse(match); err == nil {
					add(u)
				}
			}

		case html.EndTagToken:
			tn, _ := z.TagName()
			if string(tn) == "script" {
				inScript = false
			}
		}
	}
}

func resolveReference(base *url.URL, raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return nil
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "javascript:"),
		strings.HasPrefix(lower, "data:"),
		strings.HasPrefix(lower, "mailto:"),
		strings.HasPrefix(lower, "tel:"):
		return nil
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return base.ResolveReference(ref)
}

// splitSrcset returns the URL part of every image candidate in a srcset value.
func splitSrcset(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		out = append(out, fields[0])
	}
	return out
}

// canonicalURL is the deduplication key: lowercase scheme and host, no
// fragment, and "/" for an empty path.
func canonicalURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	copy := *u
	copy.Scheme = strings.ToLower(copy.Scheme)
	copy.Host = strings.ToLower(copy.Host)
	copy.Fragment = ""
	copy.RawFragment = ""
	if copy.Path == "" && copy.Opaque == "" {
		copy.Path = "/"
	}
	return copy.String()
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
