package checker

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"testing/iotest"

	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func extractTarget() Target {
	return Target{
		PageURL:     "https://my.example.com/about-us",
		Origin:      "https://my.example.com",
		HostPattern: "cms.example.com",
	}
}

func TestExtractURLs_Attributes(t *testing.T) {
	page := `<html><head>
<link data-href="https://cms.example.com">
<script>var u = "https://cms.example.com/api/v1?x=1"; fetch('https://elsewhere.com/y')</script>
</head><body>
<img src="https://cms.example.com/a.png">
<a href="https://CMS.Example.com/b#frag">b</a>
<div data-src="//cms.example.com/c.js"></div>
<img src="https://other.example.com/x.png">
<img srcset="https://cms.example.com/s1.png 1x, https://cms.example.com/s2.png 2x">
<a href="mailto:me@cms.example.com">mail</a>
<a href="javascript:void(0)">noop</a>
<img src="/local.png">
</body></html>`

	got, err := ExtractURLs(strings.NewReader(page), mustParseURL("https://my.example.com/about-us"), extractTarget())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"https://cms.example.com/",
		"https://cms.example.com/a.png",
		"https://cms.example.com/api/v1?x=1",
		"https://cms.example.com/b",
		"https://cms.example.com/c.js",
		"https://cms.example.com/s1.png",
		"https://cms.example.com/s2.png",
	}
	assertURLs(t, got, want)
}

func TestExtractURLs_Deduplicates(t *testing.T) {
	page := `<img src="https://cms.example.com/a.png#one"><img src="https://cms.example.com/a.png#two">
<script>load("https://cms.example.com/a.png")</script>`

	got, err := ExtractURLs(strings.NewReader(page), mustParseURL("https://my.example.com/"), extractTarget())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertURLs(t, got, []string{"https://cms.example.com/a.png"})
}

func TestExtractURLs_BaseHref(t *testing.T) {
	page := `<head><base href="https://cms.example.com/assets/"></head><body><img src="logo.png"></body>`

	got, err := ExtractURLs(strings.NewReader(page), mustParseURL("https://my.example.com/about-us"), extractTarget())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertURLs(t, got, []string{
		"https://cms.example.com/assets/",
		"https://cms.example.com/assets/logo.png",
	})
}

func TestExtractURLs_ScriptText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "uppercase scheme",
			html: `<script>const a = 'HTTPS://CMS.EXAMPLE.COM/Up';</script>`,
			want: []string{"https://cms.example.com/Up"},
		},
		{
			name: "stops at brackets",
			html: "<script>x = [`https://cms.example.com/list`](https://cms.example.com/paren)</script>",
			want: []string{"https://cms.example.com/list", "https://cms.example.com/paren"},
		},
		{
			name: "text outside script ignored",
			html: `<p>see https://cms.example.com/text</p>`,
			want: []string{},
		},
		{
			name: "no matches",
			html: `<script>console.log("https://other.example.net/a")</script>`,
			want: []string{},
		},
	}

	base := mustParseURL("https://my.example.com/")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractURLs(strings.NewReader(tt.html), base, extractTarget())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertURLs(t, got, tt.want)
		})
	}
}

func TestExtractURLs_RawTextElements(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "noscript fallback image",
			html: `<noscript><img src="https://cms.example.com/uploads/hero.jpg"></noscript>`,
			want: []string{"https://cms.example.com/uploads/hero.jpg"},
		},
		{
			name: "noscript tracking pixel and link",
			html: `<noscript><img height="1" src="https://cms.example.com/px?id=7"><a href="https://cms.example.com/plain">plain</a></noscript><img src="https://cms.example.com/after.png">`,
			want: []string{"https://cms.example.com/after.png", "https://cms.example.com/plain", "https://cms.example.com/px?id=7"},
		},
		{
			name: "self-closing script",
			html: `<script/>var a = "https://cms.example.com/api/posts";</script><p>https://cms.example.com/not-script</p>`,
			want: []string{"https://cms.example.com/api/posts"},
		},
		{
			name: "noscript then self-closing script",
			html: `<noscript><img src="https://cms.example.com/uploads/hero.jpg"></noscript><script/>var a = "https://cms.example.com/api/posts";</script>`,
			want: []string{"https://cms.example.com/api/posts", "https://cms.example.com/uploads/hero.jpg"},
		},
		{
			name: "style text ignored",
			html: `<style>body { background: url(https://cms.example.com/bg.png) }</style>`,
			want: []string{},
		},
	}

	base := mustParseURL("https://my.example.com/")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractURLs(strings.NewReader(tt.html), base, extractTarget())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertURLs(t, got, tt.want)
		})
	}
}

func TestExtractURLs_Empty(t *testing.T) {
	got, err := ExtractURLs(strings.NewReader(""), mustParseURL("https://my.example.com/"), extractTarget())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no urls, got %v", got)
	}
}

func TestExtractURLs_ReadError(t *testing.T) {
	got, err := ExtractURLs(iotest.ErrReader(errors.New("boom")), mustParseURL("https://my.example.com/"), extractTarget())
	if !errors.Is(err, sharedErrors.ErrParseFailed) {
		t.Fatalf("expected ErrParseFailed, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result on failure, got %v", got)
	}
}

func TestExtractURLs_NilBase(t *testing.T) {
	if _, err := ExtractURLs(strings.NewReader(""), nil, extractTarget()); !errors.Is(err, sharedErrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://CMS.example.com", "https://cms.example.com/"},
		{"HTTPS://cms.example.com/a#frag", "https://cms.example.com/a"},
		{"https://cms.example.com/A/B?q=1", "https://cms.example.com/A/B?q=1"},
		{"http://cms.example.com:8080", "http://cms.example.com:8080/"},
	}

	for _, tt := range tests {
		if got := canonicalURL(mustParseURL(tt.in)); got != tt.want {
			t.Errorf("canonicalURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitSrcset(t *testing.T) {
	got := splitSrcset(" a.png 1x,b.png  2x , ,c.png")
	want := []string{"a.png", "b.png", "c.png"}
	assertURLs(t, got, want)
}

func assertURLs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d urls, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("url %d mismatch: want %s, got %s", i, want[i], got[i])
		}
	}
}
