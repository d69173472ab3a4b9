package constants

import (
	"io/fs"
	"time"
)

// DefaultDirPerm is the default permission used when creating directories.
const DefaultDirPerm fs.FileMode = 0o755

// Run defaults for the marketing site and its CMS dependency.
const (
	DefaultPageURL    = "https://my.hiredly.com/about-us"
	DefaultOrigin     = "https://my.hiredly.com"
	DefaultTargetHost = "cms.hiredly.com"
)

const (
	// DefaultRequestTimeout bounds every single HTTP request of the static path.
	DefaultRequestTimeout = 15 * time.Second
	// DefaultProbeHeader is the representative custom header announced in preflights.
	DefaultProbeHeader = "content-type"
	// MaxPageBytes caps how much of the root page body is read for discovery.
	MaxPageBytes = 10 << 20
	// MaxTokenBytes caps a single markup token (large inline scripts included).
	MaxTokenBytes = 8 << 20
)

const (
	// DefaultNavigationAttempts is the bound of the page-load retry loop.
	DefaultNavigationAttempts = 3
	// DefaultRetryDelay is the fixed pause between navigation attempts.
	DefaultRetryDelay = 3 * time.Second
	// DefaultNavigationTimeout bounds a single navigation attempt.
	DefaultNavigationTimeout = 60 * time.Second
	// DefaultQuiescence is how long observation stays open after load.
	DefaultQuiescence = 2 * time.Second
)

// CORSBlockedPhrase is the fragment browsers emit when CORS enforcement blocks a request.
const CORSBlockedPhrase = "blocked by CORS policy"
