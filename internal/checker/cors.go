package checker

import (
	"net/http"
	"strings"
)

const (
	headerOrigin         = "Origin"
	headerAllowOrigin    = "Access-Control-Allow-Origin"
	headerAllowHeaders   = "Access-Control-Allow-Headers"
	headerRequestMethod  = "Access-Control-Request-Method"
	headerRequestHeaders = "Access-Control-Request-Headers"
)

// CORSHeaders are the response fields the verdict depends on.
type CORSHeaders struct {
	AllowOrigin  string
	AllowHeaders string
	// HasAllowOrigin distinguishes an absent field from an empty one.
	HasAllowOrigin bool
}

// ReadCORSHeaders extracts the allow-origin and allow-headers fields.
func ReadCORSHeaders(h http.Header) CORSHeaders {
	if h == nil {
		return CORSHeaders{}
	}
	values, ok := h[http.CanonicalHeaderKey(headerAllowOrigin)]
	return CORSHeaders{
		AllowOrigin:    strings.TrimSpace(strings.Join(values, ",")),
		AllowHeaders:   strings.TrimSpace(h.Get(headerAllowHeaders)),
		HasAllowOrigin: ok,
	}
}

// AllowsOrigin reports whether an allow-origin value grants access to origin.
// Only an exact match or the wildcard counts; lists and "null" do not.
func AllowsOrigin(allowOrigin, origin string) bool {
	if allowOrigin == "*" {
		return true
	}
	return allowOrigin != "" && allowOrigin == origin
}

// denialReason classifies a completed probe that did not grant access.
func denialReason(h CORSHeaders) Reason {
	if !h.HasAllowOrigin || h.AllowOrigin == "" {
		return ReasonHeaderMissing
	}
	return ReasonOriginMismatch
}
