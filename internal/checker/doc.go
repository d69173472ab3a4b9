// Package checker decides whether a cross-origin dependency grants CORS access
// to a site's origin.
//
// Architecture overview:
//
//   - Backends implement the Backend interface (Observe + Name). StaticChecker
//     fetches the page, extracts dependency URLs with ExtractURLs and probes each
//     one with a Prober (preflight, then GET fallback). LiveObserver loads the
//     page through a browser Session and records the dependency traffic the
//     browser produced.
//   - Runner coordinates concurrent probes with a bounded worker pool and an
//     optional global rate limit.
//   - RetryPolicy wraps page navigation with a fixed number of attempts and a
//     fixed delay. Only the successful attempt contributes to the result.
//   - Aggregator turns an Observation into a single PASS/FAIL Verdict with
//     per-URL detail sorted by URL.
//
// Browser sessions live in internal/browser; this package only knows the
// Session and Launcher contracts.
package checker
