// Package constants centralizes configuration defaults shared across the CLI.
//
// The page under test, the expected origin, the dependency host and the
// timing knobs of both verification paths live here so cmd/ and internal/
// reference one value without introducing import cycles.
package constants
