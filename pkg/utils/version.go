// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

import "fmt"

// Build information, set through -ldflags at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// BuildInfo describes the running binary on one line.
func BuildInfo() string {
	return fmt.Sprintf("soapy %s (%s, built %s)", Version, ShortHash(Sha), Buildtime)
}
