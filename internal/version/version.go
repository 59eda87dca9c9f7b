// Package version carries the build-stamped engine version.
package version

// Version is set at build time via -ldflags. The plan manifest records it,
// so builds with different versions never share a plan fingerprint.
var Version = "dev"
