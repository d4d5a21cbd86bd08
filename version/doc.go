// Package version carries speechkit build information.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/speechkit/version.Version=1.0.0"
package version
