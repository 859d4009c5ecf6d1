// Package version exposes the build version of rchttp and the default
// User-Agent the HTTP client sends.
//
// Version, git commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/rchttp/version.Version=1.0.0"
package version
