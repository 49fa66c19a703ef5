// Package version reports the build version of the through2 binary.
//
// Values are injected at link time and fall back to the VCS stamps the Go
// toolchain embeds:
//
//	go build -ldflags "-X github.com/kbukum/through2/version.Version=1.0.0" ./cmd/through2
package version
