// Package version holds the build version, set at link time:
//
//	go build -ldflags "-X github.com/ndewijer/Investment-Risk-Analyzer/internal/version.Version=1.2.0"
package version

// Version is the application version.
var Version = "dev"
