// Sentinel is a network security scanner: it discovers devices on
// configured networks, profiles their services and operating systems,
// checks them against a vulnerability signature catalog, and serves
// the results over a REST API.
package main

import (
	"github.com/sentinelsec/sentinel/internal/api/handlers"
)

// Build information, set by ldflags during build:
//
//	go build -ldflags "-X main.version=... -X main.commit=... -X main.buildTime=..."
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	handlers.SetBuildInfo(version, commit, buildTime)
	Execute()
}
