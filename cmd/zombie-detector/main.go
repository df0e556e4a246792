// Package main is the entry point for the zombie detector.
package main

import (
	"zombie-detector/cmd/zombie-detector/cmd"
)

// Version information, injected at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cmd.Version = Version
	cmd.BuildTime = BuildTime
	cmd.GitCommit = GitCommit
	cmd.Execute()
}
