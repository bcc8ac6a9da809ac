// cmd/poegate/main.go
package main

import (
	cmd "github.com/poegate/poegate/internal/cli"
)

// Build metadata, overridden at release time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Seams for the wiring test.
var (
	setVersionInfo = cmd.SetVersionInfo
	executeCmd     = cmd.Execute
)

// main starts the poegate CLI application by delegating to the
// cobra root command defined in the cli package. It does not
// take any arguments and does not return a value.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
