// ABOUTME: Entry point for the rapport CLI, TUI, and MCP server
// ABOUTME: Version metadata is injected at build time with -ldflags
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/rapport/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
