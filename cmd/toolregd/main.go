// Command toolregd serves the demo tool catalog over HTTP or MCP and inspects it from the
// command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
