// Command extentctl is a local demonstration client for the extentvol
// extent-map core. It wires pkg/extentmap against the in-memory reference
// volume.Allocator and volume.Store from pkg/volume/memory and drives the
// four extent-map primitives from the command line.
package main

import (
	"os"

	"github.com/marmos91/extentvol/cmd/extentctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("%v", err)
		os.Exit(1)
	}
}
