// The main package for the markerctl executable.
package main

import (
	"github.com/datapipe-tools/markerstore/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
