package main

import (
	"fmt"

	"github.com/rayference/tengen/internal/version"
)

// printVersion prints the injected version and commit.
func printVersion() {
	fmt.Fprintln(stdOut, version.Full())
}
