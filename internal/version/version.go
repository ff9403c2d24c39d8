package version

import "fmt"

// Tool is the producing-tool name recorded in data set history lines.
const Tool = "tengen"

// Version/Commit can be injected at build time via -ldflags.
var (
	Version = "0.1.0"
	Commit  = "dev"
)

// Full returns the version string printed by the CLI.
func Full() string {
	return fmt.Sprintf("%s %s (%s)", Tool, Version, Commit)
}
