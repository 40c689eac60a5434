package main

import (
	"fmt"
	"os"

	"github.com/temirov/repoutils/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the standalone repo-restore front end.
func main() {
	if executionError := cli.ExecuteTool(cli.ToolCommandRestore); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
