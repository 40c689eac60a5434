package main

import (
	"fmt"
	"os"

	"github.com/temirov/repoutils/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the standalone repo-status front end.
func main() {
	if executionError := cli.ExecuteTool(cli.ToolCommandStatus); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
