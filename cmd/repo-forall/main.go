package main

import (
	"fmt"
	"os"

	"github.com/temirov/repoutils/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the standalone repo-forall front end.
func main() {
	if executionError := cli.ExecuteTool(cli.ToolCommandForall); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
