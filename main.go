package main

import (
	"fmt"
	"os"

	"github.com/tyemirov/multigit/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// buildVersion is stamped at link time with -ldflags "-X main.buildVersion=v1.2.3".
var buildVersion string

// main executes the multigit command-line application.
func main() {
	if executionError := cli.Execute(buildVersion); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
