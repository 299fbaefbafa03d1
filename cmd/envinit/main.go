// envinit - Schema-Driven Config Validation
// Source: https://github.com/ariel-frischer/envinit

package main

import (
	"os"

	"github.com/ariel-frischer/envinit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
