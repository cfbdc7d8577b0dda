// Command beryl is the CLI driver for the runtime: run a script file, or
// drop into a REPL.
package main

import (
	"fmt"
	"os"

	"github.com/karlandr1/beryl-go/cmd/beryl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
