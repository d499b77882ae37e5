// Command rksledger is the command line interface to the membership ledger.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/rksledger/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
