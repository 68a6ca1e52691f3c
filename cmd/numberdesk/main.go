// Command numberdesk browses and edits a spreadsheet of phone number
// records.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/numberdesk/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
