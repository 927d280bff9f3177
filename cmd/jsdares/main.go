// Command jsdares runs Lua canvas programs against scripted input, records
// and replays their event logs, and maps canvas pixels back to source.
package main

import (
	"fmt"
	"os"

	"github.com/stjordanis/jsdares/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
