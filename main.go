// Command dux reports filesystem and directory usage.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/dux/internal/cli"
)

//nolint:gochecknoglobals // Set at build time
var version = "unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
