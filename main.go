package main

import (
	"os"

	"github.com/codalotl/benchrelay/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
