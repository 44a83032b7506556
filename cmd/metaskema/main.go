package main

import (
	"os"

	"github.com/reoring/metaskema/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
