package main

import (
	"os"

	"github.com/codemap-dev/codemap/cmd/codemap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
