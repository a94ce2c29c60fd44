package main

import (
	"os"

	"github.com/dgb173/Masivo/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
