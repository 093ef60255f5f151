package main

import (
	"fmt"
	"os"

	"subboard/internal/cli"
	"subboard/internal/cmd"
)

func main() {
	cli.LoadEnvFile()
	if err := cmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
