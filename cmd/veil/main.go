package main

import (
	"os"

	"github.com/veil-sh/veil/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
