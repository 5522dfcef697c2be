package main

import (
	"os"

	"github.com/kunkun/tpsgen/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
