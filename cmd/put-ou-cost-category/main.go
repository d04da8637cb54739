package main

import (
	"os"

	"github.com/shu85t/PutOuCostCategory/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
