package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/reclaim-cli/reclaim/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, cmd.ErrPartial) {
			os.Exit(3)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
