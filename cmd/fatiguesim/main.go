// Command fatiguesim is a thin demonstrator CLI around the fatigue-simulation
// core: it loads a roster and an airport reference table from disk, runs an
// analysis under a chosen parameter preset, and writes the result as JSON.
// The core package itself knows nothing about files, flags, or logging; all
// of that lives here.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "fatiguesim",
		Short:   "Pilot fatigue simulation and EASA rest-compliance analyzer",
		Version: version,
	}

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newPresetsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
