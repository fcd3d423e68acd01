package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "circuitsmith",
	Short: "CircuitSmith - Arduino circuit design tools",
	Long: `CircuitSmith provides command-line access to the circuit design core:
  - KiCad symbol library parsing and component catalogs
  - Netlist generation from saved circuits
  - Electrical rule checks (ERC)

Examples:
  circuitsmith lib info ./symbols            # Summarize symbol libraries
  circuitsmith lib dump device.kicad_sym     # Dump parsed components
  circuitsmith netlist circuit.json          # Print the netlist
  circuitsmith erc circuit.json              # Run electrical rule checks`,
	Version: "0.3.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
