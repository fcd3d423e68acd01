package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/circuitsmith/circuitsmith/pkg/catalog"
	"github.com/circuitsmith/circuitsmith/pkg/circuit"
	"github.com/circuitsmith/circuitsmith/pkg/kicadsym"
)

var libCacheDir string

var libCmd = &cobra.Command{
	Use:   "lib",
	Short: "Symbol library operations",
	Long:  `Commands for working with KiCad symbol libraries (.kicad_sym) and catalog files`,
}

var libInfoCmd = &cobra.Command{
	Use:   "info <search_path>...",
	Short: "Summarize the component catalog built from the given paths",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLibInfo,
}

var libDumpCmd = &cobra.Command{
	Use:   "dump <library_file>",
	Short: "Dump every component parsed from a single symbol library",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibDump,
}

func init() {
	rootCmd.AddCommand(libCmd)
	libCmd.AddCommand(libInfoCmd)
	libCmd.AddCommand(libDumpCmd)
	libInfoCmd.Flags().StringVar(&libCacheDir, "cache-dir", "", "symbol cache directory (empty disables caching)")
}

func runLibInfo(cmd *cobra.Command, args []string) error {
	adapter := kicadsym.NewAdapter(args, libCacheDir)
	cat := catalog.New()
	for _, def := range adapter.LoadComponents() {
		if err := cat.Register(def); err != nil {
			return err
		}
	}

	fmt.Printf("Components: %d\n", cat.Len())
	fmt.Println()

	// Group by component type
	byType := make(map[circuit.ComponentType][]string)
	for _, def := range cat.All() {
		byType[def.Type] = append(byType[def.Type], def.Name)
	}
	var types []string
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		names := byType[circuit.ComponentType(t)]
		sort.Strings(names)
		fmt.Printf("  %s (%d):\n", t, len(names))
		for _, name := range names {
			fmt.Printf("    %s\n", name)
		}
	}
	return nil
}

func runLibDump(cmd *cobra.Command, args []string) error {
	defs, err := kicadsym.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing library: %w", err)
	}

	for _, def := range defs {
		fmt.Printf("Component: %s\n", def.Name)
		fmt.Printf("  ID: %s\n", def.ID)
		fmt.Printf("  Type: %s\n", def.Type)
		fmt.Printf("  Size: %.1f x %.1f\n", def.Width, def.Height)
		if def.Description != "" {
			fmt.Printf("  Description: %s\n", def.Description)
		}
		if def.DatasheetURL != "" {
			fmt.Printf("  Datasheet: %s\n", def.DatasheetURL)
		}
		fmt.Printf("  Pins (%d):\n", len(def.Pins))
		for _, pin := range def.Pins {
			fmt.Printf("    %-8s %-10s (%.1f, %.1f)  %s\n",
				pin.ID, pin.Type, pin.Position.X, pin.Position.Y, pin.Label)
		}
		fmt.Printf("  Graphics: %d\n", len(def.Graphics))
		fmt.Println()
	}
	return nil
}
