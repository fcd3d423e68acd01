package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/circuitsmith/circuitsmith/pkg/catalog"
	"github.com/circuitsmith/circuitsmith/pkg/kicadsym"
	"github.com/circuitsmith/circuitsmith/pkg/schematic"
)

var (
	libPaths    []string
	catalogDir  string
	cdefDir     string
	netCacheDir string
)

var netlistCmd = &cobra.Command{
	Use:   "netlist <circuit_file>",
	Short: "Print the netlist of a saved circuit",
	Long: `Load a saved circuit, rebuild its connection graph and print the
resulting netlist, one net per block with its member pins.`,
	Args: cobra.ExactArgs(1),
	RunE: runNetlist,
}

func init() {
	rootCmd.AddCommand(netlistCmd)
	addCatalogFlags(netlistCmd)
}

func addCatalogFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&libPaths, "lib", nil, "KiCad symbol search path (repeatable)")
	cmd.Flags().StringVar(&catalogDir, "catalog", "", "directory of JSON component definitions")
	cmd.Flags().StringVar(&cdefDir, "cdef", "", "directory of .cdef component definitions")
	cmd.Flags().StringVar(&netCacheDir, "cache-dir", "", "symbol cache directory (empty disables caching)")
}

// buildCatalog assembles the component catalog from every configured
// source.
func buildCatalog() (*catalog.Catalog, error) {
	cat := catalog.New()
	if len(libPaths) > 0 {
		adapter := kicadsym.NewAdapter(libPaths, netCacheDir)
		for _, def := range adapter.LoadComponents() {
			if err := cat.Register(def); err != nil {
				return nil, err
			}
		}
	}
	if catalogDir != "" {
		if _, err := cat.LoadJSONDir(catalogDir); err != nil {
			return nil, fmt.Errorf("error loading catalog: %w", err)
		}
	}
	if cdefDir != "" {
		if _, err := cat.LoadCDefDir(cdefDir); err != nil {
			return nil, fmt.Errorf("error loading catalog: %w", err)
		}
	}
	return cat, nil
}

func loadCircuit(path string) (*schematic.Schematic, error) {
	cat, err := buildCatalog()
	if err != nil {
		return nil, err
	}
	model := schematic.New(cat)
	if err := model.Load(path); err != nil {
		return nil, err
	}
	return model, nil
}

func runNetlist(cmd *cobra.Command, args []string) error {
	model, err := loadCircuit(args[0])
	if err != nil {
		return err
	}
	graph := model.BuildConnectionGraph()
	fmt.Print(graph.GenerateNetlist())

	if unconnected := graph.UnconnectedPins(); len(unconnected) > 0 {
		fmt.Printf("\nUnconnected pins: %d\n", len(unconnected))
		for _, ref := range unconnected {
			fmt.Printf("  - %s\n", ref)
		}
	}
	return nil
}
