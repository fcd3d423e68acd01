package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
)

var ercCmd = &cobra.Command{
	Use:   "erc <circuit_file>",
	Short: "Run electrical rule checks on a saved circuit",
	Long: `Load a saved circuit and run every electrical rule check. The command
exits non-zero when any error-severity finding is reported; warnings are
printed but do not fail the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runERC,
}

func init() {
	rootCmd.AddCommand(ercCmd)
	addCatalogFlags(ercCmd)
}

func runERC(cmd *cobra.Command, args []string) error {
	model, err := loadCircuit(args[0])
	if err != nil {
		return err
	}

	valid, diags := model.Validate()
	if len(diags) == 0 {
		fmt.Println("ERC: no findings")
		return nil
	}

	errors := 0
	for _, d := range diags {
		ctx := ""
		if d.RelatedNet != "" {
			ctx = " net=" + d.RelatedNet
		}
		if d.RelatedComponent != "" {
			ctx += " component=" + d.RelatedComponent
		}
		fmt.Printf("[%s] %s: %s%s\n", d.Severity, d.Code, d.Message, ctx)
		if d.Severity == circuit.SeverityError {
			errors++
		}
	}
	fmt.Printf("\nERC: %d findings (%d errors)\n", len(diags), errors)

	if !valid {
		return fmt.Errorf("ERC failed with %d errors", errors)
	}
	return nil
}
