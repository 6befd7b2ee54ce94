package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bootstrap/internal/platform"
)

// detectCmd prints the resolved platform tokens.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Print the detected platform",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := platform.Detect()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), info)
		return nil
	},
}

// catalogCmd prints the catalog as it will be applied, placeholders expanded.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the expanded tool catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cat, err := loadCatalog()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cat)
	},
}
