package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List active rules in evaluation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rules, err := cfg.Rules()
		if err != nil {
			return fmt.Errorf("building rules: %w", err)
		}
		for i, name := range rules.Names() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
