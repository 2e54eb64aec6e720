package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkingovr/postfilter/internal/filter"
)

var checkExitCode bool

var checkCmd = &cobra.Command{
	Use:   "check [text...]",
	Short: "Check whether a single text is relevant",
	Long: `Evaluate one text and print the decision as JSON. Arguments are joined
with single spaces; use "-" or no arguments to read the text from stdin.`,
	Example: `  postfilter check "Great news! Big launch soon."
  echo "gm #btc #eth #sol #doge" | postfilter check -
  postfilter check -c policy.yaml --exit-code "join t.me/group now"`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkExitCode, "exit-code", false, "exit with status 2 when the text is rejected")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return fmt.Errorf("building rules: %w", err)
	}

	text := strings.Join(args, " ")
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\r\n")
	}

	chain := filter.BuildChain(filter.ChainConfig{Rules: rules, Logger: logger})
	decision, err := chain.Check(cmd.Context(), text, "cli")
	if err != nil {
		return fmt.Errorf("evaluation error: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(decision); err != nil {
		return err
	}

	if checkExitCode && !decision.Relevant() {
		return &ExitError{Code: 2}
	}
	return nil
}
