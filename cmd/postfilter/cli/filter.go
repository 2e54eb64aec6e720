package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/tkingovr/postfilter/internal/audit"
	"github.com/tkingovr/postfilter/internal/filter"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

var (
	filterJSONField string
	filterSource    string
	filterAudit     bool
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Stream stdin and print only relevant lines",
	Long: `Read texts from stdin, one per line, and write the relevant ones to stdout.
With --json-field each line is a JSON document and the text is taken from the
given gjson path; the whole line is echoed when it is relevant.`,
	Example: `  cat posts.txt | postfilter filter
  cat tweets.jsonl | postfilter filter --json-field data.text --audit --source twitter`,
	Args: cobra.NoArgs,
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().StringVar(&filterJSONField, "json-field", "", "gjson path of the text in each JSON line")
	filterCmd.Flags().StringVar(&filterSource, "source", "stdin", "source label for decision records")
	filterCmd.Flags().BoolVar(&filterAudit, "audit", false, "record every decision in the decision log")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return fmt.Errorf("building rules: %w", err)
	}

	chainCfg := filter.ChainConfig{Rules: rules, Logger: logger}
	if filterAudit {
		store, err := audit.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("creating audit store: %w", err)
		}
		defer store.Close()
		chainCfg.AuditStore = store
	}

	lf := &lineFilter{
		chain:     filter.BuildChain(chainCfg),
		jsonField: filterJSONField,
		source:    filterSource,
		logger:    logger,
	}
	n, kept, err := lf.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	logger.Info("filter finished", "read", n, "kept", kept)
	return err
}

type lineFilter struct {
	chain     *filter.Chain
	jsonField string
	source    string
	logger    *slog.Logger
}

// Run copies relevant lines from r to w and returns the number of lines
// read and kept.
func (f *lineFilter) Run(ctx context.Context, r io.Reader, w io.Writer) (int, int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	out := bufio.NewWriter(w)
	defer out.Flush()

	read, kept := 0, 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return read, kept, err
		}
		read++
		line := sc.Text()

		text, ok := f.extract(line, read)
		if !ok {
			continue
		}

		decision, err := f.chain.Check(ctx, text, f.source)
		if err != nil {
			return read, kept, fmt.Errorf("line %d: %w", read, err)
		}
		if !decision.Relevant() {
			continue
		}

		kept++
		if _, err := out.WriteString(line); err != nil {
			return read, kept, err
		}
		if err := out.WriteByte('\n'); err != nil {
			return read, kept, err
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return read, kept, fmt.Errorf("line %d exceeds %d bytes", read+1, maxLineBytes)
		}
		return read, kept, fmt.Errorf("reading input: %w", err)
	}
	return read, kept, nil
}

// extract returns the text to evaluate for a line. JSON lines that are
// invalid or lack the field are skipped.
func (f *lineFilter) extract(line string, n int) (string, bool) {
	if f.jsonField == "" {
		return line, true
	}
	if !gjson.Valid(line) {
		f.logger.Warn("skipping invalid JSON line", "line", n)
		return "", false
	}
	res := gjson.Get(line, f.jsonField)
	if !res.Exists() {
		f.logger.Warn("skipping line without text field", "line", n, "field", f.jsonField)
		return "", false
	}
	return res.String(), true
}
