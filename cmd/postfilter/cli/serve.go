package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tkingovr/postfilter/internal/audit"
	"github.com/tkingovr/postfilter/internal/filter"
	"github.com/tkingovr/postfilter/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP check service",
	Long: `Serve POST /api/v1/check and the decision log endpoints. Every decision
made through the service is recorded in the configured decision log.`,
	Example: `  postfilter serve -c policy.yaml
  postfilter serve -l :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "listen", "l", "", "listen address (overrides listen_addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}

	rules, err := cfg.Rules()
	if err != nil {
		return fmt.Errorf("building rules: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store, err := audit.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating audit store: %w", err)
	}
	defer store.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	chain := filter.BuildChain(filter.ChainConfig{
		Rules:      rules,
		AuditStore: store,
		Logger:     logger,
	})

	logger.Info("starting serve mode",
		slog.String("addr", cfg.ListenAddr),
		slog.String("audit_backend", cfg.AuditBackend),
		slog.Int("rules", rules.Len()),
	)

	srv := server.NewServer(cfg, chain, rules, store, logger)
	return srv.ListenAndServe(ctx)
}
