package filter

import (
	"log/slog"

	"github.com/tkingovr/postfilter/internal/audit"
	"github.com/tkingovr/postfilter/relevance"
)

// ChainConfig holds the configuration for building a filter chain.
type ChainConfig struct {
	Rules      relevance.RuleSet
	AuditStore audit.Store
	Logger     *slog.Logger
}

// BuildChain constructs the evaluation chain. Auditing is skipped when no
// store is configured.
func BuildChain(cfg ChainConfig) *Chain {
	filters := []Filter{
		NewRelevanceFilter(cfg.Rules),
	}

	// Audit is always last
	if cfg.AuditStore != nil {
		filters = append(filters, NewAuditFilter(cfg.AuditStore))
	}

	return NewChain(cfg.Logger, filters...)
}
