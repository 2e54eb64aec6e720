package filter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tkingovr/postfilter/api"
)

// Chain executes a sequence of filters in order.
type Chain struct {
	filters []Filter
	logger  *slog.Logger
}

// NewChain creates a new filter chain.
func NewChain(logger *slog.Logger, filters ...Filter) *Chain {
	return &Chain{
		filters: filters,
		logger:  logger,
	}
}

// Process runs all filters in sequence on the given context.
// Filters after a rejection still run (e.g. audit) but the verdict is final.
func (c *Chain) Process(ctx context.Context, fc *FilterContext) error {
	for _, f := range c.filters {
		if err := f.Process(ctx, fc); err != nil {
			return fmt.Errorf("filter %q: %w", f.Name(), err)
		}
		c.logger.Debug("filter executed",
			"filter", f.Name(),
			"source", fc.Source,
			"verdict", fc.Verdict,
			"rule", fc.MatchedRule,
		)
	}
	return nil
}

// Check runs text through the chain and returns the resulting decision.
func (c *Chain) Check(ctx context.Context, text, source string) (api.Decision, error) {
	fc := NewFilterContext(text, source)
	if err := c.Process(ctx, fc); err != nil {
		return api.Decision{}, err
	}
	return fc.Decision(), nil
}
