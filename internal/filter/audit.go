package filter

import (
	"context"

	"github.com/tkingovr/postfilter/internal/audit"
)

// AuditFilter writes a decision record for every processed text.
type AuditFilter struct {
	store audit.Store
}

func NewAuditFilter(store audit.Store) *AuditFilter {
	return &AuditFilter{store: store}
}

func (f *AuditFilter) Name() string { return "audit" }

func (f *AuditFilter) Process(ctx context.Context, fc *FilterContext) error {
	return f.store.Write(ctx, fc.ToRecord())
}
