package audit

import (
	"context"
	"fmt"

	"github.com/tkingovr/postfilter/api"
	"github.com/tkingovr/postfilter/internal/config"
	"github.com/tkingovr/postfilter/internal/policy"
)

// Store defines the interface for decision record persistence and retrieval.
type Store interface {
	// Write appends a decision record.
	Write(ctx context.Context, record *api.DecisionRecord) error

	// Query retrieves records matching the filter, newest first.
	Query(ctx context.Context, filter api.QueryFilter) ([]*api.DecisionRecord, error)

	// Stats returns aggregate statistics.
	Stats(ctx context.Context) (*api.DecisionStats, error)

	// Subscribe returns a channel that receives new records in real time.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context) (<-chan *api.DecisionRecord, func())

	// Close shuts down the store and flushes any buffers.
	Close() error
}

// Open creates the store selected by cfg.AuditBackend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.AuditBackend {
	case "", policy.BackendJSONL:
		return NewJSONLStore(cfg.LogDir)
	case policy.BackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Stream:   cfg.Redis.Stream,
		})
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.AuditBackend)
	}
}

func paginate(records []*api.DecisionRecord, filter api.QueryFilter) []*api.DecisionRecord {
	if filter.Offset > 0 {
		if filter.Offset >= len(records) {
			return nil
		}
		records = records[filter.Offset:]
	}
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records
}
