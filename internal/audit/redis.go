package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tkingovr/postfilter/api"
)

const (
	redisMaxLen     = 100000
	redisQueryLimit = 10000
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

// RedisStore keeps decision records in a capped Redis stream. Aggregate
// counters live in a hash next to the stream and new records are
// broadcast on a pub/sub channel.
type RedisStore struct {
	client  *redis.Client
	stream  string
	stats   string
	channel string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}
	return newRedisStore(client, opts.Stream), nil
}

func newRedisStore(client *redis.Client, stream string) *RedisStore {
	return &RedisStore{
		client:  client,
		stream:  stream,
		stats:   stream + ":stats",
		channel: stream + ":live",
	}
}

func (s *RedisStore) Write(ctx context.Context, record *api.DecisionRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	if record.ID == "" {
		record.ID = strconv.FormatInt(record.Timestamp.UnixNano(), 10)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling decision record: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: s.stream,
			MaxLen: redisMaxLen,
			Approx: true,
			Values: map[string]any{"record": data},
		})
		pipe.HIncrBy(ctx, s.stats, "total", 1)
		pipe.HIncrBy(ctx, s.stats, string(record.Verdict), 1)
		if record.Rule != "" {
			pipe.HIncrBy(ctx, s.stats, "rule:"+record.Rule, 1)
		}
		if record.Source != "" {
			pipe.HIncrBy(ctx, s.stats, "source:"+record.Source, 1)
		}
		pipe.Publish(ctx, s.channel, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing decision record to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Query(ctx context.Context, filter api.QueryFilter) ([]*api.DecisionRecord, error) {
	msgs, err := s.client.XRevRangeN(ctx, s.stream, "+", "-", redisQueryLimit).Result()
	if err != nil {
		return nil, fmt.Errorf("reading decision stream: %w", err)
	}

	var results []*api.DecisionRecord
	for _, msg := range msgs {
		r, err := decodeStreamRecord(msg.Values["record"])
		if err != nil {
			return nil, fmt.Errorf("decoding stream entry %s: %w", msg.ID, err)
		}
		if filter.Matches(r) {
			results = append(results, r)
		}
	}
	return paginate(results, filter), nil
}

func (s *RedisStore) Stats(ctx context.Context) (*api.DecisionStats, error) {
	fields, err := s.client.HGetAll(ctx, s.stats).Result()
	if err != nil {
		return nil, fmt.Errorf("reading decision stats: %w", err)
	}

	stats := api.NewDecisionStats()
	for k, v := range fields {
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		switch {
		case k == "total":
			stats.Total = n
		case k == string(api.VerdictRelevant):
			stats.Relevant = n
		case k == string(api.VerdictRejected):
			stats.Rejected = n
		case strings.HasPrefix(k, "rule:"):
			stats.ByRule[strings.TrimPrefix(k, "rule:")] = n
		case strings.HasPrefix(k, "source:"):
			stats.BySource[strings.TrimPrefix(k, "source:")] = n
		}
	}
	return stats, nil
}

func (s *RedisStore) Subscribe(ctx context.Context) (<-chan *api.DecisionRecord, func()) {
	pubsub := s.client.Subscribe(ctx, s.channel)
	out := make(chan *api.DecisionRecord, 100)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var r api.DecisionRecord
			if err := json.Unmarshal([]byte(msg.Payload), &r); err != nil {
				continue
			}
			select {
			case out <- &r:
			default:
			}
		}
	}()

	return out, func() { pubsub.Close() }
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decodeStreamRecord(v any) (*api.DecisionRecord, error) {
	var raw []byte
	switch val := v.(type) {
	case string:
		raw = []byte(val)
	case []byte:
		raw = val
	default:
		return nil, fmt.Errorf("unexpected value type %T", v)
	}
	var r api.DecisionRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
