package audit

import (
	"sync"

	"github.com/tkingovr/postfilter/api"
)

// subscriberBuffer is how many undelivered records a subscriber may lag
// behind before new records are dropped for it.
const subscriberBuffer = 100

// broadcaster fans records out to live subscribers without blocking the
// writer.
type broadcaster struct {
	mu   sync.RWMutex
	subs map[chan *api.DecisionRecord]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan *api.DecisionRecord]struct{})}
}

func (b *broadcaster) subscribe() (<-chan *api.DecisionRecord, func()) {
	ch := make(chan *api.DecisionRecord, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *broadcaster) publish(r *api.DecisionRecord) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- r:
		default:
		}
	}
}
