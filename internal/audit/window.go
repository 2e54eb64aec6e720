package audit

import "github.com/tkingovr/postfilter/api"

// recentWindow is a fixed-capacity ring holding the most recent records.
// Once full, each push overwrites the oldest entry.
type recentWindow struct {
	buf   []*api.DecisionRecord
	start int
	n     int
}

func newRecentWindow(capacity int) *recentWindow {
	return &recentWindow{buf: make([]*api.DecisionRecord, capacity)}
}

func (w *recentWindow) push(r *api.DecisionRecord) {
	if len(w.buf) == 0 {
		return
	}
	if w.n < len(w.buf) {
		w.buf[(w.start+w.n)%len(w.buf)] = r
		w.n++
		return
	}
	w.buf[w.start] = r
	w.start = (w.start + 1) % len(w.buf)
}

func (w *recentWindow) len() int { return w.n }

// newestFirst calls fn for each record from newest to oldest until fn
// returns false.
func (w *recentWindow) newestFirst(fn func(*api.DecisionRecord) bool) {
	for i := w.n - 1; i >= 0; i-- {
		if !fn(w.buf[(w.start+i)%len(w.buf)]) {
			return
		}
	}
}
