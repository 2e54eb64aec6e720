package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/tkingovr/postfilter/api"
)

const (
	// DefaultWindowSize is how many recent decisions a JSONLStore keeps in
	// memory for Query and Stats.
	DefaultWindowSize = 10000

	dayLayout = "2006-01-02"

	// maxRecordLine bounds a single line when replaying a log file.
	maxRecordLine = 1 << 20
)

// JSONLStore logs decisions to one JSONL file per day under a directory.
// Query and Stats answer from a bounded window of the most recent
// decisions, which is refilled from the newest files when the store opens.
type JSONLStore struct {
	mu     sync.Mutex
	dir    string
	day    string
	file   *os.File
	enc    *json.Encoder
	buf    *bufio.Writer
	seq    uint64
	recent *recentWindow

	// skipped counts unreadable lines found while replaying.
	skipped int

	live *broadcaster
}

// NewJSONLStore opens the decision log in dir, creating the directory if
// needed, and replays up to DefaultWindowSize recent decisions.
func NewJSONLStore(dir string) (*JSONLStore, error) {
	return newJSONLStore(dir, DefaultWindowSize)
}

func newJSONLStore(dir string, windowSize int) (*JSONLStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating decision log directory: %w", err)
	}
	s := &JSONLStore{
		dir:    dir,
		recent: newRecentWindow(windowSize),
		live:   newBroadcaster(),
	}
	if err := s.replay(windowSize); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONLStore) Write(_ context.Context, record *api.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if record.ID == "" {
		s.seq++
		record.ID = strconv.FormatInt(record.Timestamp.UnixNano(), 36) + "-" + strconv.FormatUint(s.seq, 36)
	}

	if err := s.openDay(record.Timestamp.Format(dayLayout)); err != nil {
		return err
	}
	// Encode appends the newline.
	if err := s.enc.Encode(record); err != nil {
		return fmt.Errorf("writing decision record: %w", err)
	}
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("flushing decision log: %w", err)
	}

	s.recent.push(record)
	s.live.publish(record)
	return nil
}

func (s *JSONLStore) Query(_ context.Context, filter api.QueryFilter) ([]*api.DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*api.DecisionRecord
	need := filter.Offset + filter.Limit
	s.recent.newestFirst(func(r *api.DecisionRecord) bool {
		if filter.Matches(r) {
			results = append(results, r)
		}
		return filter.Limit <= 0 || len(results) < need
	})
	return paginate(results, filter), nil
}

func (s *JSONLStore) Stats(_ context.Context) (*api.DecisionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := api.NewDecisionStats()
	s.recent.newestFirst(func(r *api.DecisionRecord) bool {
		stats.Add(r)
		return true
	})
	return stats, nil
}

func (s *JSONLStore) Subscribe(_ context.Context) (<-chan *api.DecisionRecord, func()) {
	return s.live.subscribe()
}

func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeDay()
}

// openDay switches the output file when the record's day differs from the
// file currently open.
func (s *JSONLStore) openDay(day string) error {
	if day == s.day && s.file != nil {
		return nil
	}
	if err := s.closeDay(); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, day+".jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("opening decision log file: %w", err)
	}
	s.file = f
	s.buf = bufio.NewWriter(f)
	s.enc = json.NewEncoder(s.buf)
	s.enc.SetEscapeHTML(false)
	s.day = day
	return nil
}

func (s *JSONLStore) closeDay() error {
	if s.file == nil {
		return nil
	}
	flushErr := s.buf.Flush()
	closeErr := s.file.Close()
	s.file, s.buf, s.enc, s.day = nil, nil, nil, ""
	return errors.Join(flushErr, closeErr)
}

// replay loads the newest records from the day files in dir, newest file
// first, until limit records are held.
func (s *JSONLStore) replay(limit int) error {
	files, err := s.dayFiles()
	if err != nil {
		return err
	}

	var batches [][]*api.DecisionRecord
	total := 0
	for i := len(files) - 1; i >= 0 && total < limit; i-- {
		records, err := s.readDayFile(files[i])
		if err != nil {
			return err
		}
		batches = append(batches, records)
		total += len(records)
	}

	// Oldest batch first so the ring ends with the newest records.
	for i := len(batches) - 1; i >= 0; i-- {
		for _, r := range batches[i] {
			s.recent.push(r)
		}
	}
	return nil
}

// dayFiles lists the day files in dir in chronological order.
func (s *JSONLStore) dayFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing decision logs: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".jsonl" {
			continue
		}
		if _, err := time.Parse(dayLayout, name[:len(name)-len(".jsonl")]); err != nil {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

func (s *JSONLStore) readDayFile(name string) ([]*api.DecisionRecord, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("opening decision log %s: %w", name, err)
	}
	defer f.Close()

	var records []*api.DecisionRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64<<10), maxRecordLine)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r api.DecisionRecord
		if err := json.Unmarshal(line, &r); err != nil {
			s.skipped++
			continue
		}
		records = append(records, &r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading decision log %s: %w", name, err)
	}
	return records, nil
}
