package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEntry is one ring-buffer record.
type LogEntry struct {
	Time       time.Time
	Level      string
	Message    string
	Attributes map[string]string
}

// LogBuffer is a fixed-capacity circular buffer of recent log entries,
// queried by GetMasterComponentInfo rather than re-parsed from stderr.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	maxSize int
	index   int
}

const defaultBufferSize = 1000

// NewLogBuffer allocates a buffer holding at most maxSize entries; <= 0
// uses the default.
func NewLogBuffer(maxSize int) *LogBuffer {
	if maxSize <= 0 {
		maxSize = defaultBufferSize
	}
	return &LogBuffer{entries: make([]LogEntry, 0, maxSize), maxSize: maxSize}
}

// Add appends entry, overwriting the oldest once the buffer is full.
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if len(lb.entries) < lb.maxSize {
		lb.entries = append(lb.entries, entry)
		return
	}
	lb.entries[lb.index] = entry
	lb.index = (lb.index + 1) % lb.maxSize
}

// Query returns entries matching filter, newest first, capped at
// filter.Limit if set.
func (lb *LogBuffer) Query(filter LogFilter) []LogEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	// Once the buffer has wrapped, lb.index points at the oldest entry, so
	// walking from there yields chronological order before the reversal.
	var results []LogEntry
	n := len(lb.entries)
	for k := 0; k < n; k++ {
		entry := lb.entries[(lb.index+k)%n]
		if filter.Matches(entry) {
			results = append(results, entry)
		}
	}
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results
}

// Clear discards all buffered entries.
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.entries = make([]LogEntry, 0, lb.maxSize)
	lb.index = 0
}

// Size returns the current entry count.
func (lb *LogBuffer) Size() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return len(lb.entries)
}

// LogFilter narrows a Query to entries of interest.
type LogFilter struct {
	Level     string
	DateFrom  time.Time
	DateTo    time.Time
	Keyword   string
	Limit     int
	BatchID   string
	Component string
}

// Matches reports whether entry satisfies every set criterion.
func (f LogFilter) Matches(entry LogEntry) bool {
	if f.Level != "" && levelRank(entry.Level) < levelRank(f.Level) {
		return false
	}
	if !f.DateFrom.IsZero() && entry.Time.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && entry.Time.After(f.DateTo) {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		found := strings.Contains(strings.ToLower(entry.Message), kw)
		for _, v := range entry.Attributes {
			if strings.Contains(strings.ToLower(v), kw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.BatchID != "" && entry.Attributes["batch_id"] != f.BatchID {
		return false
	}
	if f.Component != "" && entry.Attributes["component"] != f.Component {
		return false
	}
	return true
}

func levelRank(level string) int {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return 0
	case "INFO":
		return 1
	case "WARN":
		return 2
	case "ERROR":
		return 3
	default:
		return 1
	}
}

// bufferingHandler wraps an slog.Handler, mirroring every handled record
// into a LogBuffer before delegating to the wrapped handler.
type bufferingHandler struct {
	slog.Handler
	buffer *LogBuffer
}

func (h *bufferingHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]string, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	h.buffer.Add(LogEntry{Time: r.Time, Level: r.Level.String(), Message: r.Message, Attributes: attrs})
	return h.Handler.Handle(ctx, r)
}

func (h *bufferingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &bufferingHandler{Handler: h.Handler.WithAttrs(attrs), buffer: h.buffer}
}

func (h *bufferingHandler) WithGroup(name string) slog.Handler {
	return &bufferingHandler{Handler: h.Handler.WithGroup(name), buffer: h.buffer}
}
