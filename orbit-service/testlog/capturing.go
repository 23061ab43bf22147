package testlog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// CapturedRecord is a log record together with the attributes inherited from the logger
// that emitted it.
type CapturedRecord struct {
	Inherited []slog.Attr
	*slog.Record
}

// Attrs calls f on each record attribute, then each inherited one.
// Iteration stops if f returns false.
func (r *CapturedRecord) Attrs(f func(slog.Attr) bool) {
	searching := true
	r.Record.Attrs(func(a slog.Attr) bool {
		searching = f(a)
		return searching
	})
	if !searching {
		return
	}
	for _, a := range r.Inherited {
		if !f(a) {
			return
		}
	}
}

// CapturingHandler captures all log records and forwards them to a delegate.
type CapturingHandler struct {
	handler slog.Handler
	mu      *sync.Mutex
	logs    *[]*CapturedRecord // shared among derived handlers
	attrs   []slog.Attr
}

// CaptureLogger returns a test logger together with the handler capturing its records.
func CaptureLogger(t Testing, level slog.Level) (log.Logger, *CapturingHandler) {
	delegate := log.NewTerminalHandlerWithLevel(&testWriter{t: t}, level, false)
	ch := &CapturingHandler{handler: delegate, mu: new(sync.Mutex), logs: new([]*CapturedRecord)}
	return log.NewLogger(ch), ch
}

func (c *CapturingHandler) Handle(ctx context.Context, r slog.Record) error {
	c.mu.Lock()
	*c.logs = append(*c.logs, &CapturedRecord{Inherited: c.attrs, Record: &r})
	c.mu.Unlock()
	return c.handler.Handle(ctx, r)
}

func (c *CapturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	inherited := make([]slog.Attr, 0, len(c.attrs)+len(attrs))
	inherited = append(inherited, c.attrs...)
	inherited = append(inherited, attrs...)
	return &CapturingHandler{
		handler: c.handler.WithAttrs(attrs),
		mu:      c.mu,
		logs:    c.logs,
		attrs:   inherited,
	}
}

func (c *CapturingHandler) WithGroup(name string) slog.Handler {
	return &CapturingHandler{
		handler: c.handler.WithGroup(name),
		mu:      c.mu,
		logs:    c.logs,
		attrs:   c.attrs,
	}
}

func (c *CapturingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return c.handler.Enabled(ctx, level)
}

type LogFilter func(record *CapturedRecord) bool

func NewLevelFilter(level slog.Level) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.Level == level
	}
}

func NewMessageFilter(message string) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.Message == message
	}
}

func NewMessageContainsFilter(message string) LogFilter {
	return func(r *CapturedRecord) bool {
		return strings.Contains(r.Message, message)
	}
}

func NewAttributesFilter(key, value string) LogFilter {
	return func(r *CapturedRecord) bool {
		found := false
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key && a.Value.String() == value {
				found = true
				return false
			}
			return true
		})
		return found
	}
}

// FindLog returns the first record matching all filters, or nil.
func (c *CapturingHandler) FindLog(filters ...LogFilter) *CapturedRecord {
	logs := c.FindLogs(filters...)
	if len(logs) == 0 {
		return nil
	}
	return logs[0]
}

// FindLogs returns every record matching all filters.
func (c *CapturingHandler) FindLogs(filters ...LogFilter) []*CapturedRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*CapturedRecord
	for _, record := range *c.logs {
		match := true
		for _, filter := range filters {
			if !filter(record) {
				match = false
				break
			}
		}
		if match {
			out = append(out, record)
		}
	}
	return out
}
