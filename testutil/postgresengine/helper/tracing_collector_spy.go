package helper

import (
	"context"
	"sync"

	"github.com/jobet1995/library-system/circulation"
)

// TracingCollectorSpy is a circulation.TracingCollector implementation that
// captures span lifecycles for testing.
type TracingCollectorSpy struct {
	startedSpans  []SpySpanRecord
	finishedSpans []SpySpanRecord
	mu            sync.Mutex
}

// SpySpanRecord represents a recorded span start or finish.
type SpySpanRecord struct {
	Name   string
	Status string
	Attrs  map[string]string
}

// spySpanContext is the SpanContext handed out by the spy.
type spySpanContext struct {
	name   string
	status string
	attrs  map[string]string
	mu     sync.Mutex
}

func (s *spySpanContext) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *spySpanContext) AddAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[key] = value
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{
		startedSpans:  make([]SpySpanRecord, 0),
		finishedSpans: make([]SpySpanRecord, 0),
	}
}

// StartSpan implements the TracingCollector interface.
func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, circulation.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startedSpans = append(s.startedSpans, SpySpanRecord{Name: name, Attrs: copyLabels(attrs)})

	return ctx, &spySpanContext{name: name, attrs: copyLabels(attrs)}
}

// FinishSpan implements the TracingCollector interface.
func (s *TracingCollectorSpy) FinishSpan(spanCtx circulation.SpanContext, status string, attrs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := SpySpanRecord{Status: status, Attrs: copyLabels(attrs)}
	if span, ok := spanCtx.(*spySpanContext); ok {
		record.Name = span.name
	}

	s.finishedSpans = append(s.finishedSpans, record)
}

// GetStartedSpans returns a copy of all started spans.
func (s *TracingCollectorSpy) GetStartedSpans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpySpanRecord, len(s.startedSpans))
	copy(records, s.startedSpans)

	return records
}

// HasFinishedSpan checks if a span with the given name finished with the given status.
func (s *TracingCollectorSpy) HasFinishedSpan(name string, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.finishedSpans {
		if record.Name == name && record.Status == status {
			return true
		}
	}

	return false
}

// Reset clears all captured spans.
func (s *TracingCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startedSpans = s.startedSpans[:0]
	s.finishedSpans = s.finishedSpans[:0]
}
