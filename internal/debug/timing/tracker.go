package timing

import (
	"context"
	"sync"
	"time"
)

type timingKey struct{}

type TimingInfo struct {
	Operation string
	StartTime time.Time
}

// Tracker records stage durations for one pipeline run. Safe for concurrent
// use by classifiers running in parallel.
type Tracker struct {
	timings map[string]time.Duration
	order   []string
	mu      sync.Mutex
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		timings: make(map[string]time.Duration),
		now:     time.Now,
	}
}

// StartTiming returns a context carrying the start of operation. Pass it to
// EndTiming when the operation finishes.
func (tt *Tracker) StartTiming(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, timingKey{}, TimingInfo{
		Operation: operation,
		StartTime: tt.now(),
	})
}

// EndTiming records the elapsed time since the matching StartTiming and
// returns it. Repeated operations accumulate.
func (tt *Tracker) EndTiming(ctx context.Context) time.Duration {
	info, ok := ctx.Value(timingKey{}).(TimingInfo)
	if !ok {
		return 0
	}

	duration := tt.now().Sub(info.StartTime)

	tt.mu.Lock()
	if _, seen := tt.timings[info.Operation]; !seen {
		tt.order = append(tt.order, info.Operation)
	}
	tt.timings[info.Operation] += duration
	tt.mu.Unlock()

	return duration
}

// Track times fn under operation.
func (tt *Tracker) Track(ctx context.Context, operation string, fn func() error) error {
	timed := tt.StartTiming(ctx, operation)
	defer tt.EndTiming(timed)
	return fn()
}

// Timings returns a copy of the recorded durations.
func (tt *Tracker) Timings() map[string]time.Duration {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	result := make(map[string]time.Duration, len(tt.timings))
	for operation, d := range tt.timings {
		result[operation] = d
	}
	return result
}

// Operations lists recorded operations in first-completion order.
func (tt *Tracker) Operations() []string {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	out := make([]string, len(tt.order))
	copy(out, tt.order)
	return out
}

// Total sums all recorded durations.
func (tt *Tracker) Total() time.Duration {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	var total time.Duration
	for _, d := range tt.timings {
		total += d
	}
	return total
}
