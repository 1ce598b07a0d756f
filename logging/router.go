package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

// Router buffers events behind a queue and fans them out to sinks on a
// dedicated goroutine so the tick loop never blocks on I/O. Events are
// dropped, and counted, when the queue is full.
type Router struct {
	cfg         Config
	queue       chan Event
	sinks       []NamedSink
	clock       Clock
	fallback    *log.Logger
	cancel      context.CancelFunc
	closed      atomic.Bool
	minSeverity Severity
	fields      map[string]any
	wg          sync.WaitGroup

	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
	lastDropLog  atomic.Int64
}

type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink) (*Router, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 512
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		cfg:         cfg,
		queue:       make(chan Event, bufferSize),
		clock:       clock,
		fallback:    log.New(os.Stderr, "[logging] ", log.LstdFlags),
		cancel:      cancel,
		minSeverity: cfg.MinimumSeverity,
		fields:      cfg.CloneFields(),
	}
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.sinks = append(r.sinks, named)
	}

	r.wg.Add(1)
	go r.dispatch(ctx)
	return r, nil
}

func (r *Router) dispatch(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case event, ok := <-r.queue:
			if !ok {
				return
			}
			r.write(event)
		case <-ctx.Done():
			// Drain whatever is already queued before exiting.
			for {
				select {
				case event := <-r.queue:
					r.write(event)
				default:
					return
				}
			}
		}
	}
}

func (r *Router) write(event Event) {
	for _, named := range r.sinks {
		if err := named.Sink.Write(event); err != nil {
			r.fallback.Printf("sink %s failed: %v", named.Name, err)
		}
	}
}

// Publish implements Publisher. Events below the minimum severity are
// filtered; a full queue drops the event and rate-limits the drop warning.
func (r *Router) Publish(_ context.Context, event Event) {
	if r == nil || r.closed.Load() {
		return
	}
	if event.Severity < r.minSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.fields) > 0 {
		event = cloneEvent(event)
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(r.fields))
		}
		for k, v := range r.fields {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
	}

	select {
	case r.queue <- event:
		r.eventsTotal.Add(1)
	default:
		r.droppedTotal.Add(1)
		r.warnDrop()
	}
}

func (r *Router) warnDrop() {
	interval := r.cfg.DropWarnInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	now := r.clock.Now().UnixNano()
	last := r.lastDropLog.Load()
	if now-last < int64(interval) {
		return
	}
	if r.lastDropLog.CompareAndSwap(last, now) {
		r.fallback.Printf("event queue full, dropped=%d", r.droppedTotal.Load())
	}
}

func (r *Router) Stats() RouterStats {
	if r == nil {
		return RouterStats{}
	}
	return RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
}

// Close stops the dispatch goroutine, drains queued events, and closes sinks.
func (r *Router) Close(ctx context.Context) error {
	if r == nil || !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.cancel()
	r.wg.Wait()
	var firstErr error
	for _, named := range r.sinks {
		if err := named.Sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
