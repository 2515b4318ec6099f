package engine

import (
	"context"
	"log"
	"math/rand/v2"
	"time"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/graph"
)

const (
	defaultEventBuffer = 16
	unsubscribeTimeout = 5 * time.Second
)

// Engine owns the traffic graph. All state below is touched only by the Run
// goroutine; public methods hand closures to it and wait for them to finish,
// so ticks and mutations never interleave.
type Engine struct {
	requests chan func()
	done     chan struct{}

	rng         *rand.Rand
	now         func() time.Time
	eventBuffer int

	cfg         domain.Config
	vertices    []domain.Vertex
	edges       []domain.Edge
	edgeIndex   map[string]int
	vertexIndex map[string]int
	adjacency   *graph.Adjacency
	incidents   []domain.Incident
	updateCount int64
	createdAt   time.Time

	ticker *time.Ticker

	subscribers map[int]chan domain.Event
	nextSubID   int
}

type Option func(*Engine)

// WithRand injects the random source used for building, ticking and incident
// sampling. Pass a seeded source for reproducible runs.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithClock replaces time.Now; the hour of the returned time drives the
// time-of-day multiplier and incident expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithEventBuffer sets the channel size handed to each subscriber
func WithEventBuffer(n int) Option {
	return func(e *Engine) { e.eventBuffer = n }
}

// New builds the initial graph from cfg. The engine does nothing until Run is
// called; the update timer stays off until Start.
func New(cfg domain.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		requests:    make(chan func()),
		done:        make(chan struct{}),
		now:         time.Now,
		eventBuffer: defaultEventBuffer,
		cfg:         cfg,
		subscribers: make(map[int]chan domain.Event),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	e.createdAt = e.now()
	e.rebuild()

	return e, nil
}

// Run processes ticks and requests serially until ctx is cancelled. Subscriber
// channels are closed on return.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)
	defer e.closeSubscribers()
	defer e.stopTimer()

	for {
		var tick <-chan time.Time
		if e.ticker != nil {
			tick = e.ticker.C
		}

		select {
		case <-ctx.Done():
			return
		case fn := <-e.requests:
			fn()
		case <-tick:
			e.step()
		}
	}
}

// do runs fn on the engine goroutine and waits for it to finish.
func (e *Engine) do(ctx context.Context, fn func()) error {
	reply := make(chan struct{})
	req := func() {
		defer close(reply)
		fn()
	}

	select {
	case e.requests <- req:
	case <-e.done:
		return domain.ErrEngineClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	<-reply
	return nil
}

// Start runs one update immediately and then every UpdateInterval. Calling it
// on a running engine is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	return e.do(ctx, func() {
		if e.ticker != nil {
			return
		}
		log.Printf("[traffic] starting update cycle interval=%s", e.cfg.Interval())
		e.step()
		e.ticker = time.NewTicker(e.cfg.Interval())
	})
}

// Stop cancels the update timer. Graph state is kept. Calling it on a stopped
// engine is a no-op.
func (e *Engine) Stop(ctx context.Context) error {
	return e.do(ctx, func() {
		if e.ticker == nil {
			return
		}
		e.stopTimer()
		log.Printf("[traffic] update cycle stopped after %d ticks", e.updateCount)
	})
}

// Step runs exactly one update cycle regardless of the timer.
func (e *Engine) Step(ctx context.Context) error {
	return e.do(ctx, e.step)
}

func (e *Engine) IsRunning(ctx context.Context) (bool, error) {
	var running bool
	err := e.do(ctx, func() { running = e.ticker != nil })
	return running, err
}

func (e *Engine) stopTimer() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}

// Subscribe returns a channel receiving every engine event and a cancel
// function. Delivery never blocks the engine: events are dropped for a
// subscriber whose buffer is full.
func (e *Engine) Subscribe(ctx context.Context) (<-chan domain.Event, func(), error) {
	var (
		id int
		ch chan domain.Event
	)
	err := e.do(ctx, func() {
		id = e.nextSubID
		e.nextSubID++
		ch = make(chan domain.Event, e.eventBuffer)
		e.subscribers[id] = ch
	})
	if err != nil {
		return nil, nil, err
	}

	cancel := func() {
		ctx, stop := context.WithTimeout(context.Background(), unsubscribeTimeout)
		defer stop()
		_ = e.do(ctx, func() {
			if sub, ok := e.subscribers[id]; ok {
				delete(e.subscribers, id)
				close(sub)
			}
		})
	}
	return ch, cancel, nil
}

func (e *Engine) publish(evt domain.Event) {
	if evt.Timestamp == 0 {
		evt.Timestamp = e.now().UnixMilli()
	}
	for id, ch := range e.subscribers {
		select {
		case ch <- evt:
		default:
			log.Printf("[traffic] subscriber=%d buffer full, dropped event=%s", id, evt.Type)
		}
	}
}

func (e *Engine) closeSubscribers() {
	for id, ch := range e.subscribers {
		close(ch)
		delete(e.subscribers, id)
	}
}
