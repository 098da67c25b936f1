package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of background work. Payload is opaque to the pool; the
// handler knows what to do with it.
type Task struct {
	ID       string
	Kind     string
	Payload  interface{}
	Enqueued time.Time
}

// Handler runs a task. Errors are logged; the handler owns any durable
// failure state, so the pool never retries on its own.
type Handler func(context.Context, Task) error

// Options tunes the pool. Zero values pick sensible defaults.
type Options struct {
	Workers int
	Buffer  int
	Logger  *zap.Logger
}

// Pool is an in-process worker pool fed by a buffered channel. Enqueue
// blocks while the buffer is full and fails once the pool is stopped.
type Pool struct {
	name    string
	handler Handler
	logger  *zap.Logger
	workers int

	tasks  chan Task
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	wg      sync.WaitGroup
	started bool
}

// NewPool builds a pool that feeds tasks to handler.
func NewPool(name string, handler Handler, opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Buffer <= 0 {
		opts.Buffer = opts.Workers * 4
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Pool{
		name:    name,
		handler: handler,
		logger:  opts.Logger,
		workers: opts.Workers,
		tasks:   make(chan Task, opts.Buffer),
	}
}

// Start launches the workers. Calling Start twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	p.started = true
	p.logger.Info("worker pool started", zap.String("pool", p.name), zap.Int("workers", p.workers))
}

// Stop cancels the workers and waits for in-flight tasks to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Info("worker pool stopped", zap.String("pool", p.name))
}

// Enqueue hands a task to the pool.
func (p *Pool) Enqueue(task Task) error {
	p.mu.Lock()
	ctx := p.ctx
	started := p.started
	p.mu.Unlock()

	if !started {
		return fmt.Errorf("pool %s not started", p.name)
	}
	if task.Enqueued.IsZero() {
		task.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("pool %s stopped: %w", p.name, ctx.Err())
	case p.tasks <- task:
		return nil
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.tasks:
			if err := p.handler(p.ctx, task); err != nil {
				p.logger.Error("task failed",
					zap.String("pool", p.name),
					zap.String("task_id", task.ID),
					zap.String("kind", task.Kind),
					zap.Error(err))
			}
		}
	}
}
