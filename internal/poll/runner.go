package poll

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task binds a polled resource to its fetch and apply functions. Fetch runs
// on its own goroutine; Apply always runs on the Runner's dispatcher.
type Task struct {
	Resource Resource
	Fetch    func(ctx context.Context) (any, error)
	Apply    func(v any)
}

// Periodic is a fixed-rate callback run on the dispatcher, used for work
// that shares the controller with the polled resources.
type Periodic struct {
	Name     string
	Interval time.Duration
	Run      func()
}

type result struct {
	resource Resource
	gen      uint64
	value    any
	err      error
}

// Runner drives a Scheduler without a UI: one ticker goroutine per
// resource and a single dispatcher goroutine that applies results, so
// Apply and Periodic callbacks never run concurrently.
type Runner struct {
	sched    *Scheduler
	tasks    map[Resource]Task
	periodic []Periodic
	logger   *zap.Logger
}

// NewRunner returns a Runner for tasks. Every task must name a resource
// known to sched.
func NewRunner(sched *Scheduler, tasks []Task, periodic []Periodic, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[Resource]Task, len(tasks))
	for _, task := range tasks {
		if _, ok := sched.State(task.Resource); !ok {
			return nil, errors.New("poll: unknown resource " + string(task.Resource))
		}
		if task.Fetch == nil || task.Apply == nil {
			return nil, errors.New("poll: task " + string(task.Resource) + " needs fetch and apply")
		}
		byName[task.Resource] = task
	}
	for _, p := range periodic {
		if p.Interval <= 0 || p.Run == nil {
			return nil, errors.New("poll: periodic " + p.Name + " needs a positive interval and a callback")
		}
	}
	return &Runner{
		sched:    sched,
		tasks:    byName,
		periodic: periodic,
		logger:   logger.Named("poll"),
	}, nil
}

// Run polls until ctx is cancelled. Cancelling also cancels pending fetches.
// It returns nil on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	results := make(chan result)
	fires := make(chan int)

	for name, task := range r.tasks {
		st, _ := r.sched.State(name)
		g.Go(func() error {
			ticker := time.NewTicker(st.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					r.tick(ctx, g, task, st.Timeout, results)
				}
			}
		})
	}

	for i, p := range r.periodic {
		g.Go(func() error {
			ticker := time.NewTicker(p.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					select {
					case fires <- i:
					case <-ctx.Done():
						return nil
					}
				}
			}
		})
	}

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case res := <-results:
				r.dispatch(res)
			case i := <-fires:
				r.guard("periodic", r.periodic[i].Name, r.periodic[i].Run)
			}
		}
	})

	return g.Wait()
}

func (r *Runner) tick(ctx context.Context, g *errgroup.Group, task Task, timeout time.Duration, results chan<- result) {
	gen, ok := r.sched.Begin(task.Resource)
	if !ok {
		r.logger.Debug("tick skipped, fetch still pending", zap.String("resource", string(task.Resource)))
		return
	}

	g.Go(func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		v, err := task.Fetch(fetchCtx)
		select {
		case results <- result{resource: task.Resource, gen: gen, value: v, err: err}:
		case <-ctx.Done():
		}
		return nil
	})
}

func (r *Runner) dispatch(res result) {
	if !r.sched.Finish(res.resource, res.gen, res.err) {
		r.logger.Debug("discarding stale result",
			zap.String("resource", string(res.resource)),
			zap.Uint64("generation", res.gen))
		return
	}
	if res.err != nil {
		r.logger.Warn("fetch failed",
			zap.String("resource", string(res.resource)),
			zap.Uint64("generation", res.gen),
			zap.Error(res.err))
		return
	}
	r.guard("apply", string(res.resource), func() { r.tasks[res.resource].Apply(res.value) })
}

// guard runs fn on the dispatcher. A panic is logged and swallowed so one
// bad payload cannot stop polling.
func (r *Runner) guard(kind, name string, fn func()) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.Error("callback panicked",
				zap.String("kind", kind),
				zap.String("name", name),
				zap.Any("panic", v),
				zap.Stack("stack"))
		}
	}()
	fn()
}
