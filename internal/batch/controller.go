// Package batch runs a per-item action over a queue of work items under
// START / PAUSE / RESUME / STOP control.
//
// A Controller is a state machine over Idle, Running, Paused and Stopped.
// Only Running starts new items. Commands take effect at item boundaries:
// pausing or stopping never interrupts an item already in flight, it only
// gates the next start. Every finished item is reported to the observers,
// in the order items finished, and a drained queue is reported with
// Complete, after which the controller is Idle and ready for items added
// with Enqueue.
//
//	c := batch.New(fetch, batch.WithConcurrency(2))
//	c.Subscribe(observer)
//	c.Enqueue(items...)
//	err := c.Handle(batch.CmdStart)
package batch

import (
	"context"
	"fmt"
	"sync"
)

// Action processes one item. A returned error fails that item only.
type Action[T any] func(ctx context.Context, item T) error

// Controller is safe for concurrent use.
type Controller[T any] struct {
	action      Action[T]
	concurrency int
	key         func(T) string
	ctx         context.Context

	mu         sync.Mutex
	cond       *sync.Cond
	state      State
	items      []T
	next       int
	keys       map[string]struct{}
	inFlight   int
	loopActive bool
	observers  []Observer[T]

	events *dispatcher
}

type Option[T any] func(*Controller[T])

// WithConcurrency sets how many items may be in flight at once. Default 1.
func WithConcurrency[T any](n int) Option[T] {
	return func(c *Controller[T]) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithKey makes Enqueue drop items whose key was already enqueued.
func WithKey[T any](key func(T) string) Option[T] {
	return func(c *Controller[T]) {
		c.key = key
	}
}

// WithContext sets the context actions run with. Cancelling it does not
// change the controller state; it is up to the action to honor it.
func WithContext[T any](ctx context.Context) Option[T] {
	return func(c *Controller[T]) {
		c.ctx = ctx
	}
}

// New creates an Idle controller with an empty queue.
func New[T any](action Action[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		action:      action,
		concurrency: 1,
		ctx:         context.Background(),
		state:       StateIdle,
		keys:        make(map[string]struct{}),
		events:      newDispatcher(),
	}
	c.cond = sync.NewCond(&c.mu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers an observer for all future events.
func (c *Controller[T]) Subscribe(o Observer[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Enqueue appends items to the queue and returns how many were accepted.
// Items added while Running are picked up by the current run.
func (c *Controller[T]) Enqueue(items ...T) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, item := range items {
		if c.key != nil {
			k := c.key(item)
			if _, dup := c.keys[k]; dup {
				continue
			}
			c.keys[k] = struct{}{}
		}
		c.items = append(c.items, item)
		added++
	}
	c.cond.Broadcast()
	return added
}

// Handle applies a command. Unknown commands return ErrUnknownCommand and
// commands not valid in the current state return ErrInvalidTransition; the
// state is unchanged in both cases.
func (c *Controller[T]) Handle(cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	to, err := transition(c.state, cmd)
	if err != nil {
		return err
	}
	c.setState(to)

	if to == StateRunning && !c.loopActive {
		c.loopActive = true
		go c.loop()
	}
	c.cond.Broadcast()
	return nil
}

// Start is Handle(CmdStart).
func (c *Controller[T]) Start() error { return c.Handle(CmdStart) }

// Pause is Handle(CmdPause).
func (c *Controller[T]) Pause() error { return c.Handle(CmdPause) }

// Stop is Handle(CmdStop).
func (c *Controller[T]) Stop() error { return c.Handle(CmdStop) }

// Reset leaves Stopped for Idle and drops every item not yet started.
// Items still in flight finish and are reported as usual.
func (c *Controller[T]) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateStopped && c.state != StateIdle {
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, c.state)
	}
	c.items = nil
	c.next = 0
	c.keys = make(map[string]struct{})
	c.setState(StateIdle)
	return nil
}

// State returns the current state.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats is a snapshot of the queue.
type Stats struct {
	State    State `json:"state"`
	Total    int   `json:"total"`
	Started  int   `json:"started"`
	InFlight int   `json:"in_flight"`
}

func (c *Controller[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{State: c.state, Total: len(c.items), Started: c.next, InFlight: c.inFlight}
}

// Wait blocks until no item is in flight, the dispatch loop has exited and
// every event has been delivered. It must not be called from an observer.
func (c *Controller[T]) Wait(ctx context.Context) error {
	// Wake the cond wait below when ctx ends. The broadcast takes c.mu, so it
	// cannot slip in between the ctx check and cond.Wait.
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	defer stop()

	c.mu.Lock()
	for c.inFlight > 0 || c.loopActive {
		if err := ctx.Err(); err != nil {
			c.mu.Unlock()
			return err
		}
		c.cond.Wait()
	}
	c.mu.Unlock()

	return c.events.wait(ctx)
}

// loop starts items while Running. It exits when the state leaves Running or
// the queue is drained.
func (c *Controller[T]) loop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		for c.state == StateRunning && c.inFlight >= c.concurrency {
			c.cond.Wait()
		}
		if c.state != StateRunning {
			break
		}

		if c.next >= len(c.items) {
			if c.inFlight > 0 {
				c.cond.Wait()
				continue
			}
			c.emitComplete()
			c.setState(StateIdle)
			break
		}

		item := c.items[c.next]
		c.next++
		c.inFlight++
		go c.run(item)
	}

	c.loopActive = false
	c.cond.Broadcast()
}

func (c *Controller[T]) run(item T) {
	err := c.invoke(item)

	c.mu.Lock()
	c.inFlight--
	c.emitResult(item, err)
	c.cond.Broadcast()
	c.mu.Unlock()
}

func (c *Controller[T]) invoke(item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()
	return c.action(c.ctx, item)
}

// The emit helpers must be called with c.mu held so that event order
// follows the order of state changes.

func (c *Controller[T]) setState(to State) {
	from := c.state
	if from == to {
		return
	}
	c.state = to

	observers := c.snapshot()
	c.events.push(func() {
		for _, o := range observers {
			if so, ok := o.(StateObserver); ok {
				so.StateChanged(from, to)
			}
		}
	})
}

func (c *Controller[T]) emitResult(item T, err error) {
	observers := c.snapshot()
	c.events.push(func() {
		for _, o := range observers {
			if err != nil {
				o.Error(item, err)
			} else {
				o.Next(item)
			}
		}
	})
}

func (c *Controller[T]) emitComplete() {
	observers := c.snapshot()
	c.events.push(func() {
		for _, o := range observers {
			o.Complete()
		}
	})
}

func (c *Controller[T]) snapshot() []Observer[T] {
	return append([]Observer[T](nil), c.observers...)
}
