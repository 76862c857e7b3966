// ABOUTME: Generic in-memory list of one entity type kept consistent with its repository
// ABOUTME: Serializes remote operations per controller and patches items only after success
package cache

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/harperreed/rapport/models"
)

// Repository is the per-entity store a Controller mirrors.
type Repository[T models.Entity, In any, P any] interface {
	FetchAll(ctx context.Context) ([]T, error)
	FetchOne(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id string, patch P) (T, error)
	Delete(ctx context.Context, id string) error
}

type Options struct {
	Logger  *slog.Logger
	Metrics *Metrics
}

// Controller holds the full visible list of one entity type.
//
// Remote operations on one controller run one at a time in call order, so a
// load issued later always overwrites one issued earlier. Different
// controllers are independent.
type Controller[T models.Entity, In any, P any] struct {
	entity  string
	repo    Repository[T, In, P]
	logger  *slog.Logger
	metrics *Metrics

	opMu sync.Mutex
	gets singleflight.Group

	mu      sync.RWMutex
	items   []T
	status  Status
	err     error
	subs    map[int]func(Snapshot[T])
	nextSub int
}

func NewController[T models.Entity, In any, P any](entity string, repo Repository[T, In, P], opts Options) *Controller[T, In, P] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T, In, P]{
		entity:  entity,
		repo:    repo,
		logger:  logger.With("entity", entity),
		metrics: opts.Metrics,
		items:   []T{},
		subs:    make(map[int]func(Snapshot[T])),
	}
}

func (c *Controller[T, In, P]) Entity() string { return c.entity }

func (c *Controller[T, In, P]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Controller[T, In, P]) snapshotLocked() Snapshot[T] {
	items := make([]T, len(c.items))
	copy(items, c.items)
	return Snapshot[T]{Items: items, Status: c.status, Err: c.err}
}

// Items returns a copy of the cached list in its current order.
func (c *Controller[T, In, P]) Items() []T {
	return c.Snapshot().Items
}

func (c *Controller[T, In, P]) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Err is the error of the last failed load, or nil.
func (c *Controller[T, In, P]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Subscribe registers fn to receive a snapshot after every state change.
// Calling the returned function stops delivery; a response that lands
// afterwards is simply not reported.
func (c *Controller[T, In, P]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// update mutates state under the lock, then notifies subscribers outside it.
func (c *Controller[T, In, P]) update(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.snapshotLocked()
	subs := make([]func(Snapshot[T]), 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		s(snap)
	}
}

// Load replaces items with a fresh FetchAll. On failure the previous items
// stay in place and the status becomes Failed; calling Load again retries.
func (c *Controller[T, In, P]) Load(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.update(func() { c.status = Loading })
	c.logger.Debug("load started")

	done := c.metrics.begin(c.entity, "load")
	items, err := c.repo.FetchAll(ctx)
	done(err)

	if err != nil {
		c.logger.Warn("load failed", "op", "load", "error", err)
		c.update(func() {
			c.status = Failed
			c.err = err
		})
		return err
	}

	if items == nil {
		items = []T{}
	}
	c.update(func() {
		c.items = items
		c.status = Ready
		c.err = nil
	})
	c.logger.Debug("load finished", "count", len(items))
	return nil
}

// Add creates the entity remotely and appends the result. Items are not re-sorted.
func (c *Controller[T, In, P]) Add(ctx context.Context, in In) (T, error) {
	return c.appendResult(ctx, "add", func(ctx context.Context) (T, error) {
		return c.repo.Create(ctx, in)
	})
}

// Update patches the entity remotely and replaces it in place.
func (c *Controller[T, In, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	return c.replaceResult(ctx, "update", id, func(ctx context.Context) (T, error) {
		return c.repo.Update(ctx, id, patch)
	})
}

// Remove deletes the entity remotely and drops it from items.
func (c *Controller[T, In, P]) Remove(ctx context.Context, id string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	done := c.metrics.begin(c.entity, "remove")
	err := c.repo.Delete(ctx, id)
	done(err)
	if err != nil {
		c.logger.Warn("remove failed", "op", "remove", "id", id, "error", err)
		return err
	}

	c.update(func() {
		kept := make([]T, 0, len(c.items))
		for _, item := range c.items {
			if item.EntityID() != id {
				kept = append(kept, item)
			}
		}
		c.items = kept
	})
	c.logger.Debug("removed", "id", id)
	return nil
}

// Get always fetches from the repository and never inserts into items.
// Concurrent calls for the same id share one request. The shared request
// runs to completion; a caller whose ctx ends stops waiting without
// cancelling it for the others.
func (c *Controller[T, In, P]) Get(ctx context.Context, id string) (T, error) {
	ch := c.gets.DoChan(id, func() (any, error) {
		done := c.metrics.begin(c.entity, "get")
		item, err := c.repo.FetchOne(context.WithoutCancel(ctx), id)
		done(err)
		return item, err
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.logger.Debug("get failed", "op", "get", "id", id, "error", res.Err)
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *Controller[T, In, P]) appendResult(ctx context.Context, op string, call func(context.Context) (T, error)) (T, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	done := c.metrics.begin(c.entity, op)
	item, err := call(ctx)
	done(err)
	if err != nil {
		c.logger.Warn(op+" failed", "op", op, "error", err)
		return item, err
	}

	c.update(func() { c.items = append(c.items, item) })
	c.logger.Debug(op+" finished", "id", item.EntityID())
	return item, nil
}

// replaceResult swaps the first item with a matching id. An id that is not
// cached is left out; the next Load picks it up.
func (c *Controller[T, In, P]) replaceResult(ctx context.Context, op, id string, call func(context.Context) (T, error)) (T, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	done := c.metrics.begin(c.entity, op)
	item, err := call(ctx)
	done(err)
	if err != nil {
		c.logger.Warn(op+" failed", "op", op, "id", id, "error", err)
		return item, err
	}

	c.update(func() {
		items := make([]T, len(c.items))
		copy(items, c.items)
		for i := range items {
			if items[i].EntityID() == id {
				items[i] = item
				break
			}
		}
		c.items = items
	})
	c.logger.Debug(op+" finished", "id", id)
	return item, nil
}
