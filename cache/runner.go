package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/singleflight"
)

// Runner executes read operations through a Service. Concurrent calls for the
// same key share one execution, and a result fetched before an invalidation is
// handed to its callers but never stored.
type Runner struct {
	svc    Service
	ttl    time.Duration
	logger echo.Logger

	group singleflight.Group

	mu         sync.Mutex
	generation uint64
}

func NewRunner(svc Service, ttl time.Duration, logger echo.Logger) *Runner {
	return &Runner{svc: svc, ttl: ttl, logger: logger}
}

// Invalidate drops every entry stored under the given tags.
func (r *Runner) Invalidate(ctx context.Context, tags ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	return r.svc.Invalidate(ctx, tags...)
}

// Tags returns a tag function that ignores the value.
func Tags[T any](tags ...string) func(T) []string {
	return func(T) []string { return tags }
}

// Fetch returns the cached value under key or runs fn to produce it. The
// result is stored under the tags computed from it, and only when fn
// succeeds. Cache backend failures degrade to calling fn and are logged.
//
// Calls are shared per key and generation, so a caller arriving after an
// invalidation never joins a fetch that started before it.
func Fetch[T any](ctx context.Context, r *Runner, key string, tags func(T) []string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	r.mu.Lock()
	gen := r.generation
	r.mu.Unlock()

	data, err := r.svc.Get(ctx, key)
	if err != nil {
		r.logger.Warnj(log.JSON{"msg": "cache read failed", "key": key, "error": err.Error()})
	}
	if data != nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		r.logger.Warnj(log.JSON{"msg": "cache entry undecodable", "key": key})
	}

	shared, err, _ := r.group.Do(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		v, err := fn(fctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		r.store(fctx, gen, key, data, tags(v))
		return data, nil
	})
	if err != nil {
		return zero, err
	}

	// every caller decodes its own copy
	var v T
	if err := json.Unmarshal(shared.([]byte), &v); err != nil {
		return zero, err
	}
	return v, nil
}

// store writes data unless an invalidation happened since gen was read.
func (r *Runner) store(ctx context.Context, gen uint64, key string, data []byte, tags []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		return
	}
	if err := r.svc.Set(ctx, key, data, tags, r.ttl); err != nil {
		r.logger.Warnj(log.JSON{"msg": "cache write failed", "key": key, "error": err.Error()})
	}
}
