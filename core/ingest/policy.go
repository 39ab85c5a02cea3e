package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Policy is the process-wide import configuration a run reads once at start.
type Policy struct {
	DefaultOwner       string `json:"default_owner"`
	DefaultType        string `json:"default_type"`
	DefaultDescription string `json:"default_description"`
	IPFallback         bool   `json:"ip_fallback"`
}

// PolicyLoader reads the current policy from its source of truth.
type PolicyLoader func(ctx context.Context) (Policy, error)

// PolicyCache keeps the loaded policy in memory until invalidated.
type PolicyCache struct {
	load PolicyLoader

	mu       sync.RWMutex
	current  *Policy
	loadedAt time.Time
	sf       singleflight.Group
}

// NewPolicyCache creates an empty cache. The first Get loads the policy.
func NewPolicyCache(load PolicyLoader) *PolicyCache {
	return &PolicyCache{load: load}
}

// StaticPolicy returns a cache that always yields p.
func StaticPolicy(p Policy) *PolicyCache {
	return NewPolicyCache(func(context.Context) (Policy, error) { return p, nil })
}

// Get returns the cached policy, loading it when absent. Concurrent callers
// share a single load.
func (c *PolicyCache) Get(ctx context.Context) (Policy, error) {
	c.mu.RLock()
	cur := c.current
	c.mu.RUnlock()
	if cur != nil {
		return *cur, nil
	}

	v, err, _ := c.sf.Do("policy", func() (any, error) {
		c.mu.RLock()
		cur := c.current
		c.mu.RUnlock()
		if cur != nil {
			return *cur, nil
		}

		p, err := c.load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load import policy: %w", err)
		}

		c.mu.Lock()
		c.current = &p
		c.loadedAt = time.Now()
		c.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return Policy{}, err
	}
	return v.(Policy), nil
}

// Invalidate drops the cached policy; the next Get reloads it.
func (c *PolicyCache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

// LoadedAt reports when the cached policy was loaded, or zero.
func (c *PolicyCache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return time.Time{}
	}
	return c.loadedAt
}

// WatchPolicy invalidates cache whenever the file at path is written,
// created, renamed or removed, until ctx is done. The parent directory is
// watched so editors that replace the file are picked up.
func WatchPolicy(ctx context.Context, path string, cache *PolicyCache, log *zap.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				cache.Invalidate()
				log.Info("Import policy invalidated", zap.String("file", target), zap.String("op", ev.Op.String()))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("Policy watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
