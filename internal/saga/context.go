package saga

import "sync"

// ProgressFunc receives (percent 0..100, message) at step boundaries
type ProgressFunc func(percent int, message string)

// Context carries the mutable state of one saga run: per-step results and a
// shared key/value registry for artifacts passed between steps. It is owned
// by a single orchestrator run and discarded when the run ends; artifacts
// placed in it belong to the step that created them until that step's
// compensation releases them or the run completes.
type Context struct {
	SagaID string

	mu       sync.RWMutex
	results  map[string]Result      // Protected by mu, keyed by step ID
	shared   map[string]interface{} // Protected by mu
	progress ProgressFunc
}

// NewContext creates the context for one saga run
func NewContext(sagaID string, progress ProgressFunc) *Context {
	return &Context{
		SagaID:   sagaID,
		results:  make(map[string]Result),
		shared:   make(map[string]interface{}),
		progress: progress,
	}
}

// Put stores a shared artifact under key
func (c *Context) Put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shared[key] = value
}

// Get retrieves a shared artifact
func (c *Context) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.shared[key]
	return v, ok
}

// Delete removes a shared artifact. Removing an absent key is a no-op, which
// lets compensation treat missing keys as already cleaned up.
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.shared, key)
}

// Keys returns the shared artifact keys in no particular order
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.shared))
	for k := range c.shared {
		keys = append(keys, k)
	}
	return keys
}

// Result returns the recorded result for a step ID
func (c *Context) Result(stepID string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[stepID]
	return r, ok
}

// Results returns a copy of all recorded step results
func (c *Context) Results() map[string]Result {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Result, len(c.results))
	for k, v := range c.results {
		out[k] = v
	}
	return out
}

// ReportProgress invokes the run's progress callback, if any
func (c *Context) ReportProgress(percent int, message string) {
	if c.progress != nil {
		c.progress(percent, message)
	}
}

func (c *Context) recordResult(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[r.StepID] = r
}

// Key is a typed token over the shared registry, so steps exchange artifacts
// without casting at every call site.
type Key[T any] struct {
	name string
}

// NewKey creates a typed key with a well-known name
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the underlying registry key
func (k Key[T]) Name() string { return k.name }

// Put stores a typed artifact in the run's shared registry
func Put[T any](c *Context, key Key[T], value T) {
	c.Put(key.name, value)
}

// Lookup retrieves a typed artifact; ok is false when the key is absent or
// holds a different type
func Lookup[T any](c *Context, key Key[T]) (T, bool) {
	var zero T
	v, ok := c.Get(key.name)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Remove deletes a typed artifact from the shared registry
func Remove[T any](c *Context, key Key[T]) {
	c.Delete(key.name)
}
