// Package flight coalesces concurrent fetches of the same cache key so that
// one network call serves every waiter.
package flight

import "sync"

// Group tracks in-flight fetches by key. The first caller for a key becomes
// the owner and runs the fetch; callers arriving while it runs wait and
// receive the owner's result.
type Group struct {
	mu sync.Mutex
	m  map[string]*call
}

type call struct {
	wg  sync.WaitGroup
	val any
	err error
}

// New creates an empty Group.
func New() *Group {
	return &Group{m: make(map[string]*call)}
}

// Do runs fn, ensuring at most one execution per key is in flight. Waiters
// for the same key block until the owner finishes and share its result. The
// key is released once the owner's result has been recorded, so a later call
// fetches again.
func (g *Group) Do(key string, fn func() (any, error)) (any, error) {
	g.mu.Lock()
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err
	}

	c := &call{}
	c.wg.Add(1)
	g.m[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	c.wg.Done()

	g.mu.Lock()
	if g.m[key] == c {
		delete(g.m, key)
	}
	g.mu.Unlock()

	return c.val, c.err
}

// Forget drops the in-flight record for key. Future calls with the same key
// run their own fetch even if an earlier one has not finished.
func (g *Group) Forget(key string) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}
