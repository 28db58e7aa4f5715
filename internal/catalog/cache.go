package catalog

import (
	"sync"
	"sync/atomic"
)

// Cache holds the current catalog snapshot for one session.
//
// Create it once at startup and hand it to the Store; tests that need
// isolation create their own. The snapshot pointer is swapped atomically,
// so a reader sees either the previous View or the next one, never a mix.
//
// Readers can poll with View or get notified with Subscribe:
//
//	cache := catalog.NewCache()
//	updates, stop := cache.Subscribe()
//	defer stop()
//	for v := range updates {
//	    render(v)
//	}
type Cache struct {
	current atomic.Pointer[View]

	mu          sync.Mutex
	subscribers map[int]chan *View
	nextID      int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{subscribers: make(map[int]chan *View)}
}

// View returns the current snapshot, or nil before the first successful load.
func (c *Cache) View() *View {
	return c.current.Load()
}

// Subscribe returns a channel that receives every new snapshot, starting
// with the current one if any. Slow subscribers only see the latest
// snapshot. The returned function unsubscribes and closes the channel.
func (c *Cache) Subscribe() (<-chan *View, func()) {
	ch := make(chan *View, 1)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = ch
	if v := c.current.Load(); v != nil {
		ch <- v
	}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

// replace publishes v and notifies subscribers.
func (c *Cache) replace(v *View) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current.Store(v)
	for _, ch := range c.subscribers {
		offer(ch, v)
	}
}

// offer delivers v, dropping a pending older snapshot if the buffer is full.
func offer(ch chan *View, v *View) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
