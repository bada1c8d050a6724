package apiclient

import "sync"

// Cache topics, matching the server's invalidation topics.
const (
	TopicProducts = "products"
	TopicReviews  = "reviews"
	TopicUsers    = "users"
)

// QueryCache holds decoded query results grouped by topic. Cached values are
// shared between callers and must not be modified.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]map[string]any
	// gens counts invalidations per topic; epoch counts Clear calls.
	gens  map[string]uint64
	epoch uint64
}

func NewQueryCache() *QueryCache {
	return &QueryCache{
		entries: make(map[string]map[string]any),
		gens:    make(map[string]uint64),
	}
}

func (q *QueryCache) Get(topic, key string) (any, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	v, ok := q.entries[topic][key]
	return v, ok
}

func (q *QueryCache) Put(topic, key string, v any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.put(topic, key, v)
}

// generation changes whenever topic is invalidated or the cache is cleared.
func (q *QueryCache) generation(topic string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.epoch + q.gens[topic]
}

// putIfCurrent stores v only if topic is still at generation gen.
func (q *QueryCache) putIfCurrent(topic, key string, v any, gen uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.epoch+q.gens[topic] != gen {
		return false
	}
	q.put(topic, key, v)
	return true
}

func (q *QueryCache) put(topic, key string, v any) {
	m, ok := q.entries[topic]
	if !ok {
		m = make(map[string]any)
		q.entries[topic] = m
	}
	m[key] = v
}

// Invalidate drops every entry stored under each topic.
func (q *QueryCache) Invalidate(topics ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range topics {
		delete(q.entries, t)
		q.gens[t]++
	}
}

// Clear drops everything.
func (q *QueryCache) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.entries)
	q.epoch++
}

// Len counts cached entries across topics.
func (q *QueryCache) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, m := range q.entries {
		n += len(m)
	}
	return n
}

// cached returns the entry for key under topic, loading and storing it on a
// miss. Failed loads are not cached, nor are loads that overlapped an
// invalidation of topic.
func cached[T any](q *QueryCache, topic, key string, load func() (T, error)) (T, error) {
	if v, ok := q.Get(topic, key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	gen := q.generation(topic)
	v, err := load()
	if err != nil {
		return v, err
	}
	q.putIfCurrent(topic, key, v, gen)
	return v, nil
}
