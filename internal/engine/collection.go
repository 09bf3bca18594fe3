package engine

// collection is a keyed, insertion-ordered store. The engine never needs more
// than get/put/scan, so keeping the interface this small leaves room to back
// it with a transactional store without touching the algorithms above it.
type collection[V any] struct {
	keys  []string
	byKey map[string]V
}

func newCollection[V any]() *collection[V] {
	return &collection[V]{byKey: make(map[string]V)}
}

func (c *collection[V]) get(key string) (V, bool) {
	v, ok := c.byKey[key]
	return v, ok
}

func (c *collection[V]) put(key string, v V) {
	if _, exists := c.byKey[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.byKey[key] = v
}

func (c *collection[V]) len() int {
	return len(c.keys)
}

// values returns entries in insertion order.
func (c *collection[V]) values() []V {
	out := make([]V, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.byKey[k])
	}
	return out
}
