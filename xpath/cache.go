package xpath

import (
	"sync"
)

type operatorKey struct {
	op          Operator
	left, right Type
}

// OperatorCache keeps the functions resolved for each operator and pair of
// operand types. Entries are never invalidated: the lattice and the operator
// rules do not change. Resolving the same key twice is harmless, the last
// write wins.
//
// Safe for concurrent use by multiple goroutines.
type OperatorCache struct {
	mu    sync.RWMutex
	funcs map[operatorKey]BinaryFunc
}

func NewOperatorCache() *OperatorCache {
	return &OperatorCache{
		funcs: make(map[operatorKey]BinaryFunc),
	}
}

func (c *OperatorCache) Get(op Operator, left, right Type) (BinaryFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.funcs[operatorKey{op: op, left: left, right: right}]
	return fn, ok
}

func (c *OperatorCache) Set(op Operator, left, right Type, fn BinaryFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs[operatorKey{op: op, left: left, right: right}] = fn
}

// Resolve returns the cached function for the key or resolves and stores
// it. Resolution failures are not cached.
func (c *OperatorCache) Resolve(op Operator, left, right Type) (BinaryFunc, error) {
	if fn, ok := c.Get(op, left, right); ok {
		return fn, nil
	}
	fn, err := ResolveOperator(op, left, right)
	if err != nil {
		return nil, err
	}
	c.Set(op, left, right, fn)
	return fn, nil
}

func (c *OperatorCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.funcs)
}

func (c *OperatorCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.funcs)
}
