package conc

import "sync"

// SafeDefaultMap is the locked counterpart of defmap.DefaultMap.  Every
// operation takes a `lock` flag: pass true normally, pass false only from
// inside a View/Mutate block where the caller already holds the lock and
// wants to compose several operations into one critical section.
//
// Update holds the write lock across its whole read-mutate-write, so
// concurrent updates on the same key never lose a mutation - they serialize
// and all apply.  Plain Get/Set pairs do not get that guarantee (last writer
// wins); use Update for read-modify-write.
type SafeDefaultMap[K comparable, V any] struct {
	rwmutex sync.RWMutex
	creator func(key K) V
	store   map[K]V
}

func NewSafeDefaultMap[K comparable, V any](creator func(key K) V) *SafeDefaultMap[K, V] {
	return &SafeDefaultMap[K, V]{
		creator: creator,
		store:   make(map[K]V),
	}
}

func (m *SafeDefaultMap[K, V]) Get(k K, lock bool) (V, bool) {
	if lock {
		m.rwmutex.RLock()
		defer m.rwmutex.RUnlock()
	}
	value, ok := m.store[k]
	return value, ok
}

func (m *SafeDefaultMap[K, V]) Set(k K, v V, lock bool) {
	if lock {
		m.rwmutex.Lock()
		defer m.rwmutex.Unlock()
	}
	m.store[k] = v
}

// Ensure returns the value under k, creating and storing the default first
// if k is absent.  The creator runs at most once per fill, under the lock.
func (m *SafeDefaultMap[K, V]) Ensure(k K, lock bool) V {
	if lock {
		m.rwmutex.Lock()
		defer m.rwmutex.Unlock()
	}
	if value, ok := m.store[k]; ok {
		return value
	}
	var value V
	if m.creator != nil {
		value = m.creator(k)
	}
	m.store[k] = value
	return value
}

// Update fetches-or-defaults the value under k, applies the mutator and
// writes the result back, all in one critical section.  Returns the stored
// result.  If the creator or mutator panics nothing is stored.
func (m *SafeDefaultMap[K, V]) Update(k K, mutator func(value V) V, lock bool) V {
	if lock {
		m.rwmutex.Lock()
		defer m.rwmutex.Unlock()
	}
	value, ok := m.store[k]
	if !ok && m.creator != nil {
		value = m.creator(k)
	}
	if mutator != nil {
		value = mutator(value)
	}
	m.store[k] = value
	return value
}

func (m *SafeDefaultMap[K, V]) Delete(k K, lock bool) {
	if lock {
		m.rwmutex.Lock()
		defer m.rwmutex.Unlock()
	}
	delete(m.store, k)
}

func (m *SafeDefaultMap[K, V]) Len(lock bool) int {
	if lock {
		m.rwmutex.RLock()
		defer m.rwmutex.RUnlock()
	}
	return len(m.store)
}

func (m *SafeDefaultMap[K, V]) Range(lock bool, meth func(K, V) bool) {
	if lock {
		m.rwmutex.RLock()
		defer m.rwmutex.RUnlock()
	}
	for k, v := range m.store {
		if !meth(k, v) {
			break
		}
	}
}

// View runs actions while holding the read lock.  Operations called inside
// must pass lock=false.
func (m *SafeDefaultMap[K, V]) View(actions func()) {
	m.rwmutex.RLock()
	defer m.rwmutex.RUnlock()
	actions()
}

// Mutate runs actions while holding the write lock, making a multi-key
// sequence of operations one atomic unit.  Operations called inside must
// pass lock=false.
func (m *SafeDefaultMap[K, V]) Mutate(actions func()) {
	m.rwmutex.Lock()
	defer m.rwmutex.Unlock()
	actions()
}
