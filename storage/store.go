package storage

import (
	"github.com/skanaujia/defmap/conc"
)

// Store is the default-map contract over string keys and JSON list values,
// with error returns so DB backed implementations can share the interface.
// Absence is reported through the ok flag on Get, never as an error.
type Store interface {
	Get(key string) (value []any, ok bool, err error)
	Set(key string, value []any) error

	// Ensure makes key present, filling with an empty list if absent, and
	// returns the current value.
	Ensure(key string) ([]any, error)

	// Update fetches the value (or the empty-list default), applies the
	// mutator and writes the result back as one unit.  All or nothing: a
	// mutator error leaves the store exactly as it was.
	Update(key string, mutator func(value []any) ([]any, error)) ([]any, error)

	Delete(key string) error
	Keys() ([]string, error)
}

func emptyList(key string) []any {
	return []any{}
}

func cloneList(list []any) []any {
	out := make([]any, len(list))
	copy(out, list)
	return out
}

// MemStore keeps everything in a SafeDefaultMap.  Lists are copied on the
// way in and out so no caller ever aliases the stored backing array.
type MemStore struct {
	entries *conc.SafeDefaultMap[string, []any]
}

func NewMemStore() *MemStore {
	return &MemStore{entries: conc.NewSafeDefaultMap(emptyList)}
}

func (ms *MemStore) Get(key string) (out []any, ok bool, err error) {
	ms.entries.View(func() {
		var value []any
		value, ok = ms.entries.Get(key, false)
		if ok {
			out = cloneList(value)
		}
	})
	return
}

func (ms *MemStore) Set(key string, value []any) error {
	ms.entries.Set(key, cloneList(value), true)
	return nil
}

func (ms *MemStore) Ensure(key string) ([]any, error) {
	return ms.Update(key, nil)
}

func (ms *MemStore) Update(key string, mutator func(value []any) ([]any, error)) (out []any, err error) {
	ms.entries.Mutate(func() {
		value, ok := ms.entries.Get(key, false)
		if ok {
			value = cloneList(value)
		} else {
			value = emptyList(key)
		}
		if mutator != nil {
			value, err = mutator(value)
			if err != nil {
				return
			}
		}
		ms.entries.Set(key, value, false)
		out = cloneList(value)
	})
	return
}

func (ms *MemStore) Delete(key string) error {
	ms.entries.Delete(key, true)
	return nil
}

func (ms *MemStore) Keys() (out []string, err error) {
	ms.entries.Range(true, func(key string, value []any) bool {
		out = append(out, key)
		return true
	})
	return
}
