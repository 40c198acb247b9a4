package defmap

// DefaultMap wraps a plain map and fills in missing entries on demand via a
// creator function bound at construction.  The creator is lazy - it only runs
// when a key is actually absent, and exactly once per fill.
//
// Values read out of the map are copies (for slice values, header copies), so
// mutating a returned value never changes what is stored.  Update is the one
// primitive that writes a mutation back; callers that want "append to the
// list under this key" must go through it rather than Ensure-then-append.
type DefaultMap[K comparable, V any] struct {
	entries map[K]V
	creator func(key K) V
}

func New[K comparable, V any](creator func(key K) V) *DefaultMap[K, V] {
	return &DefaultMap[K, V]{
		entries: make(map[K]V),
		creator: creator,
	}
}

// NewFrom seeds the map with a copy of the given entries.  The caller's map
// is not retained.
func NewFrom[K comparable, V any](creator func(key K) V, entries map[K]V) *DefaultMap[K, V] {
	out := New[K, V](creator)
	for k, v := range entries {
		out.entries[k] = v
	}
	return out
}

func (tm *DefaultMap[K, V]) Get(key K) (V, bool) {
	value, ok := tm.entries[key]
	return value, ok
}

func (tm *DefaultMap[K, V]) Set(key K, value V) {
	tm.entries[key] = value
}

// Ensure returns the value under key, creating and storing a default first if
// the key is absent.  After Ensure the key is always present.
func (tm *DefaultMap[K, V]) Ensure(key K) V {
	return tm.EnsureWith(key, tm.creator)
}

// EnsureWith is Ensure with a per-call creator instead of the bound one.  A
// nil creator fills with the zero value.  If the creator panics nothing is
// stored and the key stays absent.
func (tm *DefaultMap[K, V]) EnsureWith(key K, creator func(key K) V) V {
	if value, ok := tm.entries[key]; ok {
		return value
	}
	var value V
	if creator != nil {
		value = creator(key)
	}
	tm.entries[key] = value
	return value
}

// Update fetches the value under key (or creates the default, without storing
// it yet), applies the mutator and writes the result back.  The write back is
// unconditional so a mutation can never be silently lost the way it is when a
// caller appends to the copy returned by Ensure.  Returns the stored result.
func (tm *DefaultMap[K, V]) Update(key K, mutator func(value V) V) V {
	return tm.UpdateWith(key, tm.creator, mutator)
}

// UpdateWith is Update with a per-call creator.  If the creator or mutator
// panics the map is left exactly as it was - the store only happens after
// both have returned.
func (tm *DefaultMap[K, V]) UpdateWith(key K, creator func(key K) V, mutator func(value V) V) V {
	value, ok := tm.entries[key]
	if !ok && creator != nil {
		value = creator(key)
	}
	if mutator != nil {
		value = mutator(value)
	}
	tm.entries[key] = value
	return value
}

// Delete is outside the default-fill contract - Ensure/Update never remove
// entries - but is provided so callers dont have to reach into the raw map.
func (tm *DefaultMap[K, V]) Delete(key K) {
	delete(tm.entries, key)
}

func (tm *DefaultMap[K, V]) Len() int {
	return len(tm.entries)
}

func (tm *DefaultMap[K, V]) Range(meth func(key K, value V) bool) {
	for k, v := range tm.entries {
		if !meth(k, v) {
			break
		}
	}
}

// Items returns a copy of the underlying map.  Mutating it does not affect
// the DefaultMap.
func (tm *DefaultMap[K, V]) Items() map[K]V {
	out := make(map[K]V, len(tm.entries))
	for k, v := range tm.entries {
		out[k] = v
	}
	return out
}

func (tm *DefaultMap[K, V]) Keys() (out []K) {
	for k := range tm.entries {
		out = append(out, k)
	}
	return
}

func (tm *DefaultMap[K, V]) Values() (out []V) {
	for _, v := range tm.entries {
		out = append(out, v)
	}
	return
}
