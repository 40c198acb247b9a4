package storage

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemStoreGetSetRoundTrip(t *testing.T) {
	ms := NewMemStore()

	_, ok, err := ms.Get("a")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, ms.Set("a", []any{"x", float64(1)}))
	value, ok, err := ms.Get("a")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, value, []any{"x", float64(1)})
}

func TestMemStoreEnsureFillsEmptyList(t *testing.T) {
	ms := NewMemStore()
	value, err := ms.Ensure("foo")
	assert.NoError(t, err)
	assert.Equal(t, value, []any{})

	got, ok, _ := ms.Get("foo")
	assert.True(t, ok, "Key must be present after Ensure")
	assert.Equal(t, got, []any{})
}

func TestMemStoreUpdateAppends(t *testing.T) {
	ms := NewMemStore()
	value, err := ms.Update("foo", func(list []any) ([]any, error) {
		return append(list, "bar"), nil
	})
	assert.NoError(t, err)
	assert.Equal(t, value, []any{"bar"})

	got, _, _ := ms.Get("foo")
	assert.Equal(t, got, []any{"bar"}, "The append must be visible in storage")
}

func TestMemStoreUpdateErrorChangesNothing(t *testing.T) {
	ms := NewMemStore()
	failed := errors.New("mutator failed")
	_, err := ms.Update("foo", func(list []any) ([]any, error) {
		return nil, failed
	})
	assert.ErrorIs(t, err, failed)

	_, ok, _ := ms.Get("foo")
	assert.False(t, ok, "A failed update on an absent key must not insert it")

	ms.Set("foo", []any{"keep"})
	_, err = ms.Update("foo", func(list []any) ([]any, error) {
		return nil, failed
	})
	assert.ErrorIs(t, err, failed)
	got, _, _ := ms.Get("foo")
	assert.Equal(t, got, []any{"keep"}, "A failed update must leave the old value intact")
}

func TestMemStoreReturnedListsDoNotAliasStorage(t *testing.T) {
	ms := NewMemStore()
	ms.Set("k", []any{"a"})

	got, _, _ := ms.Get("k")
	got[0] = "mutated"

	fresh, _, _ := ms.Get("k")
	assert.Equal(t, fresh, []any{"a"}, "Mutating a returned list must not leak into the store")
}

func TestMemStoreDeleteAndKeys(t *testing.T) {
	ms := NewMemStore()
	ms.Set("a", []any{})
	ms.Set("b", []any{})

	keys, err := ms.Keys()
	assert.NoError(t, err)
	assert.ElementsMatch(t, keys, []string{"a", "b"})

	assert.NoError(t, ms.Delete("a"))
	_, ok, _ := ms.Get("a")
	assert.False(t, ok)
}

func TestMemStoreConcurrentUpdates(t *testing.T) {
	const nworkers = 32
	ms := NewMemStore()

	var wg sync.WaitGroup
	for i := 0; i < nworkers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ms.Update("items", func(list []any) ([]any, error) {
				return append(list, i), nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, _, _ := ms.Get("items")
	assert.Equal(t, len(list), nworkers, "No concurrent append may be lost")
}

func TestEncodeDecodeList(t *testing.T) {
	encoded, err := encodeList(nil)
	assert.NoError(t, err)
	assert.Equal(t, encoded, "[]")

	out, err := decodeList(`["a", 1, {"b": true}]`)
	assert.NoError(t, err)
	assert.Equal(t, out, []any{"a", float64(1), map[string]any{"b": true}})

	out, err = decodeList("")
	assert.NoError(t, err)
	assert.Equal(t, out, []any{})
}
