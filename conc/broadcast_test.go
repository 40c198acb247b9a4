package conc

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastToKeySubscribers(t *testing.T) {
	b := NewBroadcaster[string, int]()
	ch1, cancel1 := b.Subscribe("foo")
	ch2, cancel2 := b.Subscribe("foo")
	ch3, cancel3 := b.Subscribe("bar")
	defer cancel1()
	defer cancel2()
	defer cancel3()

	b.Publish(Event[string, int]{Key: "foo", Value: 42})

	ev := <-ch1
	assert.Equal(t, ev.Value, 42)
	ev = <-ch2
	assert.Equal(t, ev.Value, 42)

	select {
	case <-ch3:
		t.Fatal("Subscriber on another key should not receive the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := NewBroadcaster[string, string]()
	ch, cancel := b.Subscribe("k")
	assert.Equal(t, b.NumSubscribers("k"), 1)

	cancel()
	assert.Equal(t, b.NumSubscribers("k"), 0)

	// Channel is closed after cancel; publishes go nowhere.
	b.Publish(Event[string, string]{Key: "k", Value: "late"})
	_, open := <-ch
	assert.False(t, open, "Cancel should close the subscriber channel")
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroadcaster[string, int]()
	ch, cancel := b.Subscribe("k")
	defer cancel()

	done := make(chan bool)
	go func() {
		for i := 0; i < SubscriberBufSize*3; i++ {
			b.Publish(Event[string, int]{Key: "k", Value: i})
		}
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish must never block on a full subscriber")
	}
	assert.Equal(t, len(ch), SubscriberBufSize, "Overflow events are dropped")
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	b := NewBroadcaster[string, int]()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, cancel := b.Subscribe("k")
			b.Publish(Event[string, int]{Key: "k", Value: 1})
			cancel()
		}()
	}
	wg.Wait()
	assert.Equal(t, b.NumSubscribers("k"), 0)
}
