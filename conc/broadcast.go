package conc

// Default buffer on subscriber channels.  A subscriber that falls this far
// behind starts dropping events rather than blocking publishers.
const SubscriberBufSize = 16

type Event[K comparable, V any] struct {
	Key     K
	Value   V
	Deleted bool
}

// Broadcaster fans events out to per-key subscribers.  The subscriber
// registry is itself a SafeDefaultMap of slices, updated through its Update
// primitive so registrations are never lost to a stale slice copy.
type Broadcaster[K comparable, V any] struct {
	subs *SafeDefaultMap[K, []chan Event[K, V]]
}

func NewBroadcaster[K comparable, V any]() *Broadcaster[K, V] {
	return &Broadcaster[K, V]{
		subs: NewSafeDefaultMap[K, []chan Event[K, V]](nil),
	}
}

// Subscribe registers interest in events for a key.  The returned cancel
// func unregisters and closes the channel; it is safe to call while
// publishes are in flight since sends and removal serialize on the
// registry's lock.
func (b *Broadcaster[K, V]) Subscribe(key K) (<-chan Event[K, V], func()) {
	ch := make(chan Event[K, V], SubscriberBufSize)
	b.subs.Update(key, func(chans []chan Event[K, V]) []chan Event[K, V] {
		return append(chans, ch)
	}, true)
	cancel := func() {
		b.subs.Update(key, func(chans []chan Event[K, V]) []chan Event[K, V] {
			out := chans[:0]
			for _, c := range chans {
				if c != ch {
					out = append(out, c)
				}
			}
			return out
		}, true)
		close(ch)
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber of ev.Key.  Sends
// are non blocking - a full subscriber channel drops the event.  Sending
// happens inside the registry's read critical section so a channel can never
// be closed out from under an in-flight send (cancel needs the write lock to
// remove it first).
func (b *Broadcaster[K, V]) Publish(ev Event[K, V]) {
	b.subs.View(func() {
		chans, _ := b.subs.Get(ev.Key, false)
		for _, ch := range chans {
			select {
			case ch <- ev:
			default:
			}
		}
	})
}

// NumSubscribers reports the current subscriber count for a key.
func (b *Broadcaster[K, V]) NumSubscribers(key K) int {
	chans, _ := b.subs.Get(key, true)
	return len(chans)
}
