package notify

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

const subscriberBuffer = 64

// Broadcaster fans notices out to live subscribers. A subscriber whose
// buffer is full misses the notice; producers never block.
type Broadcaster struct {
	subscribers map[uint64]chan *models.Notice
	nextID      atomic.Uint64
	dropped     atomic.Uint64
	closed      bool
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.Notice),
	}
}

// Subscribe registers a new subscriber. After Close the returned channel
// is already closed.
func (b *Broadcaster) Subscribe() (uint64, <-chan *models.Notice) {
	id := b.nextID.Add(1)
	ch := make(chan *models.Notice, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subscribers[id] = ch
	}
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(n *models.Notice) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- n:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped is the number of deliveries skipped because a subscriber was
// not keeping up.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes all subscriber channels so streams end.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
