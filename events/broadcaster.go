// Package events fans out contribution activity to clients following a
// thread over Server-Sent Events. Each subscriber gets its own buffered
// channel; a subscriber that falls behind misses events instead of stalling
// the publisher.
package events

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/forum-go/logger"
)

// subscriberBuffer is how many events may queue for one slow subscriber.
const subscriberBuffer = 32

// Event names.
const (
	ContributionCreated = "contribution.created"
	ContributionUpdated = "contribution.updated"
	ContributionDeleted = "contribution.deleted"
)

// Event is one message on a thread's stream. Data is already JSON encoded.
type Event struct {
	Name string
	Data []byte
}

type subscriber struct {
	threadID string
	ch       chan Event
}

// Broadcaster tracks subscribers per thread.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[string]*subscriber            // subscriber id -> subscriber
	threads map[string]map[string]*subscriber // thread id -> subscriber id -> subscriber
	log     *zap.Logger
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster(log *zap.Logger) *Broadcaster {
	return &Broadcaster{
		subs:    make(map[string]*subscriber),
		threads: make(map[string]map[string]*subscriber),
		log:     logger.OrNop(log),
	}
}

// Subscribe registers a listener for threadID and returns its id and event channel.
// The channel is closed by Unsubscribe.
func (b *Broadcaster) Subscribe(threadID string) (string, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	sub := &subscriber{threadID: threadID, ch: make(chan Event, subscriberBuffer)}
	b.subs[id] = sub
	if b.threads[threadID] == nil {
		b.threads[threadID] = make(map[string]*subscriber)
	}
	b.threads[threadID][id] = sub

	b.log.Debug("subscriber added", zap.String("subscriber_id", id), zap.String("thread_id", threadID))
	return id, sub.ch
}

// Unsubscribe removes the subscriber and closes its channel. Unknown ids are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	if peers := b.threads[sub.threadID]; peers != nil {
		delete(peers, id)
		if len(peers) == 0 {
			delete(b.threads, sub.threadID)
		}
	}
	close(sub.ch)
	b.log.Debug("subscriber removed", zap.String("subscriber_id", id), zap.String("thread_id", sub.threadID))
}

// Publish delivers ev to every subscriber of threadID and returns how many
// received it. Full subscriber buffers drop the event.
func (b *Broadcaster) Publish(threadID string, ev Event) int {
	// The read lock also keeps Unsubscribe from closing a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for id, sub := range b.threads[threadID] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			b.log.Warn("dropping event for slow subscriber",
				zap.String("subscriber_id", id),
				zap.String("thread_id", threadID),
				zap.String("event", ev.Name),
			)
		}
	}
	return delivered
}

// Subscribers returns the number of listeners on threadID.
func (b *Broadcaster) Subscribers(threadID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.threads[threadID])
}
