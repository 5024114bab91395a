package realtime

import "sync"

// subscriberBuffer is the per-subscriber event backlog. A subscriber that
// falls further behind than this starts losing events (delivery is
// best-effort, at most once).
const subscriberBuffer = 64

// Hub is the in-process multicast layer: named channels, each with a set of
// subscribers identified by connection id. Safe for concurrent use by many
// connection goroutines and REST handlers.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[string]chan Event
}

func NewHub() *Hub {
	return &Hub{
		groups: make(map[string]map[string]chan Event),
	}
}

// Join subscribes subscriberID to the named channel and returns its event
// stream. Joining twice with the same id replaces the previous subscription.
func (h *Hub) Join(channel, subscriberID string) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.groups[channel]
	if !ok {
		subs = make(map[string]chan Event)
		h.groups[channel] = subs
	}
	if old, ok := subs[subscriberID]; ok {
		close(old)
	}

	ch := make(chan Event, subscriberBuffer)
	subs[subscriberID] = ch
	return ch
}

// Leave removes a subscriber from a channel and closes its stream. Leaving a
// channel it never joined is a no-op; the channel entry is dropped once the
// last subscriber is gone.
func (h *Hub) Leave(channel, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.groups[channel]
	if !ok {
		return
	}
	if ch, ok := subs[subscriberID]; ok {
		close(ch)
		delete(subs, subscriberID)
	}
	if len(subs) == 0 {
		delete(h.groups, channel)
	}
}

// Broadcast delivers an event to every subscriber of the channel, including
// the publisher's own connection if it is subscribed. Sends are non-blocking:
// a full buffer means the subscriber loses this event. Events published
// sequentially by one goroutine arrive in publish order.
func (h *Hub) Broadcast(channel string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.groups[channel] {
		select {
		case ch <- event:
		default:
			// Subscriber is slow or mid-disconnect; drop.
		}
	}
}

// SubscriberCount returns the number of live subscriptions on a channel.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[channel])
}
