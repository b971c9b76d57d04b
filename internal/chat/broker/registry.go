package broker

import (
	"sync"
)

// Subscriber receives published payloads. Delivery is best-effort; a
// subscriber that errors is simply skipped.
type Subscriber interface {
	Deliver(payload []byte) error
}

// GroupRegistry fans a payload out to every live subscriber of a group
// (topic = conversation id). Membership is ephemeral: rebuilt on reconnect,
// never persisted.
type GroupRegistry interface {
	Subscribe(groupID string, sub Subscriber)
	Unsubscribe(groupID string, sub Subscriber)
	Publish(groupID string, payload []byte)
}

// MemoryRegistry is the in-process registry used by a single-node
// deployment and by tests.
type MemoryRegistry struct {
	mu     sync.RWMutex
	groups map[string]map[Subscriber]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		groups: make(map[string]map[Subscriber]struct{}),
	}
}

func (r *MemoryRegistry) Subscribe(groupID string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group := r.groups[groupID]
	if group == nil {
		group = make(map[Subscriber]struct{})
		r.groups[groupID] = group
	}
	group[sub] = struct{}{}
}

func (r *MemoryRegistry) Unsubscribe(groupID string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group := r.groups[groupID]
	if group == nil {
		return
	}
	delete(group, sub)
	if len(group) == 0 {
		delete(r.groups, groupID)
	}
}

func (r *MemoryRegistry) Publish(groupID string, payload []byte) {
	r.mu.RLock()
	subs := make([]Subscriber, 0, len(r.groups[groupID]))
	for sub := range r.groups[groupID] {
		subs = append(subs, sub)
	}
	r.mu.RUnlock()

	for _, sub := range subs {
		_ = sub.Deliver(payload) // best-effort, gone subscribers are skipped
	}
}

// Size reports the current subscriber count of a group.
func (r *MemoryRegistry) Size(groupID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[groupID])
}
