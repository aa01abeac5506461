package chat

import (
	"container/list"
	"sync"
)

// Registry holds conversations by id, evicting the least recently used one
// when full.
type Registry struct {
	limit   int
	factory func(id string) *Conversation

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List
}

// NewRegistry creates a registry holding at most limit conversations.
func NewRegistry(limit int, factory func(id string) *Conversation) *Registry {
	if limit < 1 {
		limit = 1
	}
	return &Registry{
		limit:   limit,
		factory: factory,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the conversation for id, creating it if needed. An empty id
// yields a fresh conversation that is not retained.
func (r *Registry) Get(id string) *Conversation {
	if id == "" {
		return r.factory("")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.items[id]; ok {
		r.order.MoveToFront(el)
		return el.Value.(*Conversation)
	}

	conv := r.factory(id)
	r.items[id] = r.order.PushFront(conv)
	for r.order.Len() > r.limit {
		oldest := r.order.Back()
		r.order.Remove(oldest)
		delete(r.items, oldest.Value.(*Conversation).ID())
	}
	return conv
}

// Len returns the number of retained conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}
