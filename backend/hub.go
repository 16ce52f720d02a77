package backend

import "sync"

// hub tracks the live subscribers of each collection path so stores can fan a
// fresh snapshot out after every mutation.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[*Subscription]struct{})}
}

// subscribe registers a new subscription on path. Canceling it removes the
// registration.
func (h *hub) subscribe(path string) *Subscription {
	var sub *Subscription
	sub = newSubscription(func() {
		h.mu.Lock()
		if set, ok := h.subs[path]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, path)
			}
		}
		h.mu.Unlock()
	})
	h.mu.Lock()
	if h.subs[path] == nil {
		h.subs[path] = make(map[*Subscription]struct{})
	}
	h.subs[path][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// publish delivers snap to every subscriber of path.
func (h *hub) publish(path string, snap Snapshot) {
	for _, sub := range h.subscribers(path) {
		sub.deliver(snap)
	}
}

// publishErr delivers err to every subscriber of path.
func (h *hub) publishErr(path string, err error) {
	for _, sub := range h.subscribers(path) {
		sub.deliverErr(err)
	}
}

func (h *hub) subscribers(path string) []*Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Subscription, 0, len(h.subs[path]))
	for sub := range h.subs[path] {
		out = append(out, sub)
	}
	return out
}
