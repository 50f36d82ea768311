package bus

import (
	"sort"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/pkg/exception"
)

// Handler consumes messages delivered by the bus. Handlers are compared by
// ID, so one logical handler may be subscribed under several patterns.
type Handler interface {
	ID() string
	Handle(msg any)
}

type funcHandler struct {
	id string
	fn func(msg any)
}

func (h *funcHandler) ID() string     { return h.id }
func (h *funcHandler) Handle(msg any) { h.fn(msg) }

// HandlerFunc wraps a function as a Handler.
func HandlerFunc(id string, fn func(msg any)) Handler {
	return &funcHandler{id: id, fn: fn}
}

type subscription struct {
	pattern  string
	handler  Handler
	priority uint8
}

// Bus routes messages point-to-point via endpoints and one-to-many via
// topic subscriptions with wildcard patterns.
//
// The bus is single-threaded: all calls must come from the engine loop.
// Inbound work from other goroutines enters through a Queue.
type Bus struct {
	endpoints     map[string]Handler
	subscriptions []subscription

	// patterns caches, per published topic, the matching subscriptions in
	// delivery order. Invalidated on every subscribe and unsubscribe.
	patterns map[string][]subscription
}

func New() *Bus {
	return &Bus{
		endpoints: make(map[string]Handler),
		patterns:  make(map[string][]subscription),
	}
}

// Register binds an endpoint name to a handler, replacing any previous one.
func (b *Bus) Register(endpoint string, handler Handler) error {
	if endpoint == "" {
		return errors.Wrap(exception.ErrEmptyTopic, "register")
	}
	if handler == nil {
		return errors.Wrap(exception.ErrEmptyHandler, "register")
	}
	b.endpoints[endpoint] = handler
	return nil
}

// Deregister removes an endpoint binding.
func (b *Bus) Deregister(endpoint string) {
	delete(b.endpoints, endpoint)
}

// Endpoint returns the handler bound to the endpoint, if any.
func (b *Bus) Endpoint(endpoint string) (Handler, bool) {
	h, ok := b.endpoints[endpoint]
	return h, ok
}

// Send delivers a message to one endpoint. Unknown endpoints are logged
// and the message is dropped.
func (b *Bus) Send(endpoint string, msg any) {
	h, ok := b.endpoints[endpoint]
	if !ok {
		logs.Errorf("send to unknown endpoint %q, message dropped", endpoint)
		return
	}
	h.Handle(msg)
}

// Subscribe adds a handler under a pattern. Patterns may contain '*' and
// '?' wildcards. Subscribing an already-subscribed (pattern, handler id)
// pair is a logged no-op.
func (b *Bus) Subscribe(pattern string, handler Handler, priority uint8) error {
	if pattern == "" {
		return errors.Wrap(exception.ErrEmptyTopic, "subscribe")
	}
	if handler == nil {
		return errors.Wrap(exception.ErrEmptyHandler, "subscribe")
	}
	for _, sub := range b.subscriptions {
		if sub.pattern == pattern && sub.handler.ID() == handler.ID() {
			logs.Errorf("handler %q already subscribed to %q", handler.ID(), pattern)
			return nil
		}
	}

	b.subscriptions = append(b.subscriptions, subscription{
		pattern:  pattern,
		handler:  handler,
		priority: priority,
	})
	b.invalidate(pattern)
	return nil
}

// Unsubscribe removes a (pattern, handler id) pair. Removing an absent pair
// is a no-op.
func (b *Bus) Unsubscribe(pattern string, handler Handler) {
	if handler == nil {
		return
	}
	for i, sub := range b.subscriptions {
		if sub.pattern == pattern && sub.handler.ID() == handler.ID() {
			b.subscriptions = append(b.subscriptions[:i], b.subscriptions[i+1:]...)
			b.invalidate(pattern)
			return
		}
	}
}

// IsSubscribed reports whether the (pattern, handler id) pair is present.
func (b *Bus) IsSubscribed(pattern string, handler Handler) bool {
	for _, sub := range b.subscriptions {
		if sub.pattern == pattern && sub.handler.ID() == handler.ID() {
			return true
		}
	}
	return false
}

// SubscriptionCount returns the number of subscriptions.
func (b *Bus) SubscriptionCount() int {
	return len(b.subscriptions)
}

// Publish delivers a message to every handler whose pattern matches the
// topic, highest priority first, insertion order breaking ties.
func (b *Bus) Publish(topic string, msg any) {
	for _, sub := range b.matching(topic) {
		sub.handler.Handle(msg)
	}
}

// HasSubscribers reports whether publishing to the topic would deliver
// to at least one handler.
func (b *Bus) HasSubscribers(topic string) bool {
	return len(b.matching(topic)) > 0
}

func (b *Bus) matching(topic string) []subscription {
	if subs, ok := b.patterns[topic]; ok {
		return subs
	}

	var subs []subscription
	for _, sub := range b.subscriptions {
		if IsMatching(topic, sub.pattern) {
			subs = append(subs, sub)
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].priority > subs[j].priority
	})
	b.patterns[topic] = subs
	return subs
}

func (b *Bus) invalidate(pattern string) {
	for topic := range b.patterns {
		if IsMatching(topic, pattern) {
			delete(b.patterns, topic)
		}
	}
}

// IsMatching reports whether a concrete topic matches a subscriber pattern.
// '*' matches any run of characters including none; '?' matches exactly one.
// Wildcards are only meaningful in the pattern.
func IsMatching(topic, pattern string) bool {
	n, m := len(topic), len(pattern)
	table := make([][]bool, n+1)
	for i := range table {
		table[i] = make([]bool, m+1)
	}
	table[0][0] = true

	for j := 0; j < m; j++ {
		if pattern[j] == '*' {
			table[0][j+1] = table[0][j]
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			switch {
			case pattern[j] == '*':
				table[i+1][j+1] = table[i][j+1] || table[i+1][j]
			case pattern[j] == '?' || topic[i] == pattern[j]:
				table[i+1][j+1] = table[i][j]
			}
		}
	}

	return table[n][m]
}
