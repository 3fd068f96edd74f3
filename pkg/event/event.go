// Package event is the in-process pub/sub the order workflow publishes to.
// The websocket hub listens for status updates here; anything else in the
// process can subscribe without the services knowing about it.
package event

import "sync"

// Handler receives the payload that was fired with the event.
type Handler func(payload interface{})

type bus struct {
	mu        sync.RWMutex
	listeners map[string][]Handler
}

var global = &bus{listeners: map[string][]Handler{}}

// Listen subscribes handler to every future Fire of name.
func Listen(name string, handler Handler) {
	global.mu.Lock()
	global.listeners[name] = append(global.listeners[name], handler)
	global.mu.Unlock()
}

func (b *bus) snapshot(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.listeners[name]...)
}

// Fire invokes every listener of name synchronously, in subscription order.
func Fire(name string, payload interface{}) {
	for _, h := range global.snapshot(name) {
		h(payload)
	}
}

// FireAsync invokes the listeners on their own goroutines and returns
// immediately.
func FireAsync(name string, payload interface{}) {
	for _, h := range global.snapshot(name) {
		go h(payload)
	}
}

// Flush drops every subscription. Tests use it to isolate themselves.
func Flush() {
	global.mu.Lock()
	global.listeners = map[string][]Handler{}
	global.mu.Unlock()
}
