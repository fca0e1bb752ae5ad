// Package events allows for the registering and receiving of events.
package events

import (
	"fmt"
	"sync"
)

// Message is a published event. Topic is used by subscribers to filter the
// messages they receive.
type Message struct {
	Topic string
	Data  []byte
}

// subscriber is a registered receiver of messages.
type subscriber struct {
	ch    chan Message
	topic string
}

// Events maintains a mapping of unique id and channels so goroutines
// can register and receive events.
type Events struct {
	m  map[string]subscriber
	mu sync.RWMutex
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]subscriber),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, sub := range evt.m {
		delete(evt.m, id)
		close(sub.ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to
// receive events. An empty topic receives every message.
func (evt *Events) Acquire(id string, topic string) <-chan Message {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if sub, exists := evt.m[id]; exists {
		return sub.ch
	}

	// Since a message will be dropped if the websocket receiver is
	// not ready to receive, this arbitrary buffer should give the receiver
	// enough time to not lose a message. Websocket send could take long.
	const messageBuffer = 100

	sub := subscriber{
		ch:    make(chan Message, messageBuffer),
		topic: topic,
	}
	evt.m[id] = sub

	return sub.ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(sub.ch)
	return nil
}

// Send signals a message to every registered channel interested in the
// topic. Send will not block waiting for a receiver on any given channel.
func (evt *Events) Send(topic string, data []byte) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	msg := Message{Topic: topic, Data: data}
	for _, sub := range evt.m {
		if sub.topic != "" && sub.topic != topic {
			continue
		}

		select {
		case sub.ch <- msg:
		default:
		}
	}
}
