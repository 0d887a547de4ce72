// Package pubsub is a small in-process broker used to fan pipeline
// progress events out to listeners (log sinks, the Redis exporter)
// without coupling the job runner to them. The broker is generic over
// the payload type so subscribers never type-assert.
package pubsub

import (
	"fmt"
	"sync"
)

type Broker[T any] struct {
	topics map[string][]*Subscriber[T]
	sync.RWMutex
}

func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{
		topics: make(map[string][]*Subscriber[T]),
	}
}

// Publish delivers data to every subscriber of topic. Publishing to a
// topic nobody subscribed to is an error so wiring mistakes surface
// early instead of dropping events silently.
func (b *Broker[T]) Publish(topic string, data T) error {
	b.RLock()
	subs, exists := b.topics[topic]
	b.RUnlock()

	if !exists || len(subs) == 0 {
		return fmt.Errorf("topic[%s] has no subscribers", topic)
	}

	for _, sub := range subs {
		sub.Signal(data)
	}
	return nil
}

func (b *Broker[T]) Subscribe(topic string, s *Subscriber[T]) {
	b.Lock()
	defer b.Unlock()
	{
		_, exists := b.topics[topic]
		if !exists {
			b.topics[topic] = make([]*Subscriber[T], 0)
		}

		b.topics[topic] = append(b.topics[topic], s)
	}
}

func (b *Broker[T]) UnSubscribe(topic string, s *Subscriber[T]) error {
	b.Lock()
	defer b.Unlock()
	{
		subs, exists := b.topics[topic]
		if !exists {
			return fmt.Errorf("topic[%s] does not exist", topic)
		}

		b.topics[topic] = removeFromSlice(subs, s)
		s.CloseChannel()
	}

	return nil
}

// =====================================================================================================================

func removeFromSlice[T comparable](s []T, d T) []T {
	for i := range s {
		if s[i] == d {
			s[i] = s[len(s)-1]
			return s[:len(s)-1]
		}
	}
	return s
}
