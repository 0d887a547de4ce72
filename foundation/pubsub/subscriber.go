package pubsub

// Subscriber receives every payload published to the topics it is
// subscribed to. The channel is owned by the subscriber and closed by
// Broker.UnSubscribe.
type Subscriber[T any] struct {
	payload chan T
}

func NewSubscriber[T any](channelCapacity int) *Subscriber[T] {
	if channelCapacity > 0 {
		return &Subscriber[T]{
			payload: make(chan T, channelCapacity),
		}
	}
	return &Subscriber[T]{
		payload: make(chan T),
	}
}

func (s *Subscriber[T]) Signal(data T) {
	s.payload <- data
}

func (s *Subscriber[T]) GetChannel() <-chan T {
	return s.payload
}

func (s *Subscriber[T]) CloseChannel() {
	close(s.payload)
}
