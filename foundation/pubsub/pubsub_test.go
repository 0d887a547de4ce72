package pubsub_test

import (
	"sync"
	"testing"

	"github.com/undothis/Moodling-sub000/foundation/pubsub"
)

func TestBroker(t *testing.T) {
	t.Run("fan out to topic subscribers", func(t *testing.T) {
		t.Parallel()

		b := pubsub.NewBroker[string]()
		s1 := pubsub.NewSubscriber[string](1)
		s2 := pubsub.NewSubscriber[string](1)
		other := pubsub.NewSubscriber[string](1)

		b.Subscribe("job-events", s1)
		b.Subscribe("job-events", s2)
		b.Subscribe("exports", other)

		var wg sync.WaitGroup
		wg.Add(2)
		got := make([]string, 2)
		for i, sub := range []*pubsub.Subscriber[string]{s1, s2} {
			go func(i int, sub *pubsub.Subscriber[string]) {
				defer wg.Done()
				got[i] = <-sub.GetChannel()
			}(i, sub)
		}

		if err := b.Publish("job-events", "stage:transcribing"); err != nil {
			t.Fatal(err)
		}
		wg.Wait()

		for i := range got {
			if got[i] != "stage:transcribing" {
				t.Fatalf("subscriber %d received %v", i, got[i])
			}
		}
		select {
		case v := <-other.GetChannel():
			t.Fatalf("exports subscriber received unexpected %v", v)
		default:
		}
	})

	t.Run("publish without subscribers fails", func(t *testing.T) {
		t.Parallel()

		b := pubsub.NewBroker[int]()
		if err := b.Publish("nobody-home", 1); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unsubscribe closes channel", func(t *testing.T) {
		t.Parallel()

		b := pubsub.NewBroker[string]()
		s := pubsub.NewSubscriber[string](0)
		b.Subscribe("job-events", s)

		if err := b.UnSubscribe("job-events", s); err != nil {
			t.Fatal(err)
		}
		if _, open := <-s.GetChannel(); open {
			t.Fatal("expected channel to be closed")
		}
	})
}
