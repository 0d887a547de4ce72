package pool_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/undothis/Moodling-sub000/foundation/pool"
)

func TestPool(t *testing.T) {
	t.Run("runs work and returns its error", func(t *testing.T) {
		t.Parallel()

		p := pool.New(2)
		defer p.Shutdown()

		if err := p.Run(context.Background(), func() error { return nil }); err != nil {
			t.Fatal(err)
		}

		want := errors.New("boom")
		if err := p.Run(context.Background(), func() error { return want }); !errors.Is(err, want) {
			t.Fatalf("err = %v, want %v", err, want)
		}
	})

	t.Run("all submissions complete", func(t *testing.T) {
		t.Parallel()

		p := pool.New(4)
		var n atomic.Int64

		done := make(chan struct{})
		for i := 0; i < 20; i++ {
			go func() {
				_ = p.Run(context.Background(), func() error {
					n.Add(1)
					return nil
				})
				done <- struct{}{}
			}()
		}
		for i := 0; i < 20; i++ {
			<-done
		}
		p.Shutdown()

		if n.Load() != 20 {
			t.Fatalf("ran %d tasks, want 20", n.Load())
		}
	})

	t.Run("cancelled submission does not run", func(t *testing.T) {
		t.Parallel()

		p := pool.New(1)
		defer p.Shutdown()

		block := make(chan struct{})
		started := make(chan struct{})
		go p.Run(context.Background(), func() error {
			close(started)
			<-block
			return nil
		})
		<-started

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := p.Run(ctx, func() error {
			t.Error("task ran after cancellation")
			return nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
		close(block)
	})
}
