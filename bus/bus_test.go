// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bus

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishAll(t *testing.T, b *Bus, payloads ...string) {
	t.Helper()
	for _, p := range payloads {
		require.NoError(t, b.Publish(Event{Payload: []byte(p)}))
	}
}

func recvAll(t *testing.T, sub *Subscription, n int) []string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payloads := make([]string, 0, n)
	for i := 0; i < n; i++ {
		event, err := sub.Recv(ctx)
		require.NoError(t, err)
		payloads = append(payloads, string(event.Payload))
	}
	return payloads
}

func TestBus_Publish(t *testing.T) {
	t.Run("will deliver to every subscriber", func(t *testing.T) {
		t.Run("in publish order", func(t *testing.T) {
			b := New()
			one := b.Subscribe()
			two := b.Subscribe()

			publishAll(t, b, "a", "b", "c")

			assert.Equal(t, []string{"a", "b", "c"}, recvAll(t, one, 3))
			assert.Equal(t, []string{"a", "b", "c"}, recvAll(t, two, 3))
		})

		t.Run("without duplicating payloads", func(t *testing.T) {
			b := New()
			sub := b.Subscribe()

			publishAll(t, b, "a")
			b.Close()

			assert.Equal(t, []string{"a"}, recvAll(t, sub, 1))

			_, err := sub.Recv(context.Background())
			assert.ErrorIs(t, err, ErrClosed)
		})
	})

	t.Run("will fail", func(t *testing.T) {
		t.Run("if there are no subscribers", func(t *testing.T) {
			b := New()

			err := b.Publish(Event{Payload: []byte("a")})
			assert.ErrorIs(t, err, ErrNoSubscribers)
		})

		t.Run("if the bus is closed", func(t *testing.T) {
			b := New()
			b.Subscribe()
			b.Close()

			err := b.Publish(Event{Payload: []byte("a")})
			assert.ErrorIs(t, err, ErrClosed)
		})
	})

	t.Run("will drop the oldest unread payload", func(t *testing.T) {
		t.Run("if a subscriber backlog is full", func(t *testing.T) {
			b := New(WithBacklog(2))
			sub := b.Subscribe()

			publishAll(t, b, "a", "b", "c")

			assert.Equal(t, []string{"b", "c"}, recvAll(t, sub, 2))
		})

		t.Run("only for the lagging subscriber", func(t *testing.T) {
			b := New(WithBacklog(2))
			lagging := b.Subscribe()
			keptUp := b.Subscribe()

			publishAll(t, b, "a", "b")
			assert.Equal(t, []string{"a", "b"}, recvAll(t, keptUp, 2))

			publishAll(t, b, "c")
			assert.Equal(t, []string{"c"}, recvAll(t, keptUp, 1))

			assert.Equal(t, []string{"b", "c"}, recvAll(t, lagging, 2))
		})
	})
}

func TestSubscription_Recv(t *testing.T) {
	t.Run("will unblock", func(t *testing.T) {
		t.Run("if the bus is closed while waiting", func(t *testing.T) {
			b := New()
			sub := b.Subscribe()

			errCh := make(chan error, 1)
			go func() {
				_, err := sub.Recv(context.Background())
				errCh <- err
			}()

			b.Close()

			select {
			case err := <-errCh:
				assert.ErrorIs(t, err, ErrClosed)
			case <-time.After(5 * time.Second):
				t.Fatal("Recv did not unblock on Close")
			}
		})

		t.Run("if the context is cancelled while waiting", func(t *testing.T) {
			b := New()
			sub := b.Subscribe()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := sub.Recv(ctx)
			assert.ErrorIs(t, err, context.Canceled)
		})
	})

	t.Run("will report closed", func(t *testing.T) {
		t.Run("if subscribing after the bus closed", func(t *testing.T) {
			b := New()
			b.Close()

			sub := b.Subscribe()
			_, err := sub.Recv(context.Background())
			assert.ErrorIs(t, err, ErrClosed)
		})
	})
}

func TestSubscription_Close(t *testing.T) {
	t.Run("will remove the subscriber", func(t *testing.T) {
		t.Run("if it was the last one", func(t *testing.T) {
			b := New()
			sub := b.Subscribe()
			sub.Close()

			err := b.Publish(Event{Payload: []byte("a")})
			assert.ErrorIs(t, err, ErrNoSubscribers)
		})

		t.Run("without affecting other subscribers", func(t *testing.T) {
			b := New()
			closing := b.Subscribe()
			remaining := b.Subscribe()
			closing.Close()

			publishAll(t, b, "a")
			assert.Equal(t, []string{"a"}, recvAll(t, remaining, 1))
		})
	})

	t.Run("will be idempotent", func(t *testing.T) {
		t.Run("if called multiple times", func(t *testing.T) {
			b := New()
			sub := b.Subscribe()

			sub.Close()
			assert.NotPanics(t, func() {
				sub.Close()
			})
		})

		t.Run("if the bus closed first", func(t *testing.T) {
			b := New()
			sub := b.Subscribe()

			b.Close()
			assert.NotPanics(t, func() {
				sub.Close()
			})
		})
	})
}

func TestBus_Close(t *testing.T) {
	t.Run("will be idempotent", func(t *testing.T) {
		t.Run("if called multiple times", func(t *testing.T) {
			b := New()
			b.Subscribe()

			b.Close()
			assert.NotPanics(t, func() {
				b.Close()
			})
		})
	})
}

func ExampleBus() {
	b := New()
	sub := b.Subscribe()

	_ = b.Publish(Event{Payload: []byte(`{"a":1}`)})
	b.Close()

	event, _ := sub.Recv(context.Background())
	fmt.Println(string(event.Payload))
	// Output: {"a":1}
}
