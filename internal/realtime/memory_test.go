package realtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hivemind/support-engine/internal/realtime"
)

func receive(t *testing.T, sub realtime.Subscription) []byte {
	t.Helper()
	select {
	case payload, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func TestMemoryBrokerDeliversInOrder(t *testing.T) {
	broker := realtime.NewMemoryBroker()
	ctx := context.Background()

	sub, err := broker.Subscribe(ctx, "ticket:feed:t1")
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer sub.Close()

	for _, payload := range []string{"one", "two", "three"} {
		if err := broker.Publish(ctx, "ticket:feed:t1", []byte(payload)); err != nil {
			t.Fatalf("Publish err: %v", err)
		}
	}

	for _, want := range []string{"one", "two", "three"} {
		if got := string(receive(t, sub)); got != want {
			t.Fatalf("got %q want %q", got, want)
		}
	}
}

func TestMemoryBrokerIsolatesTopics(t *testing.T) {
	broker := realtime.NewMemoryBroker()
	ctx := context.Background()

	feedSub, err := broker.Subscribe(ctx, realtime.FeedTopic("t1"))
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer feedSub.Close()

	if err := broker.Publish(ctx, realtime.TypingTopic("t1"), []byte("typing")); err != nil {
		t.Fatalf("Publish err: %v", err)
	}
	if err := broker.Publish(ctx, realtime.FeedTopic("t1"), []byte("feed")); err != nil {
		t.Fatalf("Publish err: %v", err)
	}

	if got := string(receive(t, feedSub)); got != "feed" {
		t.Fatalf("feed subscriber received %q", got)
	}
}

func TestMemoryBrokerNoBackfill(t *testing.T) {
	broker := realtime.NewMemoryBroker()
	ctx := context.Background()

	if err := broker.Publish(ctx, "ticket:feed:t1", []byte("before")); err != nil {
		t.Fatalf("Publish err: %v", err)
	}

	sub, err := broker.Subscribe(ctx, "ticket:feed:t1")
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer sub.Close()

	select {
	case payload := <-sub.Events():
		t.Fatalf("received pre-subscription event %q", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBrokerPublishDuringClose(t *testing.T) {
	broker := realtime.NewMemoryBroker()
	ctx := context.Background()

	sub, err := broker.Subscribe(ctx, "ticket:feed:t1")
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}

	// publishers race the teardown; a send must never reach the closed
	// events channel
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = broker.Publish(ctx, "ticket:feed:t1", []byte("payload"))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = sub.Close()
	}()
	wg.Wait()

	if _, ok := <-sub.Events(); ok {
		// drain anything buffered before the close
		for range sub.Events() {
		}
	}
}

func TestMemorySubscriptionCloseIdempotent(t *testing.T) {
	broker := realtime.NewMemoryBroker()
	sub, err := broker.Subscribe(context.Background(), "ticket:feed:t1")
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("Close err: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("second Close err: %v", err)
	}

	if _, ok := <-sub.Events(); ok {
		t.Fatal("events channel should be closed")
	}
}
