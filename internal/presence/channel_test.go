package presence_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hivemind/support-engine/internal/presence"
	"github.com/hivemind/support-engine/internal/realtime"
)

func TestChannelDeliversRemoteTyping(t *testing.T) {
	broker := realtime.NewMemoryBroker()
	channel := presence.NewChannel(broker, 0, zap.NewNop())
	ctx := context.Background()

	changes := make(chan bool, 4)
	ind := presence.NewIndicator(time.Minute, func(typing bool) { changes <- typing })
	defer ind.Stop()

	handle, err := channel.Subscribe(ctx, "t1", "viewer", ind)
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer handle.Unsubscribe()

	if err := channel.Typing(ctx, "t1", "agent"); err != nil {
		t.Fatalf("Typing err: %v", err)
	}

	select {
	case typing := <-changes:
		if !typing {
			t.Fatal("expected typing transition")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for typing transition")
	}
}

func TestChannelIgnoresOwnEvents(t *testing.T) {
	broker := realtime.NewMemoryBroker()
	channel := presence.NewChannel(broker, 0, zap.NewNop())
	ctx := context.Background()

	ind := presence.NewIndicator(time.Minute, nil)
	defer ind.Stop()

	handle, err := channel.Subscribe(ctx, "t1", "viewer", ind)
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer handle.Unsubscribe()

	if err := channel.Typing(ctx, "t1", "viewer"); err != nil {
		t.Fatalf("Typing err: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if ind.Typing() {
		t.Fatal("viewer's own broadcast lit the indicator")
	}
}

func TestChannelTTLDrivesIndicatorExpiry(t *testing.T) {
	broker := realtime.NewMemoryBroker()
	channel := presence.NewChannel(broker, 25*time.Millisecond, zap.NewNop())

	if got := channel.IndicatorTTL(); got != 25*time.Millisecond {
		t.Fatalf("IndicatorTTL = %v, want 25ms", got)
	}

	ind := channel.NewIndicator(nil)
	defer ind.Stop()

	ind.Note("agent")
	if !ind.Typing() {
		t.Fatal("indicator not lit after Note")
	}

	deadline := time.Now().Add(time.Second)
	for ind.Typing() {
		if time.Now().After(deadline) {
			t.Fatal("indicator never expired with the channel TTL")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestChannelTTLDefaultsWhenUnset(t *testing.T) {
	channel := presence.NewChannel(realtime.NewMemoryBroker(), 0, zap.NewNop())
	if got := channel.IndicatorTTL(); got != presence.DefaultTypingTTL {
		t.Fatalf("IndicatorTTL = %v, want %v", got, presence.DefaultTypingTTL)
	}
}

func TestHandleUnsubscribeIdempotent(t *testing.T) {
	broker := realtime.NewMemoryBroker()
	channel := presence.NewChannel(broker, 0, zap.NewNop())

	ind := presence.NewIndicator(time.Minute, nil)
	defer ind.Stop()

	handle, err := channel.Subscribe(context.Background(), "t1", "viewer", ind)
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}

	handle.Unsubscribe()
	handle.Unsubscribe()

	select {
	case <-handle.Done():
	case <-time.After(time.Second):
		t.Fatal("handle never shut down")
	}
}
