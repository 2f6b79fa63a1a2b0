package presence_test

import (
	"testing"
	"time"

	"github.com/hivemind/support-engine/internal/presence"
)

func TestIndicatorStartsIdle(t *testing.T) {
	ind := presence.NewIndicator(time.Second, nil)
	defer ind.Stop()

	if ind.Typing() {
		t.Fatal("fresh indicator should be idle")
	}
}

func TestIndicatorLightsOnNote(t *testing.T) {
	ind := presence.NewIndicator(time.Second, nil)
	defer ind.Stop()

	ind.Note("agent")
	if !ind.Typing() {
		t.Fatal("indicator should be typing after a note")
	}
}

func TestIndicatorExpiresAfterTTL(t *testing.T) {
	changes := make(chan bool, 4)
	ind := presence.NewIndicator(20*time.Millisecond, func(typing bool) { changes <- typing })
	defer ind.Stop()

	ind.Note("agent")
	if got := <-changes; !got {
		t.Fatal("first transition should be to typing")
	}

	select {
	case got := <-changes:
		if got {
			t.Fatal("expiry transition should be to idle")
		}
	case <-time.After(time.Second):
		t.Fatal("indicator never expired")
	}
	if ind.Typing() {
		t.Fatal("indicator should be idle after TTL")
	}
}

func TestIndicatorNoteRestartsTimerWithoutTransition(t *testing.T) {
	changes := make(chan bool, 8)
	ind := presence.NewIndicator(60*time.Millisecond, func(typing bool) { changes <- typing })
	defer ind.Stop()

	ind.Note("agent")
	<-changes

	// keep noting faster than the TTL; the indicator must stay lit with no
	// extra transitions
	for i := 0; i < 3; i++ {
		time.Sleep(20 * time.Millisecond)
		ind.Note("agent")
	}
	if !ind.Typing() {
		t.Fatal("indicator went idle while events kept arriving")
	}
	select {
	case got := <-changes:
		t.Fatalf("unexpected transition %v while refreshing", got)
	default:
	}
}

func TestNoteMessageForcesIdleForTypingSender(t *testing.T) {
	ind := presence.NewIndicator(time.Minute, nil)
	defer ind.Stop()

	ind.Note("agent")
	ind.NoteMessage("agent")
	if ind.Typing() {
		t.Fatal("a committed message from the typist should clear the indicator")
	}
}

func TestNoteMessageFromOtherSenderKeepsTyping(t *testing.T) {
	ind := presence.NewIndicator(time.Minute, nil)
	defer ind.Stop()

	ind.Note("agent")
	ind.NoteMessage("customer")
	if !ind.Typing() {
		t.Fatal("a message from someone else should not clear the indicator")
	}
}
