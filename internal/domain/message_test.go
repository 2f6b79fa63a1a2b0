package domain_test

import (
	"testing"
	"time"

	"github.com/hivemind/support-engine/internal/domain"
)

func TestMessageLessOrdersByCreatedAt(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := domain.Message{ID: "b", CreatedAt: base}
	b := domain.Message{ID: "a", CreatedAt: base.Add(time.Second)}

	if !a.Less(b) {
		t.Fatal("earlier message should precede later one")
	}
	if b.Less(a) {
		t.Fatal("later message should not precede earlier one")
	}
}

func TestMessageLessTiesBreakOnID(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := domain.Message{ID: "aaa", CreatedAt: at}
	b := domain.Message{ID: "bbb", CreatedAt: at}

	if !a.Less(b) {
		t.Fatal("equal timestamps should order by id")
	}
	if b.Less(a) {
		t.Fatal("id tiebreak must be a strict order")
	}
}

func TestSortMessagesCanonicalOrder(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := []domain.Message{
		{ID: "c", CreatedAt: base.Add(2 * time.Second)},
		{ID: "b", CreatedAt: base},
		{ID: "a", CreatedAt: base},
	}
	domain.SortMessages(msgs)

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Fatalf("position %d: got %s want %s", i, msgs[i].ID, id)
		}
	}
}

func TestSameGroup(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		a, b domain.Message
		want bool
	}{
		{
			name: "same sender within gap",
			a:    domain.Message{SenderID: "u1", CreatedAt: base},
			b:    domain.Message{SenderID: "u1", CreatedAt: base.Add(time.Minute)},
			want: true,
		},
		{
			name: "same sender at exactly the gap",
			a:    domain.Message{SenderID: "u1", CreatedAt: base},
			b:    domain.Message{SenderID: "u1", CreatedAt: base.Add(domain.GroupGap)},
			want: false,
		},
		{
			name: "different sender",
			a:    domain.Message{SenderID: "u1", CreatedAt: base},
			b:    domain.Message{SenderID: "u2", CreatedAt: base.Add(time.Second)},
			want: false,
		},
		{
			name: "reverse order still groups",
			a:    domain.Message{SenderID: "u1", CreatedAt: base.Add(time.Minute)},
			b:    domain.Message{SenderID: "u1", CreatedAt: base},
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.SameGroup(tc.a, tc.b); got != tc.want {
				t.Fatalf("SameGroup: got %v want %v", got, tc.want)
			}
		})
	}
}

func TestValidEnums(t *testing.T) {
	if !domain.ValidStatus(domain.TicketStatusOpen) || domain.ValidStatus("archived") {
		t.Fatal("status validation mismatch")
	}
	if !domain.ValidPriority(domain.TicketPriorityUrgent) || domain.ValidPriority("critical") {
		t.Fatal("priority validation mismatch")
	}
	if !domain.ValidSentiment(domain.SentimentNegative) || domain.ValidSentiment("angry") {
		t.Fatal("sentiment validation mismatch")
	}
}
