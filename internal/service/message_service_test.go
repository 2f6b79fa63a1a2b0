package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/realtime"
	"github.com/hivemind/support-engine/internal/service"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

func openTicket(id string) *domain.Ticket {
	return &domain.Ticket{ID: id, CustomerID: "cust-1", Status: domain.TicketStatusOpen}
}

func TestAppendCommitsAndPublishes(t *testing.T) {
	repo := &fakeMessageRepo{}
	broker := realtime.NewMemoryBroker()
	svc := service.NewMessageService(repo, broker, zap.NewNop())
	ctx := context.Background()

	sub, err := broker.Subscribe(ctx, realtime.FeedTopic("t1"))
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer sub.Close()

	msg, err := svc.Append(ctx, openTicket("t1"), service.AppendInput{
		SenderID: "cust-1",
		Content:  "  still broken  ",
	})
	if err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if msg.Content != "still broken" {
		t.Fatalf("content not trimmed: %q", msg.Content)
	}

	select {
	case payload := <-sub.Events():
		var published domain.Message
		if err := json.Unmarshal(payload, &published); err != nil {
			t.Fatalf("feed payload: %v", err)
		}
		if published.ID != msg.ID {
			t.Fatalf("published %s, committed %s", published.ID, msg.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("append never hit the feed")
	}
}

func TestAppendToClosedTicketRejectedBeforeWrite(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := service.NewMessageService(repo, nil, zap.NewNop())

	closed := openTicket("t1")
	closed.Status = domain.TicketStatusClosed

	_, err := svc.Append(context.Background(), closed, service.AppendInput{
		SenderID: "cust-1",
		Content:  "hello?",
	})
	if !apperrors.IsCode(err, "TICKET_CLOSED") {
		t.Fatalf("got %v", err)
	}
	if repo.count() != 0 {
		t.Fatal("closed-ticket append reached the repository")
	}
}

func TestAppendRequiresContentOrAttachment(t *testing.T) {
	svc := service.NewMessageService(&fakeMessageRepo{}, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Append(ctx, openTicket("t1"), service.AppendInput{SenderID: "cust-1", Content: "   "})
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("got %v", err)
	}

	// attachment-only messages are allowed
	msg, err := svc.Append(ctx, openTicket("t1"), service.AppendInput{
		SenderID:    "cust-1",
		Attachments: []string{"/uploads/t1/file.png"},
	})
	if err != nil {
		t.Fatalf("attachment-only append err: %v", err)
	}
	if msg.Content != "" || len(msg.Attachments) != 1 {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestAppendMissingSnapshot(t *testing.T) {
	svc := service.NewMessageService(&fakeMessageRepo{}, nil, zap.NewNop())

	_, err := svc.Append(context.Background(), nil, service.AppendInput{SenderID: "cust-1", Content: "x"})
	if !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("got %v", err)
	}
}

func TestListForTicketFiltersInternalNotes(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := service.NewMessageService(repo, nil, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Append(ctx, openTicket("t1"), service.AppendInput{SenderID: "cust-1", Content: "public"}); err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if _, err := svc.Append(ctx, openTicket("t1"), service.AppendInput{SenderID: "agent", Content: "note", IsInternal: true}); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	visible, err := svc.ListForTicket(ctx, "t1", false)
	if err != nil {
		t.Fatalf("ListForTicket err: %v", err)
	}
	if len(visible) != 1 || visible[0].Content != "public" {
		t.Fatalf("customer view: %+v", visible)
	}

	all, err := svc.ListForTicket(ctx, "t1", true)
	if err != nil {
		t.Fatalf("ListForTicket err: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("agent view: %+v", all)
	}
}
