package triage_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/triage"
)

func TestTriageClientRoundTrip(t *testing.T) {
	var received triage.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai-triage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"success":true,"analysis":{"priority":"high","sentiment":"negative"}}`))
	}))
	defer server.Close()

	client := triage.NewClientWithBase(server.URL)
	analysis, err := client.Triage(context.Background(), triage.Request{
		TicketID: "t1",
		Subject:  "Crash",
		Content:  "It broke",
	})
	if err != nil {
		t.Fatalf("Triage err: %v", err)
	}

	if received.TicketID != "t1" || received.Subject != "Crash" || received.Content != "It broke" {
		t.Fatalf("request payload: %+v", received)
	}
	if analysis.Priority != domain.TicketPriorityHigh || analysis.Sentiment != domain.SentimentNegative {
		t.Fatalf("analysis: %+v", analysis)
	}
}

func TestTriageClientSurfacesServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"model unavailable"}`))
	}))
	defer server.Close()

	_, err := triage.NewClientWithBase(server.URL).Triage(context.Background(), triage.Request{TicketID: "t1"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDraftReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai-reply" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"reply":"Happy to help."}`))
	}))
	defer server.Close()

	reply, err := triage.NewClientWithBase(server.URL).DraftReply(context.Background(), "t1")
	if err != nil {
		t.Fatalf("DraftReply err: %v", err)
	}
	if reply != "Happy to help." {
		t.Fatalf("reply: %q", reply)
	}
}

func TestPipelineDispatchIsDetached(t *testing.T) {
	requests := make(chan triage.Request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req triage.Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		requests <- req
		_, _ = w.Write([]byte(`{"success":true,"analysis":{"priority":"low","sentiment":"positive"}}`))
	}))
	defer server.Close()

	pipeline := triage.NewPipeline(triage.NewClientWithBase(server.URL), zap.NewNop(), time.Second)
	pipeline.Dispatch(domain.Ticket{ID: "t1", Subject: "Hello"}, "first message")

	select {
	case req := <-requests:
		if req.TicketID != "t1" || req.Content != "first message" {
			t.Fatalf("dispatched request: %+v", req)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch never reached the service")
	}
}

func TestPipelineDispatchSwallowsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	pipeline := triage.NewPipeline(triage.NewClientWithBase(server.URL), zap.NewNop(), time.Second)

	// must not panic or block the caller
	pipeline.Dispatch(domain.Ticket{ID: "t1"}, "msg")
	time.Sleep(100 * time.Millisecond)
}
