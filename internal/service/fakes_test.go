package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/repository"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	nextID  int
	err     error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) put(t *domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *t
	r.tickets[t.ID] = &clone
}

func (r *fakeTicketRepo) get(id string) (*domain.Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, false
	}
	clone := *t
	return &clone, true
}

func (r *fakeTicketRepo) CreateWithFirstMessage(_ context.Context, ticket *domain.Ticket, first *domain.Message) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	r.nextID++
	now := time.Now().UTC()
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextID)
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	first.ID = ticket.ID + "-m1"
	first.TicketID = ticket.ID
	first.CreatedAt = now
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	r.mu.Unlock()
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.get(id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	t, ok := r.get(id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	r.put(t)
	return t, nil
}

func (r *fakeTicketRepo) UpdatePriority(_ context.Context, id string, priority domain.TicketPriority) (*domain.Ticket, error) {
	t, ok := r.get(id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t.Priority = priority
	t.UpdatedAt = time.Now().UTC()
	r.put(t)
	return t, nil
}

func (r *fakeTicketRepo) ApplyTriage(_ context.Context, id string, priority domain.TicketPriority, sentiment domain.TicketSentiment) (*domain.Ticket, error) {
	t, ok := r.get(id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t.Priority = priority
	t.Sentiment = &sentiment
	t.UpdatedAt = time.Now().UTC()
	r.put(t)
	return t, nil
}

func (r *fakeTicketRepo) ListForCustomer(_ context.Context, customerID string, _, _ int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.tickets {
		if t.CustomerID == customerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.tickets {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func containsStatus(statuses []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

type fakeMessageRepo struct {
	mu     sync.Mutex
	msgs   []domain.Message
	nextID int
	err    error
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	r.nextID++
	msg.ID = fmt.Sprintf("msg-%d", r.nextID)
	msg.CreatedAt = time.Now().UTC().Add(time.Duration(r.nextID) * time.Millisecond)
	r.msgs = append(r.msgs, *msg)
	r.mu.Unlock()
	return nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, msg := range r.msgs {
		if msg.TicketID == ticketID {
			out = append(out, msg)
		}
	}
	domain.SortMessages(out)
	return out, nil
}

func (r *fakeMessageRepo) ListRecent(_ context.Context, ticketID string, limit int) ([]domain.Message, error) {
	asc, err := r.ListByTicket(context.Background(), ticketID)
	if err != nil {
		return nil, err
	}
	var out []domain.Message
	for i := len(asc) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, asc[i])
	}
	return out, nil
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	nextID   int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	profile.ID = fmt.Sprintf("profile-%d", r.nextID)
	profile.CreatedAt = time.Now().UTC()
	clone := *profile
	r.profiles[profile.ID] = &clone
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			clone := *p
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type dispatchRecord struct {
	ticket       domain.Ticket
	firstMessage string
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatchRecord
}

func (d *fakeDispatcher) Dispatch(ticket domain.Ticket, firstMessage string) {
	d.mu.Lock()
	d.calls = append(d.calls, dispatchRecord{ticket: ticket, firstMessage: firstMessage})
	d.mu.Unlock()
}

func (d *fakeDispatcher) dispatched() []dispatchRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]dispatchRecord, len(d.calls))
	copy(out, d.calls)
	return out
}
