package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spec-kit/helpdesk-core/internal/domain"
)

var errNotFound = errors.New("not found")

// Function-field fakes for the repository and infrastructure interfaces
// the services depend on.

type mockTicketRepo struct {
	mu         sync.Mutex
	tickets    map[string]*domain.Ticket
	getErr     error
	disableErr error
	disabled   []string
}

func newMockTicketRepo(tickets ...*domain.Ticket) *mockTicketRepo {
	repo := &mockTicketRepo{tickets: make(map[string]*domain.Ticket)}
	for _, t := range tickets {
		repo.tickets[t.ID] = t
	}
	return repo
}

func (m *mockTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[ticket.ID] = ticket
	return nil
}

func (m *mockTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (m *mockTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[ticket.ID] = ticket
	return nil
}

func (m *mockTicketRepo) DisableAI(_ context.Context, ticketID string, reason *domain.EvaluationResult) (bool, error) {
	if m.disableErr != nil {
		return false, m.disableErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[ticketID]
	if !ok {
		return false, errNotFound
	}
	if !ticket.AIEnabled {
		return false, nil
	}
	ticket.AIEnabled = false
	ticket.LastHandoffReason = reason
	m.disabled = append(m.disabled, ticketID)
	return true, nil
}

type mockEventRepo struct {
	mu       sync.Mutex
	events   map[string]*domain.TicketEvent
	byTicket map[string][]domain.TicketEvent
	appendEr error
	appended []domain.TicketEvent
}

func newMockEventRepo(events ...*domain.TicketEvent) *mockEventRepo {
	repo := &mockEventRepo{
		events:   make(map[string]*domain.TicketEvent),
		byTicket: make(map[string][]domain.TicketEvent),
	}
	for _, e := range events {
		repo.events[e.ID] = e
		repo.byTicket[e.TicketID] = append(repo.byTicket[e.TicketID], *e)
	}
	return repo
}

func (m *mockEventRepo) Append(_ context.Context, event *domain.TicketEvent) error {
	if m.appendEr != nil {
		return m.appendEr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.ID == "" {
		event.ID = "appended-" + event.TicketID
	}
	event.CreatedAt = time.Now()
	m.appended = append(m.appended, *event)
	m.byTicket[event.TicketID] = append(m.byTicket[event.TicketID], *event)
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*domain.TicketEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *event
	return &copied, nil
}

func (m *mockEventRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TicketEvent{}, m.byTicket[ticketID]...), nil
}

type mockLeaser struct {
	mu       sync.Mutex
	held     map[string]bool
	busy     bool
	acquires int
	releases int
}

func newMockLeaser() *mockLeaser {
	return &mockLeaser{held: make(map[string]bool)}
}

func (m *mockLeaser) Acquire(_ context.Context, ticketID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquires++
	if m.busy || m.held[ticketID] {
		return false, nil
	}
	m.held[ticketID] = true
	return true, nil
}

func (m *mockLeaser) Release(_ context.Context, ticketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases++
	delete(m.held, ticketID)
	return nil
}

type mockSearcher struct {
	matches []domain.ArticleMatch
	err     error
	gotOrg  string
	gotK    int
}

func (m *mockSearcher) Search(_ context.Context, _ []float32, organizationID string, k int) ([]domain.ArticleMatch, error) {
	m.gotOrg = organizationID
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.matches, nil
}

type mockOrgRepo struct {
	org *domain.Organization
	err error
}

func (m *mockOrgRepo) GetByID(_ context.Context, _ string) (*domain.Organization, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.org, nil
}

type mockQueueRepo struct {
	mu       sync.Mutex
	enqueued []domain.NotificationQueueEntry
	batch    []domain.NotificationQueueEntry
	claimErr error
	sent     []string
	failed   map[string]string
}

func newMockQueueRepo() *mockQueueRepo {
	return &mockQueueRepo{failed: make(map[string]string)}
}

func (m *mockQueueRepo) Enqueue(_ context.Context, entry *domain.NotificationQueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = "entry-" + entry.EventID
	m.enqueued = append(m.enqueued, *entry)
	return nil
}

func (m *mockQueueRepo) ClaimBatch(_ context.Context, limit, maxRetries int, _ time.Duration) ([]domain.NotificationQueueEntry, error) {
	if m.claimErr != nil {
		return nil, m.claimErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	eligible := make([]domain.NotificationQueueEntry, 0, len(m.batch))
	for _, entry := range m.batch {
		if entry.RetryCount < maxRetries && entry.Status != domain.NotificationStatusSent {
			eligible = append(eligible, entry)
		}
		if len(eligible) == limit {
			break
		}
	}
	return eligible, nil
}

func (m *mockQueueRepo) MarkSent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, id)
	for i := range m.batch {
		if m.batch[i].ID == id {
			m.batch[i].Status = domain.NotificationStatusSent
		}
	}
	return nil
}

func (m *mockQueueRepo) MarkFailed(_ context.Context, id, deliveryErr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[id] = deliveryErr
	for i := range m.batch {
		if m.batch[i].ID == id {
			m.batch[i].Status = domain.NotificationStatusFailed
			m.batch[i].RetryCount++
		}
	}
	return nil
}

type mockUserRepo struct {
	users map[string]*domain.User
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, errNotFound
	}
	return user, nil
}

type mockMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]error
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func newMockMailer() *mockMailer {
	return &mockMailer{failTo: make(map[string]error)}
}

func (m *mockMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failTo[to]; ok {
		return err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
