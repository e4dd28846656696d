package tests

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
	"github.com/alexandrehuynh/client-outreach/internal/infra/queue"
)

// fakeClock - relógio controlado pelos testes
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// memoryLeadStore - LeadStore em memória para testes de ciclo de vida;
// FetchAll devolve cópias (snapshot real), Update grava por ID
type memoryLeadStore struct {
	mu    sync.Mutex
	leads map[string]entity.Lead
	order []string
}

func newMemoryLeadStore(leads ...entity.Lead) *memoryLeadStore {
	s := &memoryLeadStore{leads: make(map[string]entity.Lead)}
	for _, l := range leads {
		s.leads[l.ID] = l
		s.order = append(s.order, l.ID)
	}
	return s
}

func (s *memoryLeadStore) FetchAll(ctx context.Context) ([]entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Lead, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.leads[id])
	}
	return out, nil
}

func (s *memoryLeadStore) Update(ctx context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = *lead
	return nil
}

func (s *memoryLeadStore) Get(id string) entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leads[id]
}

// MockLeadStore - mock para injetar falhas de leitura/gravação
type MockLeadStore struct {
	mock.Mock
}

func (m *MockLeadStore) FetchAll(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	leads, _ := args.Get(0).([]entity.Lead)
	return leads, args.Error(1)
}

func (m *MockLeadStore) Update(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

// MockMessageChannel - adapter de canal mockado
type MockMessageChannel struct {
	mock.Mock
	channel entity.Channel
}

func newMockChannel(ch entity.Channel) *MockMessageChannel {
	return &MockMessageChannel{channel: ch}
}

func (m *MockMessageChannel) Channel() entity.Channel {
	return m.channel
}

func (m *MockMessageChannel) Send(ctx context.Context, lead entity.Lead, kind entity.TemplateKind) error {
	args := m.Called(ctx, lead, kind)
	return args.Error(0)
}

func (m *MockMessageChannel) FetchInbound(ctx context.Context, since time.Time) ([]entity.InboundMessage, error) {
	args := m.Called(ctx, since)
	msgs, _ := args.Get(0).([]entity.InboundMessage)
	return msgs, args.Error(1)
}

// MockProducer - producer de fila mockado para os testes de webhook
type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) PublishInbound(ctx context.Context, payload queue.InboundPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
