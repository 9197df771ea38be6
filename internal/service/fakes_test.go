package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nis2meetu/paymongo-server/internal/domain"
	"github.com/nis2meetu/paymongo-server/internal/repository"
)

// memStore backs the service tests with the same contract the gorm
// repositories honor, including the atomic grant guard.
type memStore struct {
	mu      sync.Mutex
	txs     map[string]*domain.Transaction
	inv     map[string]*domain.PlayerInventory
	entries map[string]map[string]*domain.InventoryEntry
	ui      map[string]*domain.PlayerUIState

	grantErr    error // injected failure for the grant step
	grantCalls  int
	statusCalls int
}

func newMemStore() *memStore {
	return &memStore{
		txs:     map[string]*domain.Transaction{},
		inv:     map[string]*domain.PlayerInventory{},
		entries: map[string]map[string]*domain.InventoryEntry{},
		ui:      map[string]*domain.PlayerUIState{},
	}
}

func (s *memStore) Create(_ context.Context, t *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Quantity <= 0 {
		t.Quantity = 1
	}
	cp := *t
	s.txs[t.ID] = &cp
	return nil
}

func (s *memStore) ByReferenceID(_ context.Context, ref string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.txs {
		if t.ReferenceID == ref {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memStore) UpdateStatus(_ context.Context, id string, to domain.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCalls++
	t, ok := s.txs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Status = to
	t.LastUpdated = time.Now().UTC()
	return nil
}

func (s *memStore) GrantIfNotFulfilled(_ context.Context, txID string, g domain.RewardGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grantCalls++
	t, ok := s.txs[txID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if t.Fulfilled {
		return repository.ErrAlreadyFulfilled
	}
	if s.grantErr != nil {
		return s.grantErr
	}

	inv, ok := s.inv[t.UserID]
	if !ok {
		inv = &domain.PlayerInventory{UserID: t.UserID}
		s.inv[t.UserID] = inv
	}
	inv.Gems += g.Gems
	inv.Hints += g.Hints

	for _, e := range g.Entries {
		byRef, ok := s.entries[t.UserID]
		if !ok {
			byRef = map[string]*domain.InventoryEntry{}
			s.entries[t.UserID] = byRef
		}
		if cur, ok := byRef[e.RefID]; ok {
			cur.Quantity += e.Quantity
			cur.Description = e.Description
		} else {
			cp := e
			cp.UserID = t.UserID
			byRef[e.RefID] = &cp
		}
	}

	if g.StaminaReset {
		s.ui[t.UserID] = &domain.PlayerUIState{
			UserID:        t.UserID,
			CurrentHearts: domain.MaxHearts,
			HalfStep:      false,
		}
	}

	t.Fulfilled = true
	return nil
}

func (s *memStore) transaction(id string) domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.txs[id]
}

func (s *memStore) inventory(userID string) domain.PlayerInventory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv, ok := s.inv[userID]; ok {
		return *inv
	}
	return domain.PlayerInventory{UserID: userID}
}

func (s *memStore) entry(userID, refID string) (domain.InventoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if byRef, ok := s.entries[userID]; ok {
		if e, ok := byRef[refID]; ok {
			return *e, true
		}
	}
	return domain.InventoryEntry{}, false
}

// memCatalog is a fixed item/offer fixture.
type memCatalog struct {
	items  map[string]*domain.Item
	offers map[string]*domain.Offer
}

func (c *memCatalog) OfferByID(_ context.Context, id string) (*domain.Offer, error) {
	if of, ok := c.offers[id]; ok {
		return of, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (c *memCatalog) ItemByID(_ context.Context, id string) (*domain.Item, error) {
	if it, ok := c.items[id]; ok {
		return it, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// capturePublisher records fan-out messages.
type capturePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *capturePublisher) PublishJSON(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *capturePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}
