// Package servicetest provides an in-memory service.Store for tests.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/game-ticket-booking/internal/model"
	"github.com/iliyamo/game-ticket-booking/internal/repository"
	"github.com/iliyamo/game-ticket-booking/internal/service"
)

// MemStore keeps games, users and the purchase ledger in memory.  InTx
// holds one mutex for the whole transaction and works on a copy of the
// ledger that replaces the original only when fn succeeds, which gives the
// same serialisation and rollback behaviour as the SQL store.
type MemStore struct {
	mu        sync.Mutex
	games     map[string]model.Game
	users     map[string]model.User
	purchases map[string]model.Purchase

	// FailAppend, when set, is consulted before every append.  A non-nil
	// return aborts the append with that error.
	FailAppend func(p *model.Purchase) error
}

var _ service.Store = (*MemStore)(nil)

// NewMemStore returns a MemStore seeded with games.
func NewMemStore(games ...model.Game) *MemStore {
	s := &MemStore{
		games:     make(map[string]model.Game),
		users:     make(map[string]model.User),
		purchases: make(map[string]model.Purchase),
	}
	for _, g := range games {
		s.games[g.ID] = g
	}
	return s
}

// AddUser registers a user.
func (s *MemStore) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(u.Email)] = u
}

// Ledger returns a copy of every ledger entry, valid or not, ordered by
// creation time.
func (s *MemStore) Ledger() []model.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemStore) Game(_ context.Context, id string) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (s *MemStore) Games(_ context.Context) ([]model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (s *MemStore) SoldTickets(_ context.Context, gameID string) (model.TicketCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sold(s.purchases, gameID), nil
}

func (s *MemStore) Purchase(_ context.Context, id string) (*model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *MemStore) PurchasesByUser(_ context.Context, email string) ([]repository.PurchaseDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.PurchaseDetail, 0)
	for _, p := range s.purchases {
		if p.IsValid && p.UserEmail == email {
			out = append(out, repository.PurchaseDetail{Purchase: p, Game: s.games[p.GameID]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Purchase, out[j].Purchase
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *MemStore) User(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *MemStore) InTx(ctx context.Context, fn func(ctx context.Context, tx service.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	staged := make(map[string]model.Purchase, len(s.purchases))
	for id, p := range s.purchases {
		staged[id] = p
	}
	if err := fn(ctx, &memTx{store: s, purchases: staged}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.purchases = staged
	return nil
}

type memTx struct {
	store     *MemStore
	purchases map[string]model.Purchase
}

func (t *memTx) LockGame(_ context.Context, id string) (*model.Game, error) {
	g, ok := t.store.games[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (t *memTx) SoldTickets(_ context.Context, gameID string) (model.TicketCounts, error) {
	return sold(t.purchases, gameID), nil
}

func (t *memTx) LockPurchase(_ context.Context, id string) (*model.Purchase, error) {
	p, ok := t.purchases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (t *memTx) AppendPurchase(_ context.Context, p *model.Purchase) error {
	if t.store.FailAppend != nil {
		if err := t.store.FailAppend(p); err != nil {
			return err
		}
	}
	if _, ok := t.purchases[p.ID]; ok {
		return repository.ErrConflict
	}
	t.purchases[p.ID] = *p
	return nil
}

func (t *memTx) MarkPurchaseInvalid(_ context.Context, id string, note *string) error {
	p, ok := t.purchases[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsValid = false
	p.RefundMemo = note
	t.purchases[id] = p
	return nil
}

func sold(purchases map[string]model.Purchase, gameID string) model.TicketCounts {
	var c model.TicketCounts
	for _, p := range purchases {
		if p.IsValid && p.GameID == gameID {
			c = c.Add(p.Tickets)
		}
	}
	return c
}
