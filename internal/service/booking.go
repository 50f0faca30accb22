// Package service implements the booking core: availability, purchase and
// cancellation of game tickets on top of an append-only purchase ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/game-ticket-booking/internal/model"
	"github.com/iliyamo/game-ticket-booking/internal/repository"
)

// Notifier is told about committed purchases and cancellations.  It runs
// after the transaction has committed, so its failures are logged and never
// change the outcome returned to the caller.
type Notifier interface {
	PurchaseConfirmed(ctx context.Context, p model.Purchase, g model.Game) error
	PurchaseCancelled(ctx context.Context, original model.Purchase, cancelled model.TicketCounts, replacement *model.Purchase) error
}

// BookingService orchestrates availability queries, purchases and
// cancellations.  It holds no inventory state of its own; every capacity
// decision is taken inside a store transaction that locks the game row.
type BookingService struct {
	store          Store
	maxPerPurchase int
	now            func() time.Time
	notifier       Notifier
}

// Option configures a BookingService.
type Option func(*BookingService)

// WithMaxTicketsPerPurchase overrides the per-purchase ticket cap.
func WithMaxTicketsPerPurchase(n int) Option {
	return func(s *BookingService) {
		if n > 0 {
			s.maxPerPurchase = n
		}
	}
}

// WithClock overrides the time source used for confirmation codes and
// ledger timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *BookingService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotifier registers a Notifier for committed bookings.
func WithNotifier(n Notifier) Option {
	return func(s *BookingService) { s.notifier = n }
}

// NewBookingService constructs a BookingService on top of store.
func NewBookingService(store Store, opts ...Option) *BookingService {
	if store == nil {
		panic("nil store passed to NewBookingService")
	}
	s := &BookingService{
		store:          store,
		maxPerPurchase: DefaultMaxTicketsPerPurchase,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxTicketsPerPurchase returns the configured per-purchase cap.
func (s *BookingService) MaxTicketsPerPurchase() int { return s.maxPerPurchase }

// GameSummary is a game together with its remaining seats.
type GameSummary struct {
	model.Game
	Remaining model.TicketCounts `json:"remaining"`
}

// ListGames returns every game, ascending by date, with remaining seats.
func (s *BookingService) ListGames(ctx context.Context) ([]GameSummary, error) {
	games, err := s.store.Games(ctx)
	if err != nil {
		return nil, internal("list games", err)
	}
	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		sold, err := s.store.SoldTickets(ctx, g.ID)
		if err != nil {
			return nil, internal("sum sold tickets", err)
		}
		out = append(out, GameSummary{Game: g, Remaining: Remaining(g.TicketCount, sold)})
	}
	return out, nil
}

// GetGame returns one game with its remaining seats.
func (s *BookingService) GetGame(ctx context.Context, id string) (*GameSummary, error) {
	g, err := s.game(ctx, id)
	if err != nil {
		return nil, err
	}
	sold, err := s.store.SoldTickets(ctx, id)
	if err != nil {
		return nil, internal("sum sold tickets", err)
	}
	return &GameSummary{Game: *g, Remaining: Remaining(g.TicketCount, sold)}, nil
}

// ListAvailability computes the remaining seats of a game and, for the
// given in-progress selection, how many more tickets each tier may still
// offer.  The result is recomputed on every call and is advisory:
// Purchase checks capacity again under lock.
func (s *BookingService) ListAvailability(ctx context.Context, gameID string, selected model.TicketCounts) (*Availability, error) {
	if err := ValidateQuantities(selected); err != nil {
		return nil, err
	}
	g, err := s.game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	sold, err := s.store.SoldTickets(ctx, gameID)
	if err != nil {
		return nil, internal("sum sold tickets", err)
	}
	remaining := Remaining(g.TicketCount, sold)
	return &Availability{
		GameID:         g.ID,
		Remaining:      remaining,
		Purchasable:    Purchasable(remaining, s.maxPerPurchase, selected),
		MaxPerPurchase: s.maxPerPurchase,
	}, nil
}

// Purchase books tickets for a user and returns the confirmation code.
//
// The request is validated first (negative quantities, empty selection,
// per-purchase cap) without touching the store.  Then, in one transaction,
// the game row is locked, the valid ledger entries are summed and every
// requested tier is checked against what remains; a shortfall rejects the
// purchase with a *SoldOutError.  Otherwise a new ledger entry is appended
// under a freshly derived confirmation code and the transaction commits.
// Nothing is written when any step fails or ctx is cancelled before commit.
func (s *BookingService) Purchase(ctx context.Context, gameID, email string, q model.TicketCounts) (string, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(gameID) == "" {
		return "", fmt.Errorf("%w: game and user are required", ErrInvalidRequest)
	}
	if err := ValidateQuantities(q); err != nil {
		return "", err
	}
	total := q.Total()
	if total == 0 {
		return "", ErrEmptySelection
	}
	if total > s.maxPerPurchase {
		return "", fmt.Errorf("%w: %d tickets requested, at most %d per purchase", ErrLimitExceeded, total, s.maxPerPurchase)
	}

	var (
		purchased model.Purchase
		game      model.Game
	)
	err := s.inTx(ctx, "purchase", func(ctx context.Context, tx Tx) error {
		g, err := tx.LockGame(ctx, gameID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
			}
			return internal("lock game", err)
		}
		sold, err := tx.SoldTickets(ctx, gameID)
		if err != nil {
			return internal("sum sold tickets", err)
		}
		remaining := Remaining(g.TicketCount, sold)
		if tiers := soldOutTiers(q, remaining); len(tiers) > 0 {
			return &SoldOutError{Tiers: tiers, Remaining: remaining}
		}
		p := &model.Purchase{
			GameID:    gameID,
			UserEmail: email,
			IsValid:   true,
			Tickets:   q,
		}
		if err := s.appendPurchase(ctx, tx, p); err != nil {
			return err
		}
		purchased, game = *p, *g
		return nil
	})
	if err != nil {
		return "", err
	}

	if s.notifier != nil {
		if err := s.notifier.PurchaseConfirmed(ctx, purchased, game); err != nil {
			log.Printf("booking: notify purchase %s: %v", purchased.ID, err)
		}
	}
	return purchased.ID, nil
}

// CancelRequest asks to refund some or all tickets of a purchase.
type CancelRequest struct {
	PurchaseID   string
	UserEmail    string
	Tickets      model.TicketCounts // quantities to cancel per tier
	Acknowledged bool
	Note         string
}

// CancelResult describes a committed cancellation.  Replacement is the new
// ledger entry holding the retained tickets of a partial refund; it is nil
// when the whole purchase was cancelled.
type CancelResult struct {
	PurchaseID  string             `json:"purchaseId"`
	Cancelled   model.TicketCounts `json:"cancelled"`
	Replacement *model.Purchase    `json:"replacement,omitempty"`
}

// Cancel refunds tickets of a purchase owned by the caller.
//
// A full refund closes the original entry.  A partial refund closes the
// original entry and appends a new one with the retained quantities, so
// the ledger stays append-only and the availability sum stays correct
// without further bookkeeping.  Both writes happen in one transaction.
func (s *BookingService) Cancel(ctx context.Context, req CancelRequest) (*CancelResult, error) {
	if !req.Acknowledged {
		return nil, ErrNotAcknowledged
	}
	for _, t := range model.Tiers {
		if req.Tickets.Get(t) < 0 {
			return nil, fmt.Errorf("%w: %s quantity is negative", ErrInvalidQuantity, t)
		}
	}
	if req.Tickets.IsZero() {
		return nil, fmt.Errorf("%w: nothing to cancel", ErrInvalidQuantity)
	}
	email := normalizeEmail(req.UserEmail)
	if email == "" {
		return nil, ErrForbidden
	}
	var note *string
	if n := strings.TrimSpace(req.Note); n != "" {
		note = &n
	}

	var (
		original model.Purchase
		result   CancelResult
	)
	err := s.inTx(ctx, "cancel", func(ctx context.Context, tx Tx) error {
		p, err := tx.LockPurchase(ctx, req.PurchaseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: purchase %s", ErrNotFound, req.PurchaseID)
			}
			return internal("lock purchase", err)
		}
		if normalizeEmail(p.UserEmail) != email {
			return ErrForbidden
		}
		if !p.IsValid {
			return ErrAlreadyCancelled
		}
		for _, t := range model.Tiers {
			if req.Tickets.Get(t) > p.Tickets.Get(t) {
				return fmt.Errorf("%w: cannot cancel %d %s tickets out of %d",
					ErrInvalidQuantity, req.Tickets.Get(t), t, p.Tickets.Get(t))
			}
		}

		if err := tx.MarkPurchaseInvalid(ctx, p.ID, note); err != nil {
			return internal("mark purchase invalid", err)
		}
		result = CancelResult{PurchaseID: p.ID, Cancelled: req.Tickets}

		retained := p.Tickets.Sub(req.Tickets)
		if !retained.IsZero() {
			replacement := &model.Purchase{
				GameID:     p.GameID,
				UserEmail:  p.UserEmail,
				IsValid:    true,
				Tickets:    retained,
				Supersedes: &p.ID,
			}
			if err := s.appendPurchase(ctx, tx, replacement); err != nil {
				return err
			}
			result.Replacement = replacement
		}
		original = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.PurchaseCancelled(ctx, original, result.Cancelled, result.Replacement); err != nil {
			log.Printf("booking: notify cancellation %s: %v", original.ID, err)
		}
	}
	return &result, nil
}

// GetPurchase returns a ledger entry by its confirmation code, valid or not.
func (s *BookingService) GetPurchase(ctx context.Context, id string) (*model.Purchase, error) {
	p, err := s.store.Purchase(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: purchase %s", ErrNotFound, id)
		}
		return nil, internal("get purchase", err)
	}
	return p, nil
}

// GetPurchaseForUser is GetPurchase restricted to the purchaser.
func (s *BookingService) GetPurchaseForUser(ctx context.Context, id, email string) (*model.Purchase, error) {
	p, err := s.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	if normalizeEmail(p.UserEmail) != normalizeEmail(email) {
		return nil, ErrForbidden
	}
	return p, nil
}

// ListPurchasesByUser returns the user's valid purchases joined with their
// games, newest first.
func (s *BookingService) ListPurchasesByUser(ctx context.Context, email string) ([]repository.PurchaseDetail, error) {
	details, err := s.store.PurchasesByUser(ctx, normalizeEmail(email))
	if err != nil {
		return nil, internal("list purchases", err)
	}
	return details, nil
}

// GetUser returns the account record of a user.
func (s *BookingService) GetUser(ctx context.Context, email string) (*model.User, error) {
	u, err := s.store.User(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
		}
		return nil, internal("get user", err)
	}
	return u, nil
}

func (s *BookingService) game(ctx context.Context, id string) (*model.Game, error) {
	g, err := s.store.Game(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
		}
		return nil, internal("get game", err)
	}
	return g, nil
}

// appendPurchase derives a confirmation code for p and appends it.  A code
// collision is retried once with a fresh timestamp; a second collision is
// reported as an internal error.
func (s *BookingService) appendPurchase(ctx context.Context, tx Tx, p *model.Purchase) error {
	for attempt := 1; attempt <= 2; attempt++ {
		at := s.now().UTC()
		p.ID = ConfirmationCode(p.UserEmail, p.GameID, at, p.Tickets)
		p.CreatedAt = at
		err := tx.AppendPurchase(ctx, p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return internal("append purchase", err)
		}
		log.Printf("booking: confirmation code %s already taken (attempt %d)", p.ID, attempt)
	}
	return fmt.Errorf("%w: confirmation code collided twice", ErrInternal)
}

// inTx runs fn in a store transaction and makes sure every failure leaves
// with a kind.
func (s *BookingService) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx Tx) error) error {
	err := s.store.InTx(ctx, fn)
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return err
		}
	}
	return internal(op, err)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
