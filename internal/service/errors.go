package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/game-ticket-booking/internal/model"
)

// Error kinds returned by the booking service.  Every failure carries
// exactly one of them (test with errors.Is), so the HTTP layer can map it
// to a status code and an actionable message.
var (
	ErrNotFound         = errors.New("not_found")
	ErrConflict         = errors.New("conflict")
	ErrSoldOut          = errors.New("sold_out")
	ErrEmptySelection   = errors.New("empty_selection")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidRequest   = errors.New("invalid_request")
	ErrLimitExceeded    = errors.New("limit_exceeded")
	ErrNotAcknowledged  = errors.New("not_acknowledged")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyCancelled = errors.New("already_cancelled")
	ErrInternal         = errors.New("internal_error")
)

var kinds = []error{
	ErrNotFound, ErrConflict, ErrSoldOut, ErrEmptySelection, ErrInvalidQuantity,
	ErrInvalidRequest, ErrLimitExceeded, ErrNotAcknowledged, ErrForbidden,
	ErrAlreadyCancelled, ErrInternal,
}

// KindOf returns the kind name of err, e.g. "sold_out".  Errors that carry
// no kind are reported as internal.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return ErrInternal.Error()
}

// SoldOutError reports which tiers could not satisfy a purchase at commit
// time.  It matches ErrSoldOut with errors.Is.
type SoldOutError struct {
	Tiers     []model.Tier
	Remaining model.TicketCounts
}

func (e *SoldOutError) Error() string {
	names := make([]string, 0, len(e.Tiers))
	for _, t := range e.Tiers {
		names = append(names, string(t))
	}
	return fmt.Sprintf("sold out: %s", strings.Join(names, ", "))
}

func (e *SoldOutError) Is(target error) bool { return target == ErrSoldOut }

// internal wraps a store failure so it matches ErrInternal while keeping
// the cause in the message.
func internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
