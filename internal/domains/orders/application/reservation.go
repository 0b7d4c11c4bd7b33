package application

import (
	"context"
	"errors"

	inventoryports "github.com/Apurer/b2b-ordering-api/internal/domains/inventory/ports"
)

type reservation struct {
	itemID   string
	quantity int
}

// reservationSet tracks ledger holds taken for one request so they can be
// undone together.
type reservationSet struct {
	ledger inventoryports.Ledger
	held   []reservation
}

func newReservationSet(ledger inventoryports.Ledger) *reservationSet {
	return &reservationSet{ledger: ledger}
}

// Reserve takes a hold and remembers it on success.
func (r *reservationSet) Reserve(ctx context.Context, itemID string, quantity int) error {
	if err := r.ledger.Reserve(ctx, itemID, quantity); err != nil {
		return err
	}
	r.held = append(r.held, reservation{itemID: itemID, quantity: quantity})
	return nil
}

// ReleaseAll returns every hold to the ledger, newest first. It detaches from
// ctx cancellation so a caller deadline cannot strand a hold. Releases keep
// going after a failure; all failures are joined.
func (r *reservationSet) ReleaseAll(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(r.held) - 1; i >= 0; i-- {
		h := r.held[i]
		if err := r.ledger.Release(ctx, h.itemID, h.quantity); err != nil {
			errs = append(errs, err)
		}
	}
	r.held = nil
	return errors.Join(errs...)
}

// Len reports how many holds are outstanding.
func (r *reservationSet) Len() int { return len(r.held) }
