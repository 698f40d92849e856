package ordering

import (
	"context"
)

// Swap describes the record that absorbed the mover's old slot during a
// reorder. OldOrder is the slot the partner gave up (the mover's requested
// order); NewOrder is the slot it absorbed (the mover's previous order).
type Swap struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	OldOrder int    `json:"oldOrder"`
	NewOrder int    `json:"newOrder"`
}

// Collection is the minimal view of an ordered catalog table the reconciler
// needs. Implemented by TxCollection against Postgres and by in-memory fakes
// in tests.
type Collection interface {
	// ActiveAt returns the active record at the given order index, excluding
	// excludeID. ok is false when the slot is vacant.
	ActiveAt(ctx context.Context, order int, excludeID int64) (id int64, label string, ok bool, err error)
	SetOrder(ctx context.Context, id int64, order int) error
}

// Reconcile moves the record to requested using a two-party swap: if another
// active record holds the requested slot it absorbs the mover's old slot, and
// nothing else is touched. Requesting the current order is a no-op. Returns
// nil swap metadata when no partner was displaced.
func Reconcile(ctx context.Context, col Collection, id int64, current, requested int) (*Swap, error) {
	if requested == current {
		return nil, nil
	}

	partnerID, label, ok, err := col.ActiveAt(ctx, requested, id)
	if err != nil {
		return nil, err
	}

	var swap *Swap
	if ok {
		if err := col.SetOrder(ctx, partnerID, current); err != nil {
			return nil, err
		}
		swap = &Swap{ID: partnerID, Label: label, OldOrder: requested, NewOrder: current}
	}

	if err := col.SetOrder(ctx, id, requested); err != nil {
		return nil, err
	}
	return swap, nil
}
