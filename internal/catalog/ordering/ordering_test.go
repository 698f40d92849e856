package ordering

import (
	"context"
	"testing"
)

type memRecord struct {
	id     int64
	label  string
	order  int
	active bool
}

type memCollection struct {
	records []*memRecord
}

func (c *memCollection) ActiveAt(_ context.Context, order int, excludeID int64) (int64, string, bool, error) {
	for _, rec := range c.records {
		if rec.active && rec.order == order && rec.id != excludeID {
			return rec.id, rec.label, true, nil
		}
	}
	return 0, "", false, nil
}

func (c *memCollection) SetOrder(_ context.Context, id int64, order int) error {
	for _, rec := range c.records {
		if rec.id == id {
			rec.order = order
			return nil
		}
	}
	return nil
}

func (c *memCollection) get(id int64) *memRecord {
	for _, rec := range c.records {
		if rec.id == id {
			return rec
		}
	}
	return nil
}

func threeEvents() *memCollection {
	return &memCollection{records: []*memRecord{
		{id: 1, label: "Spring Tasting", order: 1, active: true},
		{id: 2, label: "Wedding Fair", order: 2, active: true},
		{id: 3, label: "Christmas Market", order: 3, active: true},
	}}
}

func TestReconcileSwap(t *testing.T) {
	col := threeEvents()

	// Move id 3 from order 3 to order 1, currently held by id 1.
	swap, err := Reconcile(context.Background(), col, 3, 3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swap == nil {
		t.Fatal("expected swap metadata")
	}
	if swap.ID != 1 || swap.Label != "Spring Tasting" {
		t.Errorf("swap partner = %d %q", swap.ID, swap.Label)
	}
	if swap.OldOrder != 1 || swap.NewOrder != 3 {
		t.Errorf("swap orders = (%d, %d), want (1, 3)", swap.OldOrder, swap.NewOrder)
	}

	if got := col.get(3).order; got != 1 {
		t.Errorf("mover order = %d, want 1", got)
	}
	if got := col.get(1).order; got != 3 {
		t.Errorf("partner order = %d, want 3", got)
	}
	// Two-party swap: the bystander is untouched.
	if got := col.get(2).order; got != 2 {
		t.Errorf("bystander order = %d, want 2", got)
	}
}

func TestReconcileSameOrderIsNoop(t *testing.T) {
	col := threeEvents()

	swap, err := Reconcile(context.Background(), col, 2, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swap != nil {
		t.Errorf("no swap should be reported, got %+v", swap)
	}
	for i, want := range []int{1, 2, 3} {
		if got := col.records[i].order; got != want {
			t.Errorf("record %d order = %d, want %d", i, got, want)
		}
	}
}

func TestReconcileVacantSlot(t *testing.T) {
	col := threeEvents()

	swap, err := Reconcile(context.Background(), col, 2, 2, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swap != nil {
		t.Errorf("vacant slot should not report a swap, got %+v", swap)
	}
	if got := col.get(2).order; got != 9 {
		t.Errorf("mover order = %d, want 9", got)
	}
}

func TestReconcileIgnoresInactivePartner(t *testing.T) {
	col := threeEvents()
	col.get(1).active = false

	swap, err := Reconcile(context.Background(), col, 3, 3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swap != nil {
		t.Errorf("inactive records are not swap partners, got %+v", swap)
	}
	if got := col.get(3).order; got != 1 {
		t.Errorf("mover order = %d, want 1", got)
	}
	if got := col.get(1).order; got != 1 {
		t.Errorf("inactive record order = %d, want 1 (untouched)", got)
	}
}
