package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxCollection adapts one ordered catalog table to the Collection interface
// inside an open transaction. Table and LabelColumn always come from
// compile-time constants in the owning store, never from request input.
type TxCollection struct {
	Tx          pgx.Tx
	Table       string
	LabelColumn string
}

func (c TxCollection) ActiveAt(ctx context.Context, order int, excludeID int64) (int64, string, bool, error) {
	query := fmt.Sprintf(`
		SELECT id, %s
		FROM %s
		WHERE order_index = $1 AND is_active = true AND id <> $2
		LIMIT 1
	`, c.LabelColumn, c.Table)

	var (
		id    int64
		label string
	)
	if err := c.Tx.QueryRow(ctx, query, order, excludeID).Scan(&id, &label); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", false, nil
		}
		return 0, "", false, fmt.Errorf("find swap partner: %w", err)
	}
	return id, label, true, nil
}

func (c TxCollection) SetOrder(ctx context.Context, id int64, order int) error {
	query := fmt.Sprintf(`UPDATE %s SET order_index = $1, updated_at = now() WHERE id = $2`, c.Table)
	if _, err := c.Tx.Exec(ctx, query, order, id); err != nil {
		return fmt.Errorf("set order: %w", err)
	}
	return nil
}
