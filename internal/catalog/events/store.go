package events

import (
	"context"
	"errors"
	"fmt"

	"bakehouse/internal/catalog/ordering"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("event not found")
	// ErrImageArity guards the parallel images/imageAssetIds arrays.
	ErrImageArity = errors.New("images and imageAssetIds must have the same length")
)

const (
	table       = "events"
	labelColumn = "title"
)

type Store interface {
	Create(ctx context.Context, e *Event, orderIndex *int) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context, includeInactive bool, limit, offset int) ([]Event, error)
	Update(ctx context.Context, id int64, patch *EventPatch) (*Event, error)
	Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error)
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Create(ctx context.Context, e *Event, orderIndex *int) error {
	if len(e.Images) != len(e.ImageAssetIDs) {
		return ErrImageArity
	}
	query := `
		INSERT INTO events
			(title, venue, event_date, description, highlights, cover_image_url, cover_asset_id, images, image_asset_ids, order_index, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			COALESCE($10, (SELECT COALESCE(MAX(order_index), 0) + 1 FROM events)),
			$11)
		RETURNING id, order_index, created_at, updated_at;
	`
	row := r.db.QueryRow(ctx, query,
		e.Title, e.Venue, e.Date, e.Description, e.Highlights,
		e.CoverImageURL, e.CoverAssetID, e.Images, e.ImageAssetIDs, orderIndex, e.IsActive)
	if err := row.Scan(&e.ID, &e.OrderIndex, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

const eventColumns = `
	id, title, venue, event_date, description, highlights,
	cover_image_url, cover_asset_id, images, image_asset_ids,
	order_index, is_active, created_at, updated_at`

func scanEvent(row pgx.Row) (*Event, error) {
	e := &Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Venue, &e.Date, &e.Description, &e.Highlights,
		&e.CoverImageURL, &e.CoverAssetID, &e.Images, &e.ImageAssetIDs,
		&e.OrderIndex, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if e.Images == nil {
		e.Images = []string{}
	}
	if e.ImageAssetIDs == nil {
		e.ImageAssetIDs = []string{}
	}
	return e, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1;`
	e, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *Repository) List(ctx context.Context, includeInactive bool, limit, offset int) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE ($1 OR is_active = true)
		ORDER BY order_index ASC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, includeInactive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	list := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id int64, patch *EventPatch) (*Event, error) {
	if (patch.Images == nil) != (patch.ImageAssetIDs == nil) ||
		len(patch.Images) != len(patch.ImageAssetIDs) {
		return nil, ErrImageArity
	}
	query := `
		UPDATE events
		SET
			title = COALESCE($1, title),
			venue = COALESCE($2, venue),
			event_date = COALESCE($3, event_date),
			description = COALESCE($4, description),
			highlights = COALESCE($5, highlights),
			cover_image_url = COALESCE($6, cover_image_url),
			cover_asset_id = COALESCE($7, cover_asset_id),
			images = COALESCE($8, images),
			image_asset_ids = COALESCE($9, image_asset_ids),
			is_active = COALESCE($10, is_active),
			updated_at = now()
		WHERE id = $11
		RETURNING ` + eventColumns + `;
	`
	e, err := scanEvent(r.db.QueryRow(ctx, query,
		patch.Title, patch.Venue, patch.Date, patch.Description, patch.Highlights,
		patch.CoverImageURL, patch.CoverAssetID, patch.Images, patch.ImageAssetIDs,
		patch.IsActive, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

func (r *Repository) Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error) {
	var swap *ordering.Swap
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx, `SELECT order_index FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}

		swap, err = ordering.Reconcile(ctx, ordering.TxCollection{Tx: tx, Table: table, LabelColumn: labelColumn}, id, current, requested)
		return err
	})
	return swap, err
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
