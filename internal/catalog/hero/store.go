package hero

import (
	"context"
	"errors"
	"fmt"

	"bakehouse/internal/catalog/ordering"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("hero banner not found")

const (
	table       = "hero_banners"
	labelColumn = "title"
)

type Store interface {
	Create(ctx context.Context, b *Banner, orderIndex *int) error
	GetByID(ctx context.Context, id int64) (*Banner, error)
	List(ctx context.Context, includeInactive bool, limit, offset int) ([]Banner, error)
	Update(ctx context.Context, id int64, patch *BannerPatch) (*Banner, error)
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

// Create inserts the banner. At most one banner may be active: when the new
// banner comes in active, every other banner is deactivated first, then the
// new one is persisted active. That ordering is load-bearing; reversed, the
// collection would transiently hold zero or two active banners.
func (r *Repository) Create(ctx context.Context, b *Banner, orderIndex *int) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if b.IsActive {
			if _, err := tx.Exec(ctx, `UPDATE hero_banners SET is_active = false, updated_at = now() WHERE is_active = true`); err != nil {
				return fmt.Errorf("deactivate other banners: %w", err)
			}
		}
		query := `
			INSERT INTO hero_banners
				(image_url, remote_asset_id, title, subtitle, alt_text, order_index, is_active)
			VALUES ($1, $2, $3, $4, $5,
				COALESCE($6, (SELECT COALESCE(MAX(order_index), 0) + 1 FROM hero_banners)),
				$7)
			RETURNING id, order_index, created_at, updated_at;
		`
		row := tx.QueryRow(ctx, query,
			b.ImageURL, b.RemoteAssetID, b.Title, b.Subtitle, b.AltText, orderIndex, b.IsActive)
		if err := row.Scan(&b.ID, &b.OrderIndex, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return fmt.Errorf("create hero banner: %w", err)
		}
		return nil
	})
}

const bannerColumns = `
	id, image_url, remote_asset_id, title, subtitle, alt_text,
	order_index, is_active, created_at, updated_at`

func scanBanner(row pgx.Row) (*Banner, error) {
	b := &Banner{}
	err := row.Scan(
		&b.ID, &b.ImageURL, &b.RemoteAssetID, &b.Title, &b.Subtitle, &b.AltText,
		&b.OrderIndex, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Banner, error) {
	b, err := scanBanner(r.db.QueryRow(ctx, `SELECT `+bannerColumns+` FROM hero_banners WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get hero banner: %w", err)
	}
	return b, nil
}

func (r *Repository) List(ctx context.Context, includeInactive bool, limit, offset int) ([]Banner, error) {
	query := `
		SELECT ` + bannerColumns + `
		FROM hero_banners
		WHERE ($1 OR is_active = true)
		ORDER BY order_index ASC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, includeInactive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list hero banners: %w", err)
	}
	defer rows.Close()

	banners := []Banner{}
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hero banner: %w", err)
		}
		banners = append(banners, *b)
	}
	return banners, rows.Err()
}

// Update applies the patch. Activating a banner deactivates every other
// banner first, inside the same transaction, so exactly one ends up active.
func (r *Repository) Update(ctx context.Context, id int64, patch *BannerPatch) (*Banner, error) {
	var b *Banner
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if patch.IsActive != nil && *patch.IsActive {
			if _, err := tx.Exec(ctx, `UPDATE hero_banners SET is_active = false, updated_at = now() WHERE is_active = true AND id <> $1`, id); err != nil {
				return fmt.Errorf("deactivate other banners: %w", err)
			}
		}
		query := `
			UPDATE hero_banners
			SET
				image_url = COALESCE($1, image_url),
				remote_asset_id = COALESCE($2, remote_asset_id),
				title = COALESCE($3, title),
				subtitle = COALESCE($4, subtitle),
				alt_text = COALESCE($5, alt_text),
				is_active = COALESCE($6, is_active),
				updated_at = now()
			WHERE id = $7
			RETURNING ` + bannerColumns + `;
		`
		var err error
		b, err = scanBanner(tx.QueryRow(ctx, query,
			patch.ImageURL, patch.RemoteAssetID, patch.Title, patch.Subtitle, patch.AltText,
			patch.IsActive, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("update hero banner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Repository) Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error) {
	var swap *ordering.Swap
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx, `SELECT order_index FROM hero_banners WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock hero banner: %w", err)
		}

		swap, err = ordering.Reconcile(ctx, ordering.TxCollection{Tx: tx, Table: table, LabelColumn: labelColumn}, id, current, requested)
		return err
	})
	return swap, err
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM hero_banners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete hero banner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
