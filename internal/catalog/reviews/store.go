package reviews

import (
	"context"
	"errors"
	"fmt"

	"bakehouse/internal/catalog/ordering"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("review not found")

const (
	table       = "reviews"
	labelColumn = "name"
)

type Store interface {
	Create(ctx context.Context, rev *Review) error
	GetByID(ctx context.Context, id int64) (*Review, error)
	// List returns approved, active reviews when publicOnly is set; otherwise
	// everything, including pending moderation.
	List(ctx context.Context, publicOnly bool, limit, offset int) ([]Review, error)
	Update(ctx context.Context, id int64, patch *ReviewPatch) (*Review, error)
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

func (r *Repository) Create(ctx context.Context, rev *Review) error {
	query := `
		INSERT INTO reviews
			(name, email, rating, review_text, cake_type, avatar_url, avatar_asset_id, is_approved, is_featured, order_index, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			(SELECT COALESCE(MAX(order_index), 0) + 1 FROM reviews),
			true)
		RETURNING id, order_index, is_active, created_at, updated_at;
	`
	row := r.db.QueryRow(ctx, query,
		rev.Name, rev.Email, rev.Rating, rev.ReviewText, rev.CakeType,
		rev.AvatarURL, rev.AvatarAssetID, rev.IsApproved, rev.IsFeatured)
	if err := row.Scan(&rev.ID, &rev.OrderIndex, &rev.IsActive, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

const reviewColumns = `
	id, name, email, rating, review_text, cake_type, avatar_url, avatar_asset_id,
	is_approved, is_featured, order_index, is_active, created_at, updated_at`

func scanReview(row pgx.Row) (*Review, error) {
	rev := &Review{}
	err := row.Scan(
		&rev.ID, &rev.Name, &rev.Email, &rev.Rating, &rev.ReviewText, &rev.CakeType,
		&rev.AvatarURL, &rev.AvatarAssetID, &rev.IsApproved, &rev.IsFeatured,
		&rev.OrderIndex, &rev.IsActive, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Review, error) {
	rev, err := scanReview(r.db.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return rev, nil
}

func (r *Repository) List(ctx context.Context, publicOnly bool, limit, offset int) ([]Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE (NOT $1 OR (is_active = true AND is_approved = true))
		ORDER BY order_index ASC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, publicOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	list := []Review{}
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		list = append(list, *rev)
	}
	return list, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id int64, patch *ReviewPatch) (*Review, error) {
	query := `
		UPDATE reviews
		SET
			name = COALESCE($1, name),
			email = COALESCE($2, email),
			rating = COALESCE($3, rating),
			review_text = COALESCE($4, review_text),
			cake_type = COALESCE($5, cake_type),
			avatar_url = COALESCE($6, avatar_url),
			avatar_asset_id = COALESCE($7, avatar_asset_id),
			is_approved = COALESCE($8, is_approved),
			is_featured = COALESCE($9, is_featured),
			is_active = COALESCE($10, is_active),
			updated_at = now()
		WHERE id = $11
		RETURNING ` + reviewColumns + `;
	`
	rev, err := scanReview(r.db.QueryRow(ctx, query,
		patch.Name, patch.Email, patch.Rating, patch.ReviewText, patch.CakeType,
		patch.AvatarURL, patch.AvatarAssetID, patch.IsApproved, patch.IsFeatured,
		patch.IsActive, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return rev, nil
}

func (r *Repository) Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error) {
	var swap *ordering.Swap
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx, `SELECT order_index FROM reviews WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock review: %w", err)
		}

		swap, err = ordering.Reconcile(ctx, ordering.TxCollection{Tx: tx, Table: table, LabelColumn: labelColumn}, id, current, requested)
		return err
	})
	return swap, err
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
