package gallery

import (
	"context"
	"errors"
	"fmt"

	"bakehouse/internal/catalog/ordering"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("gallery image not found")

const (
	table       = "gallery_images"
	labelColumn = "caption"
)

// Store is the data access abstraction for the gallery domain.
// Implemented by Repository (which uses pgxpool.Pool).
type Store interface {
	Create(ctx context.Context, img *Image, orderIndex *int) error
	GetByID(ctx context.Context, id int64) (*Image, error)
	List(ctx context.Context, includeInactive bool, limit, offset int) ([]Image, error)
	Update(ctx context.Context, id int64, patch *ImagePatch) (*Image, error)
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

// Create inserts the image. A nil orderIndex appends to the end of the
// collection.
func (r *Repository) Create(ctx context.Context, img *Image, orderIndex *int) error {
	query := `
		INSERT INTO gallery_images (image_url, remote_asset_id, caption, alt_text, order_index, is_active)
		VALUES ($1, $2, $3, $4,
			COALESCE($5, (SELECT COALESCE(MAX(order_index), 0) + 1 FROM gallery_images)),
			$6)
		RETURNING id, order_index, created_at, updated_at;
	`
	row := r.db.QueryRow(ctx, query,
		img.ImageURL, img.RemoteAssetID, img.Caption, img.AltText, orderIndex, img.IsActive)
	if err := row.Scan(&img.ID, &img.OrderIndex, &img.CreatedAt, &img.UpdatedAt); err != nil {
		return fmt.Errorf("create gallery image: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Image, error) {
	query := `
		SELECT id, image_url, remote_asset_id, caption, alt_text, order_index, is_active, created_at, updated_at
		FROM gallery_images
		WHERE id = $1;
	`
	img := &Image{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&img.ID, &img.ImageURL, &img.RemoteAssetID, &img.Caption, &img.AltText,
		&img.OrderIndex, &img.IsActive, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get gallery image: %w", err)
	}
	return img, nil
}

func (r *Repository) List(ctx context.Context, includeInactive bool, limit, offset int) ([]Image, error) {
	query := `
		SELECT id, image_url, remote_asset_id, caption, alt_text, order_index, is_active, created_at, updated_at
		FROM gallery_images
		WHERE ($1 OR is_active = true)
		ORDER BY order_index ASC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, includeInactive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list gallery images: %w", err)
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(
			&img.ID, &img.ImageURL, &img.RemoteAssetID, &img.Caption, &img.AltText,
			&img.OrderIndex, &img.IsActive, &img.CreatedAt, &img.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan gallery image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id int64, patch *ImagePatch) (*Image, error) {
	query := `
		UPDATE gallery_images
		SET
			image_url = COALESCE($1, image_url),
			remote_asset_id = COALESCE($2, remote_asset_id),
			caption = COALESCE($3, caption),
			alt_text = COALESCE($4, alt_text),
			is_active = COALESCE($5, is_active),
			updated_at = now()
		WHERE id = $6
		RETURNING id, image_url, remote_asset_id, caption, alt_text, order_index, is_active, created_at, updated_at;
	`
	img := &Image{}
	err := r.db.QueryRow(ctx, query,
		patch.ImageURL, patch.RemoteAssetID, patch.Caption, patch.AltText, patch.IsActive, id).Scan(
		&img.ID, &img.ImageURL, &img.RemoteAssetID, &img.Caption, &img.AltText,
		&img.OrderIndex, &img.IsActive, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update gallery image: %w", err)
	}
	return img, nil
}

// Reorder swaps the image into the requested slot inside one transaction.
func (r *Repository) Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error) {
	var swap *ordering.Swap
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx, `SELECT order_index FROM gallery_images WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock gallery image: %w", err)
		}

		swap, err = ordering.Reconcile(ctx, ordering.TxCollection{Tx: tx, Table: table, LabelColumn: labelColumn}, id, current, requested)
		return err
	})
	return swap, err
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete gallery image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
