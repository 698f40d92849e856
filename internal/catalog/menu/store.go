package menu

import (
	"context"
	"errors"
	"fmt"

	"bakehouse/internal/catalog/ordering"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound         = errors.New("menu item not found")
	ErrCategoryNotFound = errors.New("category not found")
)

const (
	table       = "menu_items"
	labelColumn = "name"
)

// Store is the data access abstraction for the menu domain, including the
// categories menu items hang off.
type Store interface {
	Create(ctx context.Context, item *Item, orderIndex *int) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context, includeInactive bool, limit, offset int) ([]Item, error)
	Update(ctx context.Context, id int64, patch *ItemPatch) (*Item, error)
	Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error)
	Delete(ctx context.Context, id int64) error

	// ResolveCategory finds-or-creates a category by normalized name.
	// Returns (nil, nil) for empty input, meaning "no category".
	ResolveCategory(ctx context.Context, name string) (*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
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

func (r *Repository) Create(ctx context.Context, item *Item, orderIndex *int) error {
	query := `
		INSERT INTO menu_items
			(name, description, image_url, remote_asset_id, badge, price, discount_price, price_unit, category_id, order_index, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			COALESCE($10, (SELECT COALESCE(MAX(order_index), 0) + 1 FROM menu_items)),
			$11)
		RETURNING id, order_index, created_at, updated_at;
	`
	row := r.db.QueryRow(ctx, query,
		item.Name, item.Description, item.ImageURL, item.RemoteAssetID, item.Badge,
		item.Price, item.DiscountPrice, item.PriceUnit, item.CategoryID, orderIndex, item.IsActive)
	if err := row.Scan(&item.ID, &item.OrderIndex, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}
	if item.CategoryID != nil {
		cat, err := r.GetCategory(ctx, *item.CategoryID)
		if err != nil {
			return fmt.Errorf("load category %d: %w", *item.CategoryID, err)
		}
		item.Category = cat
	}
	item.deriveDiscount()
	return nil
}

const itemColumns = `
	m.id, m.name, m.description, m.image_url, m.remote_asset_id, m.badge,
	m.price, m.discount_price, m.price_unit, m.category_id, m.order_index,
	m.is_active, m.created_at, m.updated_at, c.id, c.name`

func scanItem(row pgx.Row) (*Item, error) {
	item := &Item{}
	var (
		catID   *int64
		catName *string
	)
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.ImageURL, &item.RemoteAssetID, &item.Badge,
		&item.Price, &item.DiscountPrice, &item.PriceUnit, &item.CategoryID, &item.OrderIndex,
		&item.IsActive, &item.CreatedAt, &item.UpdatedAt, &catID, &catName)
	if err != nil {
		return nil, err
	}
	if catID != nil && catName != nil {
		item.Category = &Category{ID: *catID, Name: *catName}
	}
	item.deriveDiscount()
	return item, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM menu_items m
		LEFT JOIN categories c ON c.id = m.category_id
		WHERE m.id = $1;
	`
	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	return item, nil
}

func (r *Repository) List(ctx context.Context, includeInactive bool, limit, offset int) ([]Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM menu_items m
		LEFT JOIN categories c ON c.id = m.category_id
		WHERE ($1 OR m.is_active = true)
		ORDER BY m.order_index ASC, m.created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, includeInactive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id int64, patch *ItemPatch) (*Item, error) {
	query := `
		UPDATE menu_items
		SET
			name = COALESCE($1, name),
			description = COALESCE($2, description),
			image_url = COALESCE($3, image_url),
			remote_asset_id = COALESCE($4, remote_asset_id),
			badge = COALESCE($5, badge),
			price = COALESCE($6, price),
			discount_price = CASE WHEN $7 THEN NULL ELSE COALESCE($8, discount_price) END,
			price_unit = COALESCE($9, price_unit),
			category_id = CASE WHEN $10 THEN NULL ELSE COALESCE($11, category_id) END,
			is_active = COALESCE($12, is_active),
			updated_at = now()
		WHERE id = $13;
	`
	tag, err := r.db.Exec(ctx, query,
		patch.Name, patch.Description, patch.ImageURL, patch.RemoteAssetID, patch.Badge,
		patch.Price, patch.ClearDiscount, patch.DiscountPrice, patch.PriceUnit,
		patch.ClearCategory, patch.CategoryID, patch.IsActive, id)
	if err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error) {
	var swap *ordering.Swap
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx, `SELECT order_index FROM menu_items WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock menu item: %w", err)
		}

		swap, err = ordering.Reconcile(ctx, ordering.TxCollection{Tx: tx, Table: table, LabelColumn: labelColumn}, id, current, requested)
		return err
	})
	return swap, err
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ResolveCategory normalizes the name and finds-or-creates the matching
// category. Matching is case-insensitive so " cakes " and "Cakes" dedup to
// one record. Categories are never deleted here.
func (r *Repository) ResolveCategory(ctx context.Context, name string) (*Category, error) {
	name = NormalizeCategoryName(name)
	if name == "" {
		return nil, nil
	}

	cat := &Category{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name FROM categories WHERE LOWER(name) = LOWER($1) LIMIT 1`, name).
		Scan(&cat.ID, &cat.Name)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("find category: %w", err)
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, name`, name).
		Scan(&cat.ID, &cat.Name)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	cat := &Category{}
	err := r.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).
		Scan(&cat.ID, &cat.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY LOWER(name) ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	cats := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
