package menu

import (
	"math"
	"strings"
	"time"
)

// CategoryNameMax caps free-text category names before dedup.
const CategoryNameMax = 100

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Item struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"imageUrl"`
	RemoteAssetID   string    `json:"remoteAssetId"`
	Badge           *string   `json:"badge,omitempty"`
	Price           float64   `json:"price"`
	DiscountPrice   *float64  `json:"discountPrice,omitempty"`
	DiscountPercent *int      `json:"discountPercent,omitempty"`
	PriceUnit       string    `json:"priceUnit"`
	CategoryID      *int64    `json:"categoryId,omitempty"`
	Category        *Category `json:"category,omitempty"`
	OrderIndex      int       `json:"orderIndex"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ItemPatch carries a partial update; nil fields are left untouched.
// ClearDiscount and ClearCategory drop the nullable columns explicitly, since
// a nil pointer already means "keep".
type ItemPatch struct {
	Name          *string
	Description   *string
	ImageURL      *string
	RemoteAssetID *string
	Badge         *string
	Price         *float64
	DiscountPrice *float64
	ClearDiscount bool
	PriceUnit     *string
	CategoryID    *int64
	ClearCategory bool
	IsActive      *bool
}

// DiscountPercent is the rounded percentage off the regular price.
func DiscountPercent(price, discountPrice float64) int {
	if price <= 0 {
		return 0
	}
	return int(math.Round((price - discountPrice) / price * 100))
}

func (i *Item) deriveDiscount() {
	if i.DiscountPrice != nil {
		p := DiscountPercent(i.Price, *i.DiscountPrice)
		i.DiscountPercent = &p
	}
}

// NormalizeCategoryName trims and length-caps a free-text category name.
// Dedup against existing categories is case-insensitive and done in SQL.
func NormalizeCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > CategoryNameMax {
		name = strings.TrimSpace(name[:CategoryNameMax])
	}
	return name
}
