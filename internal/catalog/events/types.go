package events

import "time"

type Event struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Venue         string    `json:"venue"`
	Date          string    `json:"date"`
	Description   string    `json:"description"`
	Highlights    string    `json:"highlights"`
	CoverImageURL string    `json:"coverImageUrl"`
	CoverAssetID  string    `json:"coverAssetId"`
	Images        []string  `json:"images"`
	ImageAssetIDs []string  `json:"imageAssetIds"`
	OrderIndex    int       `json:"orderIndex"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EventPatch carries a partial update; nil fields are left untouched. Images
// and ImageAssetIDs must be set together so the parallel arrays stay the same
// length.
type EventPatch struct {
	Title         *string
	Venue         *string
	Date          *string
	Description   *string
	Highlights    *string
	CoverImageURL *string
	CoverAssetID  *string
	Images        []string
	ImageAssetIDs []string
	IsActive      *bool
}
