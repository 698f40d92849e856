package hero

import "time"

type Banner struct {
	ID            int64     `json:"id"`
	ImageURL      string    `json:"imageUrl"`
	RemoteAssetID string    `json:"remoteAssetId"`
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle"`
	AltText       string    `json:"altText"`
	OrderIndex    int       `json:"orderIndex"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BannerPatch carries a partial update; nil fields are left untouched.
type BannerPatch struct {
	ImageURL      *string
	RemoteAssetID *string
	Title         *string
	Subtitle      *string
	AltText       *string
	IsActive      *bool
}
