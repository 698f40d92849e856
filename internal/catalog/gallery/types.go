package gallery

import "time"

type Image struct {
	ID            int64     `json:"id"`
	ImageURL      string    `json:"imageUrl"`
	RemoteAssetID string    `json:"remoteAssetId"`
	Caption       string    `json:"caption"`
	AltText       string    `json:"altText"`
	OrderIndex    int       `json:"orderIndex"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ImagePatch carries a partial update; nil fields are left untouched.
type ImagePatch struct {
	ImageURL      *string
	RemoteAssetID *string
	Caption       *string
	AltText       *string
	IsActive      *bool
}
