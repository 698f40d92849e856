package reviews

import "time"

type Review struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Rating        int       `json:"rating"`
	ReviewText    string    `json:"reviewText"`
	CakeType      string    `json:"cakeType"`
	AvatarURL     *string   `json:"avatarUrl,omitempty"`
	AvatarAssetID *string   `json:"remoteAssetAvatarId,omitempty"`
	IsApproved    bool      `json:"isApproved"`
	IsFeatured    bool      `json:"isFeatured"`
	OrderIndex    int       `json:"orderIndex"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ReviewPatch carries a partial update; nil fields are left untouched.
// IsApproved and IsFeatured toggle independently; featured-but-unapproved is
// a valid state.
type ReviewPatch struct {
	Name          *string
	Email         *string
	Rating        *int
	ReviewText    *string
	CakeType      *string
	AvatarURL     *string
	AvatarAssetID *string
	IsApproved    *bool
	IsFeatured    *bool
	IsActive      *bool
}
