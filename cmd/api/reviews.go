package main

import (
	"errors"
	"fmt"
	"net/http"

	"bakehouse/internal/catalog/ordering"
	"bakehouse/internal/catalog/reviews"
	"bakehouse/internal/params"
)

type submitReviewPayload struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string `json:"reviewText" validate:"required,max=2000"`
	CakeType   string `json:"cakeType" validate:"max=100"`
	Avatar     string `json:"avatar"`
	Key        string `json:"key"`

	// Accepted but never honored; a submission cannot approve or feature
	// itself.
	IsApproved bool `json:"isApproved"`
	IsFeatured bool `json:"isFeatured"`
}

type updateReviewPayload struct {
	Name       *string `json:"name" validate:"omitempty,max=100"`
	Email      *string `json:"email" validate:"omitempty,email,max=254"`
	Rating     *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	ReviewText *string `json:"reviewText" validate:"omitempty,max=2000"`
	CakeType   *string `json:"cakeType" validate:"omitempty,max=100"`
	Avatar     *string `json:"avatar"`
	IsApproved *bool   `json:"isApproved"`
	IsFeatured *bool   `json:"isFeatured"`
	OrderIndex *int    `json:"orderIndex" validate:"omitempty,min=1"`
	IsActive   *bool   `json:"isActive"`
	Key        string  `json:"key"`
}

func (app *application) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	list, err := app.store.Reviews.List(r.Context(), !app.isAdmin(r), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	rev, err := app.store.Reviews.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, reviews.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, rev); err != nil {
		app.internalServerError(w, r, err)
	}
}

// submitReviewHandler is the only unauthenticated mutation. Whatever the
// payload claims, a fresh submission always starts unapproved and unfeatured.
func (app *application) submitReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload submitReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	rev := &reviews.Review{
		Name:       payload.Name,
		Email:      payload.Email,
		Rating:     payload.Rating,
		ReviewText: payload.ReviewText,
		CakeType:   payload.CakeType,
		IsApproved: false,
		IsFeatured: false,
	}

	if payload.Avatar != "" {
		res, err := app.resolveImage(r.Context(), payload.Avatar, avatarUploads)
		if err != nil {
			app.imageErrorResponse(w, r, err)
			return
		}
		rev.AvatarURL = &res.URL
		rev.AvatarAssetID = &res.AssetID
	}

	if err := app.store.Reviews.Create(r.Context(), rev); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mutationResponse{Success: true, Data: rev, Message: "Thank you! Your review is pending approval."})
}

func (app *application) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	var payload updateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	existing, err := app.store.Reviews.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, reviews.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	patch := &reviews.ReviewPatch{
		Name:       payload.Name,
		Email:      payload.Email,
		Rating:     payload.Rating,
		ReviewText: payload.ReviewText,
		CakeType:   payload.CakeType,
		IsApproved: payload.IsApproved,
		IsFeatured: payload.IsFeatured,
		IsActive:   payload.IsActive,
	}

	if payload.Avatar != nil && *payload.Avatar != "" &&
		(existing.AvatarURL == nil || *payload.Avatar != *existing.AvatarURL) {
		res, err := app.resolveImage(r.Context(), *payload.Avatar, avatarUploads)
		if err != nil {
			app.imageErrorResponse(w, r, err)
			return
		}
		patch.AvatarURL = &res.URL
		patch.AvatarAssetID = &res.AssetID

		if existing.AvatarAssetID != nil && *existing.AvatarAssetID != res.AssetID {
			app.deleteAssets(*existing.AvatarAssetID)
		}
	}

	rev, err := app.store.Reviews.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, reviews.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	var swap *ordering.Swap
	if payload.OrderIndex != nil {
		swap, err = app.store.Reviews.Reorder(r.Context(), id, *payload.OrderIndex)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		rev.OrderIndex = *payload.OrderIndex
	}

	resp := mutationResponse{Success: true, Data: rev, SwappedWith: swap}
	if swap != nil {
		resp.Message = fmt.Sprintf("Order swapped with %s", swap.Label)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	existing, err := app.store.Reviews.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, reviews.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Reviews.Delete(r.Context(), id); err != nil {
		if errors.Is(err, reviews.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if existing.AvatarAssetID != nil {
		app.deleteAssets(*existing.AvatarAssetID)
	}

	writeJSON(w, http.StatusOK, mutationResponse{Success: true, Message: "Review deleted"})
}
