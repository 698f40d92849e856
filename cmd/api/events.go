package main

import (
	"errors"
	"fmt"
	"net/http"

	"bakehouse/internal/assets"
	"bakehouse/internal/catalog/events"
	"bakehouse/internal/catalog/ordering"
	"bakehouse/internal/params"
)

type createEventPayload struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Venue       string   `json:"venue" validate:"max=200"`
	Date        string   `json:"date" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=5000"`
	Highlights  string   `json:"highlights" validate:"max=2000"`
	CoverImage  string   `json:"coverImage" validate:"required"`
	Images      []string `json:"images" validate:"omitempty,max=20,dive,required"`
	OrderIndex  *int     `json:"orderIndex" validate:"omitempty,min=1"`
	IsActive    *bool    `json:"isActive"`
	Key         string   `json:"key"`
}

type updateEventPayload struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Venue       *string  `json:"venue" validate:"omitempty,max=200"`
	Date        *string  `json:"date" validate:"omitempty,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Highlights  *string  `json:"highlights" validate:"omitempty,max=2000"`
	CoverImage  *string  `json:"coverImage"`
	Images      []string `json:"images" validate:"omitempty,max=20,dive,required"`
	OrderIndex  *int     `json:"orderIndex" validate:"omitempty,min=1"`
	IsActive    *bool    `json:"isActive"`
	Key         string   `json:"key"`
}

func (app *application) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	list, err := app.store.Events.List(r.Context(), app.isAdmin(r), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	e, err := app.store.Events.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, e); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createEventHandler(w http.ResponseWriter, r *http.Request) {
	var payload createEventPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	cover, err := app.resolveImage(r.Context(), payload.CoverImage, eventUploads)
	if err != nil {
		app.imageErrorResponse(w, r, err)
		return
	}

	var urls, assetIDs []string
	if len(payload.Images) > 0 {
		urls, assetIDs, err = app.resolveImageList(r.Context(), payload.Images, eventUploads)
		if err != nil {
			app.imageErrorResponse(w, r, err)
			return
		}
	}

	e := &events.Event{
		Title:         payload.Title,
		Venue:         payload.Venue,
		Date:          payload.Date,
		Description:   payload.Description,
		Highlights:    payload.Highlights,
		CoverImageURL: cover.URL,
		CoverAssetID:  cover.AssetID,
		Images:        urls,
		ImageAssetIDs: assetIDs,
		IsActive:      true,
	}
	if e.Images == nil {
		e.Images = []string{}
		e.ImageAssetIDs = []string{}
	}
	if payload.IsActive != nil {
		e.IsActive = *payload.IsActive
	}

	if err := app.store.Events.Create(r.Context(), e, payload.OrderIndex); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mutationResponse{Success: true, Data: e, Cloudinary: cover})
}

func (app *application) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	var payload updateEventPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	existing, err := app.store.Events.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	patch := &events.EventPatch{
		Title:       payload.Title,
		Venue:       payload.Venue,
		Date:        payload.Date,
		Description: payload.Description,
		Highlights:  payload.Highlights,
		IsActive:    payload.IsActive,
	}

	var uploaded *assets.UploadResult
	if payload.CoverImage != nil && *payload.CoverImage != "" && *payload.CoverImage != existing.CoverImageURL {
		uploaded, err = app.resolveImage(r.Context(), *payload.CoverImage, eventUploads)
		if err != nil {
			app.imageErrorResponse(w, r, err)
			return
		}
		patch.CoverImageURL = &uploaded.URL
		patch.CoverAssetID = &uploaded.AssetID

		if existing.CoverAssetID != "" && existing.CoverAssetID != uploaded.AssetID {
			app.deleteAssets(existing.CoverAssetID)
		}
	}

	if payload.Images != nil {
		urls, assetIDs, err := app.resolveImageList(r.Context(), payload.Images, eventUploads)
		if err != nil {
			app.imageErrorResponse(w, r, err)
			return
		}
		patch.Images = urls
		patch.ImageAssetIDs = assetIDs

		// Album entries dropped by this update lose their remote assets too.
		kept := make(map[string]bool, len(assetIDs))
		for _, aid := range assetIDs {
			kept[aid] = true
		}
		var removed []string
		for _, aid := range existing.ImageAssetIDs {
			if !kept[aid] {
				removed = append(removed, aid)
			}
		}
		app.deleteAssets(removed...)
	}

	e, err := app.store.Events.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, events.ErrNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, events.ErrImageArity):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	var swap *ordering.Swap
	if payload.OrderIndex != nil {
		swap, err = app.store.Events.Reorder(r.Context(), id, *payload.OrderIndex)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		e.OrderIndex = *payload.OrderIndex
	}

	resp := mutationResponse{Success: true, Data: e, Cloudinary: uploaded, SwappedWith: swap}
	if swap != nil {
		resp.Message = fmt.Sprintf("Order swapped with %s", swap.Label)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (app *application) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	existing, err := app.store.Events.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Events.Delete(r.Context(), id); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	assetIDs := append([]string{existing.CoverAssetID}, existing.ImageAssetIDs...)
	app.deleteAssets(assetIDs...)

	writeJSON(w, http.StatusOK, mutationResponse{Success: true, Message: "Event deleted"})
}
