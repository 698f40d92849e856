package main

import (
	"errors"
	"fmt"
	"net/http"

	"bakehouse/internal/assets"
	"bakehouse/internal/catalog/hero"
	"bakehouse/internal/catalog/ordering"
	"bakehouse/internal/params"
)

type createHeroBannerPayload struct {
	Image      string `json:"image" validate:"required"`
	Title      string `json:"title" validate:"required,max=200"`
	Subtitle   string `json:"subtitle" validate:"max=300"`
	AltText    string `json:"altText" validate:"max=300"`
	OrderIndex *int   `json:"orderIndex" validate:"omitempty,min=1"`
	IsActive   *bool  `json:"isActive"`
	Key        string `json:"key"`
}

type updateHeroBannerPayload struct {
	Image      *string `json:"image"`
	Title      *string `json:"title" validate:"omitempty,max=200"`
	Subtitle   *string `json:"subtitle" validate:"omitempty,max=300"`
	AltText    *string `json:"altText" validate:"omitempty,max=300"`
	OrderIndex *int    `json:"orderIndex" validate:"omitempty,min=1"`
	IsActive   *bool   `json:"isActive"`
	Key        string  `json:"key"`
}

func (app *application) listHeroBannersHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	banners, err := app.store.Hero.List(r.Context(), app.isAdmin(r), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, banners); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getHeroBannerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	b, err := app.store.Hero.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, hero.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, b); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createHeroBannerHandler(w http.ResponseWriter, r *http.Request) {
	var payload createHeroBannerPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	res, err := app.resolveImage(r.Context(), payload.Image, heroUploads)
	if err != nil {
		app.imageErrorResponse(w, r, err)
		return
	}

	b := &hero.Banner{
		ImageURL:      res.URL,
		RemoteAssetID: res.AssetID,
		Title:         payload.Title,
		Subtitle:      payload.Subtitle,
		AltText:       payload.AltText,
		IsActive:      true,
	}
	if payload.IsActive != nil {
		b.IsActive = *payload.IsActive
	}

	if err := app.store.Hero.Create(r.Context(), b, payload.OrderIndex); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mutationResponse{Success: true, Data: b, Cloudinary: res})
}

func (app *application) updateHeroBannerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	var payload updateHeroBannerPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	existing, err := app.store.Hero.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, hero.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	patch := &hero.BannerPatch{
		Title:    payload.Title,
		Subtitle: payload.Subtitle,
		AltText:  payload.AltText,
		IsActive: payload.IsActive,
	}

	var uploaded *assets.UploadResult
	if payload.Image != nil && *payload.Image != "" && *payload.Image != existing.ImageURL {
		uploaded, err = app.resolveImage(r.Context(), *payload.Image, heroUploads)
		if err != nil {
			app.imageErrorResponse(w, r, err)
			return
		}
		patch.ImageURL = &uploaded.URL
		patch.RemoteAssetID = &uploaded.AssetID

		if existing.RemoteAssetID != "" && existing.RemoteAssetID != uploaded.AssetID {
			app.deleteAssets(existing.RemoteAssetID)
		}
	}

	b, err := app.store.Hero.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, hero.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	var swap *ordering.Swap
	if payload.OrderIndex != nil {
		swap, err = app.store.Hero.Reorder(r.Context(), id, *payload.OrderIndex)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		b.OrderIndex = *payload.OrderIndex
	}

	resp := mutationResponse{Success: true, Data: b, Cloudinary: uploaded, SwappedWith: swap}
	if swap != nil {
		resp.Message = fmt.Sprintf("Order swapped with %s", swap.Label)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (app *application) deleteHeroBannerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	existing, err := app.store.Hero.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, hero.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Hero.Delete(r.Context(), id); err != nil {
		if errors.Is(err, hero.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.deleteAssets(existing.RemoteAssetID)

	writeJSON(w, http.StatusOK, mutationResponse{Success: true, Message: "Hero banner deleted"})
}
