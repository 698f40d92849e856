package main

import (
	"errors"
	"fmt"
	"net/http"

	"bakehouse/internal/assets"
	"bakehouse/internal/catalog/gallery"
	"bakehouse/internal/catalog/ordering"
	"bakehouse/internal/params"
)

type createGalleryImagePayload struct {
	Image      string `json:"image" validate:"required"`
	Caption    string `json:"caption" validate:"required,max=200"`
	AltText    string `json:"altText" validate:"max=300"`
	OrderIndex *int   `json:"orderIndex" validate:"omitempty,min=1"`
	IsActive   *bool  `json:"isActive"`
	Key        string `json:"key"`
}

type updateGalleryImagePayload struct {
	Image      *string `json:"image"`
	Caption    *string `json:"caption" validate:"omitempty,max=200"`
	AltText    *string `json:"altText" validate:"omitempty,max=300"`
	OrderIndex *int    `json:"orderIndex" validate:"omitempty,min=1"`
	IsActive   *bool   `json:"isActive"`
	Key        string  `json:"key"`
}

type mutationResponse struct {
	Success     bool                 `json:"success"`
	Data        any                  `json:"data,omitempty"`
	Cloudinary  *assets.UploadResult `json:"cloudinary,omitempty"`
	SwappedWith *ordering.Swap       `json:"swappedWith,omitempty"`
	Message     string               `json:"message,omitempty"`
}

func (app *application) listGalleryHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	images, err := app.store.Gallery.List(r.Context(), app.isAdmin(r), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, images); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getGalleryImageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	img, err := app.store.Gallery.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gallery.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, img); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createGalleryImageHandler(w http.ResponseWriter, r *http.Request) {
	var payload createGalleryImagePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	res, err := app.resolveImage(r.Context(), payload.Image, galleryUploads)
	if err != nil {
		app.imageErrorResponse(w, r, err)
		return
	}

	img := &gallery.Image{
		ImageURL:      res.URL,
		RemoteAssetID: res.AssetID,
		Caption:       payload.Caption,
		AltText:       payload.AltText,
		IsActive:      true,
	}
	if payload.IsActive != nil {
		img.IsActive = *payload.IsActive
	}

	if err := app.store.Gallery.Create(r.Context(), img, payload.OrderIndex); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mutationResponse{Success: true, Data: img, Cloudinary: res})
}

func (app *application) updateGalleryImageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	var payload updateGalleryImagePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	existing, err := app.store.Gallery.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gallery.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	patch := &gallery.ImagePatch{
		Caption:  payload.Caption,
		AltText:  payload.AltText,
		IsActive: payload.IsActive,
	}

	var uploaded *assets.UploadResult
	if payload.Image != nil && *payload.Image != "" && *payload.Image != existing.ImageURL {
		uploaded, err = app.resolveImage(r.Context(), *payload.Image, galleryUploads)
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

	img, err := app.store.Gallery.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, gallery.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	var swap *ordering.Swap
	if payload.OrderIndex != nil {
		swap, err = app.store.Gallery.Reorder(r.Context(), id, *payload.OrderIndex)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		img.OrderIndex = *payload.OrderIndex
	}

	resp := mutationResponse{Success: true, Data: img, Cloudinary: uploaded, SwappedWith: swap}
	if swap != nil {
		resp.Message = fmt.Sprintf("Order swapped with %s", swap.Label)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (app *application) deleteGalleryImageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	existing, err := app.store.Gallery.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gallery.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Gallery.Delete(r.Context(), id); err != nil {
		if errors.Is(err, gallery.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.deleteAssets(existing.RemoteAssetID)

	writeJSON(w, http.StatusOK, mutationResponse{Success: true, Message: "Gallery image deleted"})
}
