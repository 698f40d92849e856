package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"bakehouse/internal/assets"
	"bakehouse/internal/catalog/menu"
	"bakehouse/internal/catalog/ordering"
	"bakehouse/internal/params"
)

type createMenuItemPayload struct {
	Name          string   `json:"name" validate:"required,max=150"`
	Description   string   `json:"description" validate:"max=2000"`
	Image         string   `json:"image" validate:"required"`
	Badge         *string  `json:"badge" validate:"omitempty,oneof=new bestseller seasonal signature"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	DiscountPrice *float64 `json:"discountPrice" validate:"omitempty,gte=0"`
	PriceUnit     string   `json:"priceUnit" validate:"required,oneof=piece kg dozen box"`
	CategoryID    *int64   `json:"categoryId"`
	CategoryName  *string  `json:"categoryName" validate:"omitempty,max=100"`
	OrderIndex    *int     `json:"orderIndex" validate:"omitempty,min=1"`
	IsActive      *bool    `json:"isActive"`
	Key           string   `json:"key"`
}

type updateMenuItemPayload struct {
	Name          *string  `json:"name" validate:"omitempty,max=150"`
	Description   *string  `json:"description" validate:"omitempty,max=2000"`
	Image         *string  `json:"image"`
	Badge         *string  `json:"badge" validate:"omitempty,oneof=new bestseller seasonal signature"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice *float64 `json:"discountPrice" validate:"omitempty,gte=0"`
	PriceUnit     *string  `json:"priceUnit" validate:"omitempty,oneof=piece kg dozen box"`
	CategoryID    *int64   `json:"categoryId"`
	CategoryName  *string  `json:"categoryName" validate:"omitempty,max=100"`
	OrderIndex    *int     `json:"orderIndex" validate:"omitempty,min=1"`
	IsActive      *bool    `json:"isActive"`
	Key           string   `json:"key"`
}

// resolveCategoryRef collapses the polymorphic category input (direct id,
// free-text name, or nothing) into a canonical category id before anything is
// persisted. A name resolves through find-or-create; an empty name means "no
// category".
func (app *application) resolveCategoryRef(ctx context.Context, categoryID *int64, categoryName *string) (*int64, bool, error) {
	switch {
	case categoryID != nil:
		if _, err := app.store.Menu.GetCategory(ctx, *categoryID); err != nil {
			return nil, false, err
		}
		return categoryID, false, nil
	case categoryName != nil:
		cat, err := app.store.Menu.ResolveCategory(ctx, *categoryName)
		if err != nil {
			return nil, false, err
		}
		if cat == nil {
			return nil, true, nil
		}
		return &cat.ID, false, nil
	default:
		return nil, false, nil
	}
}

func (app *application) listMenuItemsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	items, err := app.store.Menu.List(r.Context(), app.isAdmin(r), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, items); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	item, err := app.store.Menu.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, item); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	cats, err := app.store.Menu.ListCategories(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, cats); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	var payload createMenuItemPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if payload.DiscountPrice != nil && *payload.DiscountPrice >= *payload.Price {
		app.badRequestResponse(w, r, fmt.Errorf("discount price must be less than price"))
		return
	}

	res, err := app.resolveImage(r.Context(), payload.Image, menuUploads)
	if err != nil {
		app.imageErrorResponse(w, r, err)
		return
	}

	categoryID, _, err := app.resolveCategoryRef(r.Context(), payload.CategoryID, payload.CategoryName)
	if err != nil {
		if errors.Is(err, menu.ErrCategoryNotFound) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	item := &menu.Item{
		Name:          payload.Name,
		Description:   payload.Description,
		ImageURL:      res.URL,
		RemoteAssetID: res.AssetID,
		Badge:         payload.Badge,
		Price:         *payload.Price,
		DiscountPrice: payload.DiscountPrice,
		PriceUnit:     payload.PriceUnit,
		CategoryID:    categoryID,
		IsActive:      true,
	}
	if payload.IsActive != nil {
		item.IsActive = *payload.IsActive
	}

	if err := app.store.Menu.Create(r.Context(), item, payload.OrderIndex); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mutationResponse{Success: true, Data: item, Cloudinary: res})
}

func (app *application) updateMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	var payload updateMenuItemPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	existing, err := app.store.Menu.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	// The discount invariant holds against the price as it will be after the
	// update, whichever side of the pair the payload touches.
	price := existing.Price
	if payload.Price != nil {
		price = *payload.Price
	}
	discount := existing.DiscountPrice
	if payload.DiscountPrice != nil {
		discount = payload.DiscountPrice
	}
	if discount != nil && *discount > 0 && *discount >= price {
		app.badRequestResponse(w, r, fmt.Errorf("discount price must be less than price"))
		return
	}

	patch := &menu.ItemPatch{
		Name:        payload.Name,
		Description: payload.Description,
		Badge:       payload.Badge,
		Price:       payload.Price,
		PriceUnit:   payload.PriceUnit,
		IsActive:    payload.IsActive,
	}

	// An explicit zero discount clears the stored one.
	if payload.DiscountPrice != nil {
		if *payload.DiscountPrice == 0 {
			patch.ClearDiscount = true
		} else {
			patch.DiscountPrice = payload.DiscountPrice
		}
	}

	if payload.CategoryID != nil || payload.CategoryName != nil {
		categoryID, cleared, err := app.resolveCategoryRef(r.Context(), payload.CategoryID, payload.CategoryName)
		if err != nil {
			if errors.Is(err, menu.ErrCategoryNotFound) {
				app.badRequestResponse(w, r, err)
				return
			}
			app.internalServerError(w, r, err)
			return
		}
		patch.CategoryID = categoryID
		patch.ClearCategory = cleared
	}

	var uploaded *assets.UploadResult
	if payload.Image != nil && *payload.Image != "" && *payload.Image != existing.ImageURL {
		uploaded, err = app.resolveImage(r.Context(), *payload.Image, menuUploads)
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

	item, err := app.store.Menu.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	var swap *ordering.Swap
	if payload.OrderIndex != nil {
		swap, err = app.store.Menu.Reorder(r.Context(), id, *payload.OrderIndex)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		item.OrderIndex = *payload.OrderIndex
	}

	resp := mutationResponse{Success: true, Data: item, Cloudinary: uploaded, SwappedWith: swap}
	if swap != nil {
		resp.Message = fmt.Sprintf("Order swapped with %s", swap.Label)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (app *application) deleteMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid id"))
		return
	}

	existing, err := app.store.Menu.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Menu.Delete(r.Context(), id); err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.deleteAssets(existing.RemoteAssetID)

	writeJSON(w, http.StatusOK, mutationResponse{Success: true, Message: "Menu item deleted"})
}
