package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"bakehouse/internal/assets"

	"github.com/go-chi/chi/v5"
)

// uploadSpec fixes the folder and ceilings for one upload surface.
type uploadSpec struct {
	folder    string
	maxBytes  int64
	maxWidth  int
	maxHeight int
}

var (
	galleryUploads = uploadSpec{folder: "bakehouse/gallery", maxBytes: assets.DefaultMaxBytes}
	menuUploads    = uploadSpec{folder: "bakehouse/menu", maxBytes: assets.DefaultMaxBytes}
	eventUploads   = uploadSpec{folder: "bakehouse/events", maxBytes: assets.LargeMaxBytes}
	heroUploads    = uploadSpec{folder: "bakehouse/hero", maxBytes: assets.LargeMaxBytes, maxWidth: 2400, maxHeight: 1440}
	avatarUploads  = uploadSpec{folder: "bakehouse/avatars", maxBytes: assets.AvatarMaxBytes, maxWidth: 400, maxHeight: 400}
)

func (s uploadSpec) options() assets.UploadOptions {
	return assets.UploadOptions{
		Folder:    s.folder,
		MaxWidth:  s.maxWidth,
		MaxHeight: s.maxHeight,
	}
}

// resolveImage validates one image reference and sends it through the asset
// store. Validation happens before any network call; an already-hosted URL
// short-circuits inside the store.
func (app *application) resolveImage(ctx context.Context, image string, spec uploadSpec) (*assets.UploadResult, error) {
	if assets.IsEmbedded(image) {
		if res := assets.ValidateEmbedded(image, spec.maxBytes); !res.Valid {
			return nil, &imageValidationError{reason: res.Reason}
		}
	} else if !assets.IsURL(image) {
		return nil, &imageValidationError{reason: "image must be a data:image/... payload or an https URL"}
	}

	return app.assets.Upload(ctx, image, spec.options())
}

// resolveImageList handles a mixed list of already-hosted URLs and new
// embedded images. Every embedded element is validated before anything is
// uploaded, so a bad element cannot leave a half-uploaded batch behind.
// Retained URLs keep their relative order; new uploads are appended after
// them.
func (app *application) resolveImageList(ctx context.Context, refs []string, spec uploadSpec) (urls []string, assetIDs []string, err error) {
	var existing, embedded []string
	for _, ref := range refs {
		switch {
		case assets.IsEmbedded(ref):
			if res := assets.ValidateEmbedded(ref, spec.maxBytes); !res.Valid {
				return nil, nil, &imageValidationError{reason: res.Reason}
			}
			embedded = append(embedded, ref)
		case assets.IsURL(ref):
			existing = append(existing, ref)
		default:
			return nil, nil, &imageValidationError{reason: "each image must be a data:image/... payload or an https URL"}
		}
	}

	ordered := append(existing, embedded...)
	results, err := app.assets.UploadMany(ctx, ordered, spec.options())
	if err != nil {
		return nil, nil, err
	}

	urls = make([]string, 0, len(results))
	assetIDs = make([]string, 0, len(results))
	for _, res := range results {
		urls = append(urls, res.URL)
		assetIDs = append(assetIDs, res.AssetID)
	}
	return urls, assetIDs, nil
}

// deleteAssets best-effort deletes superseded remote assets off the request
// path. Failures are logged and never surface to the client.
func (app *application) deleteAssets(assetIDs ...string) {
	ids := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		for _, id := range ids {
			if err := app.assets.Delete(ctx, id); err != nil {
				app.logger.Warnw("asset cleanup failed", "assetId", id, "error", err.Error())
			}
		}
	})
}

func readIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
