package main

import (
	"errors"
	"net/http"

	"bakehouse/internal/assets"
)

// imageValidationError wraps an AssetValidator rejection so handlers can map
// it to a 400 without string matching.
type imageValidationError struct {
	reason string
}

func (e *imageValidationError) Error() string {
	return e.reason
}

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("not found", "method", r.Method, "path", r.URL.Path)

	writeJSONError(w, http.StatusNotFound, "Not found")
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("unauthorized", "method", r.Method, "path", r.URL.Path)

	writeJSONError(w, http.StatusUnauthorized, "invalid admin key")
}

// upstreamErrorResponse reports a failed remote asset store call. The record
// is never persisted on this path; the caller gets a generic message while
// the provider detail stays in the logs.
func (app *application) upstreamErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("asset store error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "image upload failed")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "path", r.URL.Path, "ip", r.RemoteAddr)

	w.Header().Set("Retry-After", retryAfter)
	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry later")
}

// imageErrorResponse routes an upload-pipeline error to the right status:
// validation failures are the caller's fault, upstream failures are not.
func (app *application) imageErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid  *imageValidationError
		upstream *assets.UpstreamError
	)
	switch {
	case errors.As(err, &invalid):
		app.badRequestResponse(w, r, err)
	case errors.As(err, &upstream):
		app.upstreamErrorResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
