package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// readJSON parses the body into a Go struct. The cap leaves room for a 20 MB
// image payload after base64 expansion.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 32 << 20
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(data)
}

// writeJSONError emits the error envelope every failure path shares:
// {"success": false, "error": "..."}.
func writeJSONError(w http.ResponseWriter, status int, message string) error {
	type envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}

	return writeJSON(w, status, &envelope{
		Success: false,
		Error:   message,
	})
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	type envelope struct {
		Success bool `json:"success"`
		Data    any  `json:"data"`
	}
	return writeJSON(w, status, &envelope{Success: true, Data: data})
}
