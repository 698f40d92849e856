package auth

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Guard authorizes admin mutations. Every request is checked independently;
// there is no session state.
type Guard interface {
	Verify(key string) bool
	FromRequest(r *http.Request) string
}

// AdminGuard checks a single shared admin secret.
type AdminGuard struct {
	secret string
}

func NewAdminGuard(secret string) *AdminGuard {
	return &AdminGuard{secret: secret}
}

// Verify reports whether key matches the configured secret. It fails closed
// when no secret is configured. The length-mismatch path still runs a
// comparison of equal cost so it carries no trivial timing signal.
func (g *AdminGuard) Verify(key string) bool {
	if g.secret == "" {
		subtle.ConstantTimeCompare([]byte(key), []byte(key))
		return false
	}
	if len(key) != len(g.secret) {
		subtle.ConstantTimeCompare([]byte(g.secret), []byte(g.secret))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(g.secret)) == 1
}

// FromRequest pulls the admin key from the query string, the key field of a
// JSON body, or a form field for form-encoded bodies. A JSON body is restored
// after the peek so the handler's decoder still sees it.
func (g *AdminGuard) FromRequest(r *http.Request) string {
	if key := r.URL.Query().Get("key"); key != "" {
		return key
	}
	if ct := r.Header.Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		return jsonBodyKey(r)
	}
	return r.PostFormValue("key")
}

func jsonBodyKey(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	// Same ceiling the JSON decoder enforces later.
	buf, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(buf))
	if err != nil {
		return ""
	}

	var body struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(buf, &body); err != nil {
		return ""
	}
	return body.Key
}
