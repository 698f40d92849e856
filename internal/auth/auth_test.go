package auth

import (
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestVerify(t *testing.T) {
	g := NewAdminGuard("super-secret")

	if !g.Verify("super-secret") {
		t.Error("correct key must verify")
	}
	if g.Verify("super-secreT") {
		t.Error("wrong key of same length must not verify")
	}
	if g.Verify("short") {
		t.Error("wrong key of different length must not verify")
	}
	if g.Verify("") {
		t.Error("empty key must not verify")
	}
}

func TestVerifyFailsClosed(t *testing.T) {
	g := NewAdminGuard("")

	for _, key := range []string{"", "anything", "super-secret"} {
		if g.Verify(key) {
			t.Errorf("unconfigured guard must deny %q", key)
		}
	}
}

func TestFromRequest(t *testing.T) {
	g := NewAdminGuard("super-secret")

	r := httptest.NewRequest("POST", "/api/gallery?key=from-query", nil)
	if got := g.FromRequest(r); got != "from-query" {
		t.Errorf("query key = %q", got)
	}

	form := url.Values{"key": {"from-form"}}
	r = httptest.NewRequest("POST", "/api/gallery", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if got := g.FromRequest(r); got != "from-form" {
		t.Errorf("form key = %q", got)
	}

	r = httptest.NewRequest("POST", "/api/gallery", nil)
	if got := g.FromRequest(r); got != "" {
		t.Errorf("absent key = %q", got)
	}
}

func TestFromRequestJSONBody(t *testing.T) {
	g := NewAdminGuard("super-secret")

	body := `{"caption":"Croissants","key":"from-body"}`
	r := httptest.NewRequest("POST", "/api/gallery", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	if got := g.FromRequest(r); got != "from-body" {
		t.Errorf("json body key = %q", got)
	}

	// The body must survive the peek intact for the handler's decoder.
	rest, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("re-reading body: %v", err)
	}
	if string(rest) != body {
		t.Errorf("body after peek = %q, want it unchanged", rest)
	}

	r = httptest.NewRequest("POST", "/api/gallery", strings.NewReader("not json"))
	r.Header.Set("Content-Type", "application/json")
	if got := g.FromRequest(r); got != "" {
		t.Errorf("malformed json body key = %q", got)
	}

	r = httptest.NewRequest("POST", "/api/gallery", strings.NewReader(`{"key":"from-body"}`))
	r.Header.Set("Content-Type", "text/plain")
	if got := g.FromRequest(r); got != "" {
		t.Errorf("non-json content type peeked a key: %q", got)
	}
}
