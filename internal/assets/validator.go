package assets

import (
	"fmt"
	"strings"
)

// Decoded-size ceilings per upload surface.
const (
	DefaultMaxBytes int64 = 5 << 20  // gallery, menu
	LargeMaxBytes   int64 = 20 << 20 // hero banners, event covers and albums
	AvatarMaxBytes  int64 = 2 << 20  // review avatars
)

const embeddedPrefix = "data:image/"

var allowedFormats = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Result reports whether an embedded image payload is acceptable.
// Reason is a human-readable rejection message suitable for a 400 response.
type Result struct {
	Valid  bool
	Format string
	Bytes  int64
	Reason string
}

func invalid(reason string) Result {
	return Result{Valid: false, Reason: reason}
}

// IsEmbedded reports whether s looks like a self-describing embedded image
// (a data URI) rather than a plain URL.
func IsEmbedded(s string) bool {
	return strings.HasPrefix(s, embeddedPrefix)
}

// IsURL reports whether s is an http(s) reference to an already-hosted image.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ValidateEmbedded checks an embedded image payload against the format
// whitelist and the given decoded-size ceiling. The payload is not decoded;
// the size is computed from the base64 length.
func ValidateEmbedded(data string, maxBytes int64) Result {
	if data == "" {
		return invalid("image data is required")
	}
	if !strings.HasPrefix(data, embeddedPrefix) {
		return invalid("image must be a data:image/... payload or an https URL")
	}

	header, payload, found := strings.Cut(data, ",")
	if !found || payload == "" {
		return invalid("malformed image data")
	}

	meta := strings.TrimPrefix(header, embeddedPrefix)
	format, _, _ := strings.Cut(meta, ";")
	format = strings.ToLower(strings.TrimSpace(format))
	if !allowedFormats[format] {
		return invalid(fmt.Sprintf("unsupported image format %q (allowed: jpeg, jpg, png, gif, webp)", format))
	}

	// Base64 expands by 4/3; reverse that instead of decoding the payload.
	pad := int64(0)
	if strings.HasSuffix(payload, "==") {
		pad = 2
	} else if strings.HasSuffix(payload, "=") {
		pad = 1
	}
	bytes := (int64(len(payload))*3+3)/4 - pad

	if bytes > maxBytes {
		return invalid(fmt.Sprintf("image is %.1f MB, maximum allowed is %d MB", float64(bytes)/(1<<20), maxBytes>>20))
	}

	return Result{Valid: true, Format: format, Bytes: bytes}
}
