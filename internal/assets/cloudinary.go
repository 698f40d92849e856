package assets

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// UpstreamError marks a failed call to the remote asset store. Handlers map it
// to a generic 500 without leaking provider details.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("cloudinary %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// UploadResult is the stable (url, asset id) pair plus the transformation
// metadata Cloudinary reports back.
type UploadResult struct {
	URL     string `json:"url"`
	AssetID string `json:"public_id"`
	Bytes   int    `json:"size"`
	Width   int    `json:"-"`
	Height  int    `json:"-"`
	Format  string `json:"-"`
}

type UploadOptions struct {
	Folder    string
	MaxWidth  int
	MaxHeight int
	Quality   string
	Format    string
}

// Uploader is the remote asset store surface the handlers depend on.
// Implemented by CloudinaryStore; replaced with a fake in tests.
type Uploader interface {
	Upload(ctx context.Context, image string, opts UploadOptions) (*UploadResult, error)
	UploadMany(ctx context.Context, images []string, opts UploadOptions) ([]*UploadResult, error)
	Delete(ctx context.Context, assetID string) error
}

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cld *cloudinary.Cloudinary) *CloudinaryStore {
	return &CloudinaryStore{cld: cld}
}

// Upload sends an embedded image (or a foreign URL for Cloudinary to fetch) to
// the asset store. When the image is already a Cloudinary delivery URL it
// short-circuits: the same URL is returned with the asset id recovered from
// the URL path, and no network call is made.
func (s *CloudinaryStore) Upload(ctx context.Context, image string, opts UploadOptions) (*UploadResult, error) {
	if IsHostedURL(image) {
		id, _ := PublicIDFromURL(image)
		return &UploadResult{URL: image, AssetID: id}, nil
	}

	resp, err := s.cld.Upload.Upload(ctx, image, uploader.UploadParams{
		Folder:         opts.Folder,
		PublicID:       uuid.NewString(),
		Overwrite:      api.Bool(false),
		Transformation: transformation(opts),
	})
	if err != nil {
		return nil, &UpstreamError{Op: "upload", Err: err}
	}
	// The SDK can report service-side failures without a transport error.
	if resp.Error.Message != "" {
		return nil, &UpstreamError{Op: "upload", Err: fmt.Errorf("%s", resp.Error.Message)}
	}

	return &UploadResult{
		URL:     resp.SecureURL,
		AssetID: resp.PublicID,
		Bytes:   resp.Bytes,
		Width:   resp.Width,
		Height:  resp.Height,
		Format:  resp.Format,
	}, nil
}

// UploadMany fans Upload out over each image concurrently. Any single failure
// fails the whole batch; callers are expected to validate every element before
// uploading any.
func (s *CloudinaryStore) UploadMany(ctx context.Context, images []string, opts UploadOptions) ([]*UploadResult, error) {
	results := make([]*UploadResult, len(images))

	g, ctx := errgroup.WithContext(ctx)
	for i, image := range images {
		i, image := i, image
		g.Go(func() error {
			res, err := s.Upload(ctx, image, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Delete destroys an asset by its public id. Callers treat failures as
// best-effort: log and move on, never fail the owning request.
func (s *CloudinaryStore) Delete(ctx context.Context, assetID string) error {
	if assetID == "" {
		return nil
	}
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: assetID})
	if err != nil {
		return &UpstreamError{Op: "destroy", Err: err}
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return &UpstreamError{Op: "destroy", Err: fmt.Errorf("unexpected result %q", resp.Result)}
	}
	return nil
}

func transformation(opts UploadOptions) string {
	w, h := opts.MaxWidth, opts.MaxHeight
	if w <= 0 {
		w = 1600
	}
	if h <= 0 {
		h = 1600
	}
	q := opts.Quality
	if q == "" {
		q = "auto:good"
	}
	f := opts.Format
	if f == "" {
		f = "auto"
	}
	return fmt.Sprintf("c_limit,w_%d,h_%d,q_%s,f_%s", w, h, q, f)
}

// IsHostedURL reports whether the image reference is already a Cloudinary
// delivery URL.
func IsHostedURL(image string) bool {
	u, err := url.Parse(image)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return u.Host == "res.cloudinary.com" || strings.HasSuffix(u.Host, ".cloudinary.com")
}

// PublicIDFromURL recovers the asset public id from a Cloudinary delivery URL:
// everything after the "upload" path segment, minus the version segment and
// the file extension.
func PublicIDFromURL(image string) (string, bool) {
	u, err := url.Parse(image)
	if err != nil {
		return "", false
	}

	parts := strings.Split(u.Path, "/")
	uploadIdx := -1
	for i, part := range parts {
		if part == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx == -1 || uploadIdx+1 >= len(parts) {
		return "", false
	}

	rest := parts[uploadIdx+1:]
	if len(rest) > 0 && isVersionSegment(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return "", false
	}

	last := rest[len(rest)-1]
	rest[len(rest)-1] = strings.TrimSuffix(last, path.Ext(last))
	return strings.Join(rest, "/"), true
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
