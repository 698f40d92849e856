package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bakehouse/internal/assets"
	"bakehouse/internal/auth"
	"bakehouse/internal/catalog/events"
	"bakehouse/internal/catalog/gallery"
	"bakehouse/internal/catalog/hero"
	"bakehouse/internal/catalog/menu"
	"bakehouse/internal/catalog/ordering"
	"bakehouse/internal/catalog/reviews"
	"bakehouse/internal/ratelimiter"
	"bakehouse/internal/store"

	"go.uber.org/zap"
)

const testAdminKey = "test-admin-key"

// testImage is a valid embedded upload, a 1x1 png worth of base64.
const testImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

func noSecretGuard() auth.Guard {
	return auth.NewAdminGuard("")
}

// ---------------------------------------------------------------------------
// Fake asset store
// ---------------------------------------------------------------------------

type fakeUploader struct {
	mu         sync.Mutex
	uploads    []string
	deletes    []string
	failUpload bool
	failDelete bool
}

func (f *fakeUploader) Upload(_ context.Context, image string, opts assets.UploadOptions) (*assets.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpload {
		return nil, &assets.UpstreamError{Op: "upload", Err: errors.New("service unavailable")}
	}
	if assets.IsHostedURL(image) {
		id, _ := assets.PublicIDFromURL(image)
		return &assets.UploadResult{URL: image, AssetID: id}, nil
	}

	f.uploads = append(f.uploads, image)
	n := len(f.uploads)
	id := fmt.Sprintf("%s/fake_%d", opts.Folder, n)
	return &assets.UploadResult{
		URL:     fmt.Sprintf("https://res.cloudinary.com/test/image/upload/v1/%s.jpg", id),
		AssetID: id,
		Bytes:   1024,
	}, nil
}

func (f *fakeUploader) UploadMany(ctx context.Context, images []string, opts assets.UploadOptions) ([]*assets.UploadResult, error) {
	results := make([]*assets.UploadResult, 0, len(images))
	for _, image := range images {
		res, err := f.Upload(ctx, image, opts)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (f *fakeUploader) Delete(_ context.Context, assetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, assetID)
	if f.failDelete {
		return &assets.UpstreamError{Op: "destroy", Err: errors.New("service unavailable")}
	}
	return nil
}

func (f *fakeUploader) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func (f *fakeUploader) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

// ---------------------------------------------------------------------------
// In-memory collection shared by the fake stores' Reorder implementations
// ---------------------------------------------------------------------------

type orderedRecord interface {
	recID() int64
	recLabel() string
	recOrder() int
	setOrder(int)
	recActive() bool
}

type memCollection []orderedRecord

func (c memCollection) ActiveAt(_ context.Context, order int, excludeID int64) (int64, string, bool, error) {
	for _, rec := range c {
		if rec.recActive() && rec.recOrder() == order && rec.recID() != excludeID {
			return rec.recID(), rec.recLabel(), true, nil
		}
	}
	return 0, "", false, nil
}

func (c memCollection) SetOrder(_ context.Context, id int64, order int) error {
	for _, rec := range c {
		if rec.recID() == id {
			rec.setOrder(order)
			return nil
		}
	}
	return nil
}

func reorder(ctx context.Context, col memCollection, id int64, requested int) (*ordering.Swap, error) {
	for _, rec := range col {
		if rec.recID() == id {
			return ordering.Reconcile(ctx, col, id, rec.recOrder(), requested)
		}
	}
	return nil, errors.New("record not found")
}

// ---------------------------------------------------------------------------
// Fake gallery store
// ---------------------------------------------------------------------------

type galleryRec struct{ img *gallery.Image }

func (r *galleryRec) recID() int64      { return r.img.ID }
func (r *galleryRec) recLabel() string  { return r.img.Caption }
func (r *galleryRec) recOrder() int     { return r.img.OrderIndex }
func (r *galleryRec) setOrder(o int)    { r.img.OrderIndex = o }
func (r *galleryRec) recActive() bool   { return r.img.IsActive }

type fakeGalleryStore struct {
	nextID int64
	images []*gallery.Image
}

func (s *fakeGalleryStore) maxOrder() int {
	max := 0
	for _, img := range s.images {
		if img.OrderIndex > max {
			max = img.OrderIndex
		}
	}
	return max
}

func (s *fakeGalleryStore) Create(_ context.Context, img *gallery.Image, orderIndex *int) error {
	s.nextID++
	img.ID = s.nextID
	if orderIndex != nil {
		img.OrderIndex = *orderIndex
	} else {
		img.OrderIndex = s.maxOrder() + 1
	}
	img.CreatedAt = time.Now()
	img.UpdatedAt = img.CreatedAt
	clone := *img
	s.images = append(s.images, &clone)
	return nil
}

func (s *fakeGalleryStore) find(id int64) *gallery.Image {
	for _, img := range s.images {
		if img.ID == id {
			return img
		}
	}
	return nil
}

func (s *fakeGalleryStore) GetByID(_ context.Context, id int64) (*gallery.Image, error) {
	img := s.find(id)
	if img == nil {
		return nil, gallery.ErrNotFound
	}
	clone := *img
	return &clone, nil
}

func (s *fakeGalleryStore) List(_ context.Context, includeInactive bool, _, _ int) ([]gallery.Image, error) {
	out := []gallery.Image{}
	for _, img := range s.images {
		if includeInactive || img.IsActive {
			out = append(out, *img)
		}
	}
	return out, nil
}

func (s *fakeGalleryStore) Update(_ context.Context, id int64, patch *gallery.ImagePatch) (*gallery.Image, error) {
	img := s.find(id)
	if img == nil {
		return nil, gallery.ErrNotFound
	}
	if patch.ImageURL != nil {
		img.ImageURL = *patch.ImageURL
	}
	if patch.RemoteAssetID != nil {
		img.RemoteAssetID = *patch.RemoteAssetID
	}
	if patch.Caption != nil {
		img.Caption = *patch.Caption
	}
	if patch.AltText != nil {
		img.AltText = *patch.AltText
	}
	if patch.IsActive != nil {
		img.IsActive = *patch.IsActive
	}
	clone := *img
	return &clone, nil
}

func (s *fakeGalleryStore) Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error) {
	col := memCollection{}
	for _, img := range s.images {
		col = append(col, &galleryRec{img: img})
	}
	return reorder(ctx, col, id, requested)
}

func (s *fakeGalleryStore) Delete(_ context.Context, id int64) error {
	for i, img := range s.images {
		if img.ID == id {
			s.images = append(s.images[:i], s.images[i+1:]...)
			return nil
		}
	}
	return gallery.ErrNotFound
}

// ---------------------------------------------------------------------------
// Fake menu store
// ---------------------------------------------------------------------------

type menuRec struct{ item *menu.Item }

func (r *menuRec) recID() int64     { return r.item.ID }
func (r *menuRec) recLabel() string { return r.item.Name }
func (r *menuRec) recOrder() int    { return r.item.OrderIndex }
func (r *menuRec) setOrder(o int)   { r.item.OrderIndex = o }
func (r *menuRec) recActive() bool  { return r.item.IsActive }

type fakeMenuStore struct {
	nextID     int64
	nextCatID  int64
	items      []*menu.Item
	categories []*menu.Category
	createErr  error
}

func (s *fakeMenuStore) maxOrder() int {
	max := 0
	for _, item := range s.items {
		if item.OrderIndex > max {
			max = item.OrderIndex
		}
	}
	return max
}

func (s *fakeMenuStore) Create(_ context.Context, item *menu.Item, orderIndex *int) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	item.ID = s.nextID
	if orderIndex != nil {
		item.OrderIndex = *orderIndex
	} else {
		item.OrderIndex = s.maxOrder() + 1
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	if item.CategoryID != nil {
		for _, cat := range s.categories {
			if cat.ID == *item.CategoryID {
				c := *cat
				item.Category = &c
			}
		}
	}
	if item.DiscountPrice != nil {
		p := menu.DiscountPercent(item.Price, *item.DiscountPrice)
		item.DiscountPercent = &p
	}
	clone := *item
	s.items = append(s.items, &clone)
	return nil
}

func (s *fakeMenuStore) find(id int64) *menu.Item {
	for _, item := range s.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (s *fakeMenuStore) GetByID(_ context.Context, id int64) (*menu.Item, error) {
	item := s.find(id)
	if item == nil {
		return nil, menu.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (s *fakeMenuStore) List(_ context.Context, includeInactive bool, _, _ int) ([]menu.Item, error) {
	out := []menu.Item{}
	for _, item := range s.items {
		if includeInactive || item.IsActive {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *fakeMenuStore) Update(_ context.Context, id int64, patch *menu.ItemPatch) (*menu.Item, error) {
	item := s.find(id)
	if item == nil {
		return nil, menu.ErrNotFound
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		item.ImageURL = *patch.ImageURL
	}
	if patch.RemoteAssetID != nil {
		item.RemoteAssetID = *patch.RemoteAssetID
	}
	if patch.Badge != nil {
		item.Badge = patch.Badge
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.ClearDiscount {
		item.DiscountPrice = nil
		item.DiscountPercent = nil
	} else if patch.DiscountPrice != nil {
		item.DiscountPrice = patch.DiscountPrice
		p := menu.DiscountPercent(item.Price, *patch.DiscountPrice)
		item.DiscountPercent = &p
	}
	if patch.PriceUnit != nil {
		item.PriceUnit = *patch.PriceUnit
	}
	if patch.ClearCategory {
		item.CategoryID = nil
		item.Category = nil
	} else if patch.CategoryID != nil {
		item.CategoryID = patch.CategoryID
	}
	if patch.IsActive != nil {
		item.IsActive = *patch.IsActive
	}
	clone := *item
	return &clone, nil
}

func (s *fakeMenuStore) Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error) {
	col := memCollection{}
	for _, item := range s.items {
		col = append(col, &menuRec{item: item})
	}
	return reorder(ctx, col, id, requested)
}

func (s *fakeMenuStore) Delete(_ context.Context, id int64) error {
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return menu.ErrNotFound
}

func (s *fakeMenuStore) ResolveCategory(_ context.Context, name string) (*menu.Category, error) {
	name = menu.NormalizeCategoryName(name)
	if name == "" {
		return nil, nil
	}
	for _, cat := range s.categories {
		if strings.EqualFold(cat.Name, name) {
			c := *cat
			return &c, nil
		}
	}
	s.nextCatID++
	cat := &menu.Category{ID: s.nextCatID, Name: name}
	s.categories = append(s.categories, cat)
	c := *cat
	return &c, nil
}

func (s *fakeMenuStore) GetCategory(_ context.Context, id int64) (*menu.Category, error) {
	for _, cat := range s.categories {
		if cat.ID == id {
			c := *cat
			return &c, nil
		}
	}
	return nil, menu.ErrCategoryNotFound
}

func (s *fakeMenuStore) ListCategories(_ context.Context) ([]menu.Category, error) {
	out := []menu.Category{}
	for _, cat := range s.categories {
		out = append(out, *cat)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Fake hero store
// ---------------------------------------------------------------------------

type heroRec struct{ b *hero.Banner }

func (r *heroRec) recID() int64     { return r.b.ID }
func (r *heroRec) recLabel() string { return r.b.Title }
func (r *heroRec) recOrder() int    { return r.b.OrderIndex }
func (r *heroRec) setOrder(o int)   { r.b.OrderIndex = o }
func (r *heroRec) recActive() bool  { return r.b.IsActive }

type fakeHeroStore struct {
	nextID  int64
	banners []*hero.Banner
}

func (s *fakeHeroStore) deactivateOthers(exceptID int64) {
	for _, b := range s.banners {
		if b.ID != exceptID {
			b.IsActive = false
		}
	}
}

func (s *fakeHeroStore) Create(_ context.Context, b *hero.Banner, orderIndex *int) error {
	if b.IsActive {
		s.deactivateOthers(0)
	}
	s.nextID++
	b.ID = s.nextID
	if orderIndex != nil {
		b.OrderIndex = *orderIndex
	} else {
		max := 0
		for _, existing := range s.banners {
			if existing.OrderIndex > max {
				max = existing.OrderIndex
			}
		}
		b.OrderIndex = max + 1
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	clone := *b
	s.banners = append(s.banners, &clone)
	return nil
}

func (s *fakeHeroStore) find(id int64) *hero.Banner {
	for _, b := range s.banners {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (s *fakeHeroStore) GetByID(_ context.Context, id int64) (*hero.Banner, error) {
	b := s.find(id)
	if b == nil {
		return nil, hero.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (s *fakeHeroStore) List(_ context.Context, includeInactive bool, _, _ int) ([]hero.Banner, error) {
	out := []hero.Banner{}
	for _, b := range s.banners {
		if includeInactive || b.IsActive {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeHeroStore) Update(_ context.Context, id int64, patch *hero.BannerPatch) (*hero.Banner, error) {
	b := s.find(id)
	if b == nil {
		return nil, hero.ErrNotFound
	}
	if patch.IsActive != nil && *patch.IsActive {
		s.deactivateOthers(id)
	}
	if patch.ImageURL != nil {
		b.ImageURL = *patch.ImageURL
	}
	if patch.RemoteAssetID != nil {
		b.RemoteAssetID = *patch.RemoteAssetID
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Subtitle != nil {
		b.Subtitle = *patch.Subtitle
	}
	if patch.AltText != nil {
		b.AltText = *patch.AltText
	}
	if patch.IsActive != nil {
		b.IsActive = *patch.IsActive
	}
	clone := *b
	return &clone, nil
}

func (s *fakeHeroStore) Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error) {
	col := memCollection{}
	for _, b := range s.banners {
		col = append(col, &heroRec{b: b})
	}
	return reorder(ctx, col, id, requested)
}

func (s *fakeHeroStore) Delete(_ context.Context, id int64) error {
	for i, b := range s.banners {
		if b.ID == id {
			s.banners = append(s.banners[:i], s.banners[i+1:]...)
			return nil
		}
	}
	return hero.ErrNotFound
}

// ---------------------------------------------------------------------------
// Fake events store
// ---------------------------------------------------------------------------

type eventRec struct{ e *events.Event }

func (r *eventRec) recID() int64     { return r.e.ID }
func (r *eventRec) recLabel() string { return r.e.Title }
func (r *eventRec) recOrder() int    { return r.e.OrderIndex }
func (r *eventRec) setOrder(o int)   { r.e.OrderIndex = o }
func (r *eventRec) recActive() bool  { return r.e.IsActive }

type fakeEventsStore struct {
	nextID int64
	events []*events.Event
}

func (s *fakeEventsStore) Create(_ context.Context, e *events.Event, orderIndex *int) error {
	if len(e.Images) != len(e.ImageAssetIDs) {
		return events.ErrImageArity
	}
	s.nextID++
	e.ID = s.nextID
	if orderIndex != nil {
		e.OrderIndex = *orderIndex
	} else {
		max := 0
		for _, existing := range s.events {
			if existing.OrderIndex > max {
				max = existing.OrderIndex
			}
		}
		e.OrderIndex = max + 1
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	clone := *e
	s.events = append(s.events, &clone)
	return nil
}

func (s *fakeEventsStore) find(id int64) *events.Event {
	for _, e := range s.events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (s *fakeEventsStore) GetByID(_ context.Context, id int64) (*events.Event, error) {
	e := s.find(id)
	if e == nil {
		return nil, events.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *fakeEventsStore) List(_ context.Context, includeInactive bool, _, _ int) ([]events.Event, error) {
	out := []events.Event{}
	for _, e := range s.events {
		if includeInactive || e.IsActive {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeEventsStore) Update(_ context.Context, id int64, patch *events.EventPatch) (*events.Event, error) {
	if (patch.Images == nil) != (patch.ImageAssetIDs == nil) ||
		len(patch.Images) != len(patch.ImageAssetIDs) {
		return nil, events.ErrImageArity
	}
	e := s.find(id)
	if e == nil {
		return nil, events.ErrNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Venue != nil {
		e.Venue = *patch.Venue
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Highlights != nil {
		e.Highlights = *patch.Highlights
	}
	if patch.CoverImageURL != nil {
		e.CoverImageURL = *patch.CoverImageURL
	}
	if patch.CoverAssetID != nil {
		e.CoverAssetID = *patch.CoverAssetID
	}
	if patch.Images != nil {
		e.Images = patch.Images
		e.ImageAssetIDs = patch.ImageAssetIDs
	}
	if patch.IsActive != nil {
		e.IsActive = *patch.IsActive
	}
	clone := *e
	return &clone, nil
}

func (s *fakeEventsStore) Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error) {
	col := memCollection{}
	for _, e := range s.events {
		col = append(col, &eventRec{e: e})
	}
	return reorder(ctx, col, id, requested)
}

func (s *fakeEventsStore) Delete(_ context.Context, id int64) error {
	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return events.ErrNotFound
}

// ---------------------------------------------------------------------------
// Fake reviews store
// ---------------------------------------------------------------------------

type reviewRec struct{ rev *reviews.Review }

func (r *reviewRec) recID() int64     { return r.rev.ID }
func (r *reviewRec) recLabel() string { return r.rev.Name }
func (r *reviewRec) recOrder() int    { return r.rev.OrderIndex }
func (r *reviewRec) setOrder(o int)   { r.rev.OrderIndex = o }
func (r *reviewRec) recActive() bool  { return r.rev.IsActive }

type fakeReviewsStore struct {
	nextID  int64
	reviews []*reviews.Review
}

func (s *fakeReviewsStore) Create(_ context.Context, rev *reviews.Review) error {
	s.nextID++
	rev.ID = s.nextID
	max := 0
	for _, existing := range s.reviews {
		if existing.OrderIndex > max {
			max = existing.OrderIndex
		}
	}
	rev.OrderIndex = max + 1
	rev.IsActive = true
	rev.CreatedAt = time.Now()
	rev.UpdatedAt = rev.CreatedAt
	clone := *rev
	s.reviews = append(s.reviews, &clone)
	return nil
}

func (s *fakeReviewsStore) find(id int64) *reviews.Review {
	for _, rev := range s.reviews {
		if rev.ID == id {
			return rev
		}
	}
	return nil
}

func (s *fakeReviewsStore) GetByID(_ context.Context, id int64) (*reviews.Review, error) {
	rev := s.find(id)
	if rev == nil {
		return nil, reviews.ErrNotFound
	}
	clone := *rev
	return &clone, nil
}

func (s *fakeReviewsStore) List(_ context.Context, publicOnly bool, _, _ int) ([]reviews.Review, error) {
	out := []reviews.Review{}
	for _, rev := range s.reviews {
		if !publicOnly || (rev.IsActive && rev.IsApproved) {
			out = append(out, *rev)
		}
	}
	return out, nil
}

func (s *fakeReviewsStore) Update(_ context.Context, id int64, patch *reviews.ReviewPatch) (*reviews.Review, error) {
	rev := s.find(id)
	if rev == nil {
		return nil, reviews.ErrNotFound
	}
	if patch.Name != nil {
		rev.Name = *patch.Name
	}
	if patch.Email != nil {
		rev.Email = *patch.Email
	}
	if patch.Rating != nil {
		rev.Rating = *patch.Rating
	}
	if patch.ReviewText != nil {
		rev.ReviewText = *patch.ReviewText
	}
	if patch.CakeType != nil {
		rev.CakeType = *patch.CakeType
	}
	if patch.AvatarURL != nil {
		rev.AvatarURL = patch.AvatarURL
	}
	if patch.AvatarAssetID != nil {
		rev.AvatarAssetID = patch.AvatarAssetID
	}
	if patch.IsApproved != nil {
		rev.IsApproved = *patch.IsApproved
	}
	if patch.IsFeatured != nil {
		rev.IsFeatured = *patch.IsFeatured
	}
	if patch.IsActive != nil {
		rev.IsActive = *patch.IsActive
	}
	clone := *rev
	return &clone, nil
}

func (s *fakeReviewsStore) Reorder(ctx context.Context, id int64, requested int) (*ordering.Swap, error) {
	col := memCollection{}
	for _, rev := range s.reviews {
		col = append(col, &reviewRec{rev: rev})
	}
	return reorder(ctx, col, id, requested)
}

func (s *fakeReviewsStore) Delete(_ context.Context, id int64) error {
	for i, rev := range s.reviews {
		if rev.ID == id {
			s.reviews = append(s.reviews[:i], s.reviews[i+1:]...)
			return nil
		}
	}
	return reviews.ErrNotFound
}

// ---------------------------------------------------------------------------
// Test application wiring
// ---------------------------------------------------------------------------

type testStores struct {
	gallery *fakeGalleryStore
	menu    *fakeMenuStore
	events  *fakeEventsStore
	hero    *fakeHeroStore
	reviews *fakeReviewsStore
}

func newTestApp() (*application, *testStores, *fakeUploader) {
	stores := &testStores{
		gallery: &fakeGalleryStore{},
		menu:    &fakeMenuStore{},
		events:  &fakeEventsStore{},
		hero:    &fakeHeroStore{},
		reviews: &fakeReviewsStore{},
	}
	uploader := &fakeUploader{}

	app := &application{
		config: config{
			env:         "test",
			rateLimiter: ratelimiter.Config{Enabled: false},
		},
		logger: zap.NewNop().Sugar(),
		store: store.Storage{
			Gallery: stores.gallery,
			Menu:    stores.menu,
			Events:  stores.events,
			Hero:    stores.hero,
			Reviews: stores.reviews,
		},
		assets: uploader,
		guard:  auth.NewAdminGuard(testAdminKey),
	}
	return app, stores, uploader
}
