package store

import (
	"bakehouse/internal/catalog/events"
	"bakehouse/internal/catalog/gallery"
	"bakehouse/internal/catalog/hero"
	"bakehouse/internal/catalog/menu"
	"bakehouse/internal/catalog/reviews"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Storage bundles the per-collection stores behind their interfaces so
// handlers can be wired against fakes in tests.
type Storage struct {
	Gallery gallery.Store
	Menu    menu.Store
	Events  events.Store
	Hero    hero.Store
	Reviews reviews.Store
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Gallery: gallery.NewRepository(db),
		Menu:    menu.NewRepository(db),
		Events:  events.NewRepository(db),
		Hero:    hero.NewRepository(db),
		Reviews: reviews.NewRepository(db),
	}
}
