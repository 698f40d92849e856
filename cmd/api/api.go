package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"bakehouse/internal/assets"
	"bakehouse/internal/auth"
	"bakehouse/internal/ratelimiter"
	"bakehouse/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config      config
	store       store.Storage
	logger      *zap.SugaredLogger
	assets      assets.Uploader
	guard       auth.Guard
	rateLimiter ratelimiter.Limiter
	wg          sync.WaitGroup
}

type config struct {
	addr        string
	env         string
	frontendURL string
	db          dbConfig
	rateLimiter ratelimiter.Config
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.With(app.RequireAdmin).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/gallery", func(r chi.Router) {
			r.Get("/", app.listGalleryHandler)
			r.Get("/{id}", app.getGalleryImageHandler)
			r.With(app.RequireAdmin).Post("/", app.createGalleryImageHandler)
			r.With(app.RequireAdmin).Put("/{id}", app.updateGalleryImageHandler)
			r.With(app.RequireAdmin).Delete("/{id}", app.deleteGalleryImageHandler)
		})

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", app.listMenuItemsHandler)
			r.Get("/{id}", app.getMenuItemHandler)
			r.With(app.RequireAdmin).Post("/", app.createMenuItemHandler)
			r.With(app.RequireAdmin).Put("/{id}", app.updateMenuItemHandler)
			r.With(app.RequireAdmin).Delete("/{id}", app.deleteMenuItemHandler)
		})
		r.Get("/categories", app.listCategoriesHandler)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", app.listEventsHandler)
			r.Get("/{id}", app.getEventHandler)
			r.With(app.RequireAdmin).Post("/", app.createEventHandler)
			r.With(app.RequireAdmin).Put("/{id}", app.updateEventHandler)
			r.With(app.RequireAdmin).Delete("/{id}", app.deleteEventHandler)
		})

		r.Route("/hero", func(r chi.Router) {
			r.Get("/", app.listHeroBannersHandler)
			r.Get("/{id}", app.getHeroBannerHandler)
			r.With(app.RequireAdmin).Post("/", app.createHeroBannerHandler)
			r.With(app.RequireAdmin).Put("/{id}", app.updateHeroBannerHandler)
			r.With(app.RequireAdmin).Delete("/{id}", app.deleteHeroBannerHandler)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", app.listReviewsHandler)
			r.Get("/{id}", app.getReviewHandler)
			// Visitors submit reviews; everything else is admin-gated.
			r.With(app.RateLimiterMiddleware).Post("/", app.submitReviewHandler)
			r.With(app.RequireAdmin).Put("/{id}", app.updateReviewHandler)
			r.With(app.RequireAdmin).Delete("/{id}", app.deleteReviewHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	// Let in-flight asset cleanup finish before exiting.
	app.wg.Wait()

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}

// background runs fn on a tracked goroutine so shutdown can wait for it.
// Panics are logged rather than taking the process down.
func (app *application) background(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				app.logger.Errorw("background task panicked", "error", err)
			}
		}()
		fn()
	}()
}
