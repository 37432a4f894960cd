package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig wires the handlers and middleware into the HTTP surface.
type RouterConfig struct {
	AuthHandler    *AuthHandler
	ItemHandler    *ItemHandler
	OfferHandler   *OfferHandler
	AuthMiddleware func(http.Handler) http.Handler
}

// NewRouter creates and configures the HTTP router. Browsing listings and
// reading offers on a listing are public; everything that writes requires a
// bearer token.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)
		r.Get("/categories", cfg.ItemHandler.Categories)
		r.Get("/items", cfg.ItemHandler.List)
		r.Get("/items/{itemID}", cfg.ItemHandler.Get)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthMiddleware)

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Post("/items", cfg.ItemHandler.Create)
			r.Put("/items/{itemID}", cfg.ItemHandler.Update)
			r.Delete("/items/{itemID}", cfg.ItemHandler.Cancel)

			r.Post("/items/{itemID}/offers", cfg.OfferHandler.Submit)
			r.Get("/items/{itemID}/offers", cfg.OfferHandler.ListForItem)

			r.Get("/offers/my", cfg.OfferHandler.ListMine)
			r.Get("/offers/{offerID}", cfg.OfferHandler.Get)
			r.Patch("/offers/{offerID}", cfg.OfferHandler.Edit)
			r.Delete("/offers/{offerID}", cfg.OfferHandler.Cancel)
			r.Post("/offers/{offerID}/confirm", cfg.OfferHandler.Confirm)
			r.Post("/offers/{offerID}/decline", cfg.OfferHandler.Decline)
		})
	})

	return r
}
