package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-market-api/internal/application/category"
	"github.com/go-market-api/internal/application/chat"
	"github.com/go-market-api/internal/application/image"
	"github.com/go-market-api/internal/application/listing"
	"github.com/go-market-api/internal/application/review"
	"github.com/go-market-api/internal/application/session"
	"github.com/go-market-api/internal/application/user"
	"github.com/go-market-api/internal/config"
	"github.com/go-market-api/internal/domain"
	"github.com/go-market-api/internal/transport/http/handler"
	appmiddleware "github.com/go-market-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10. Applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo: deps.SessionRepo,
		UserRepo:    deps.UserRepo,
		JWTProvider: deps.JWTProvider,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:    deps.UserRepo,
		SessionRepo: deps.SessionRepo,
		JWTProvider: deps.JWTProvider,
	})
	listingSvc := listing.NewService(listing.ServiceDeps{
		ListingRepo:      deps.ListingRepo,
		ConversationRepo: deps.ConversationRepo,
		CategoryRepo:     deps.CategoryRepo,
		Notifier:         deps.Notifier,
	})
	chatSvc := chat.NewService(chat.ServiceDeps{
		ConversationRepo: deps.ConversationRepo,
		MessageRepo:      deps.MessageRepo,
		ListingRepo:      deps.ListingRepo,
		UserRepo:         deps.UserRepo,
		Notifier:         deps.Notifier,
	})
	reviewSvc := review.NewService(review.ServiceDeps{
		ReviewRepo:  deps.ReviewRepo,
		ListingRepo: deps.ListingRepo,
	})
	categorySvc := category.NewService(deps.CategoryRepo)
	imageSvc := image.NewService(image.ServiceDeps{
		ImageRepo:   deps.ImageRepo,
		ListingRepo: deps.ListingRepo,
		ObjectStore: deps.S3Store,
	})

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	listingH := handler.NewListingHandler(listingSvc)
	chatH := handler.NewChatHandler(chatSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	imageH := handler.NewImageHandler(imageSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.Get("/listings", listingH.Search)
		r.Get("/listings/{id}", listingH.Get)
		r.Get("/listings/{id}/images", imageH.ListByListing)
		r.Get("/categories", categoryH.List)
		r.Get("/categories/{id}", categoryH.Get)
		r.Get("/users/{id}/reviews", reviewH.ListByUser)
		r.Get("/users/{id}/listings", listingH.ListBySeller)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Post("/users/{id}/change-password", userH.ChangePassword)
			r.Put("/users/{id}/line", userH.BindLine)
			r.Delete("/users/{id}/line", userH.UnbindLine)
			r.Put("/users/{id}/notification-preference", userH.SetNotificationPreference)

			r.Post("/listings", listingH.Create)
			r.Put("/listings/{id}", listingH.Update)
			r.Delete("/listings/{id}", listingH.Delete)
			r.Put("/listings/{id}/status", listingH.SetStatus)
			r.Post("/listings/{id}/images", imageH.Upload)

			r.Get("/images/{id}", imageH.URL)
			r.Delete("/images/{id}", imageH.Delete)

			r.Post("/conversations", chatH.Start)
			r.Get("/conversations", chatH.List)
			r.Get("/conversations/{id}/messages", chatH.Messages)
			r.Post("/conversations/{id}/messages", chatH.Send)

			r.Post("/reviews", reviewH.Create)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/categories", categoryH.Create)
				r.Put("/categories/{id}", categoryH.Update)
				r.Delete("/categories/{id}", categoryH.Delete)
			})
		})
	})

	return r
}
