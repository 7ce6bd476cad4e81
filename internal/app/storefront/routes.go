package storefront

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/greenspire/plant-rental/internal/http/handlers/auth/login"
	"github.com/greenspire/plant-rental/internal/http/handlers/auth/register"
	cartadd "github.com/greenspire/plant-rental/internal/http/handlers/cart/add"
	cartcheckout "github.com/greenspire/plant-rental/internal/http/handlers/cart/checkout"
	cartlist "github.com/greenspire/plant-rental/internal/http/handlers/cart/list"
	cartremove "github.com/greenspire/plant-rental/internal/http/handlers/cart/remove"
	contactcreate "github.com/greenspire/plant-rental/internal/http/handlers/contact/create"
	contactlist "github.com/greenspire/plant-rental/internal/http/handlers/contact/list"
	contactreply "github.com/greenspire/plant-rental/internal/http/handlers/contact/reply"
	"github.com/greenspire/plant-rental/internal/http/handlers/health"
	plantcreate "github.com/greenspire/plant-rental/internal/http/handlers/plant/create"
	plantlist "github.com/greenspire/plant-rental/internal/http/handlers/plant/list"
	plantread "github.com/greenspire/plant-rental/internal/http/handlers/plant/read"
	plantremove "github.com/greenspire/plant-rental/internal/http/handlers/plant/remove"
	plantupdate "github.com/greenspire/plant-rental/internal/http/handlers/plant/update"
	"github.com/greenspire/plant-rental/internal/http/handlers/service/assign"
	"github.com/greenspire/plant-rental/internal/http/handlers/service/confirm"
	"github.com/greenspire/plant-rental/internal/http/handlers/service/listadmin"
	"github.com/greenspire/plant-rental/internal/http/handlers/service/listbysubscription"
	"github.com/greenspire/plant-rental/internal/http/handlers/service/listforuser"
	"github.com/greenspire/plant-rental/internal/http/handlers/service/listforworker"
	"github.com/greenspire/plant-rental/internal/http/handlers/service/listupdates"
	"github.com/greenspire/plant-rental/internal/http/handlers/service/reassign"
	"github.com/greenspire/plant-rental/internal/http/handlers/service/reportissue"
	"github.com/greenspire/plant-rental/internal/http/handlers/service/submit"
	subcreate "github.com/greenspire/plant-rental/internal/http/handlers/subscription/create"
	"github.com/greenspire/plant-rental/internal/http/handlers/subscription/generatevisits"
	sublist "github.com/greenspire/plant-rental/internal/http/handlers/subscription/list"
	sublistall "github.com/greenspire/plant-rental/internal/http/handlers/subscription/listall"
	subread "github.com/greenspire/plant-rental/internal/http/handlers/subscription/read"
	substatus "github.com/greenspire/plant-rental/internal/http/handlers/subscription/status"
	"github.com/greenspire/plant-rental/internal/http/handlers/user/changerole"
	"github.com/greenspire/plant-rental/internal/http/handlers/user/workers"
	"github.com/greenspire/plant-rental/internal/http/middlewarectx"
	"github.com/greenspire/plant-rental/internal/lib/jwt"
	"github.com/greenspire/plant-rental/internal/models"
	authservice "github.com/greenspire/plant-rental/internal/services/auth"
	cartservice "github.com/greenspire/plant-rental/internal/services/cart"
	catalogservice "github.com/greenspire/plant-rental/internal/services/catalog"
	contactservice "github.com/greenspire/plant-rental/internal/services/contact"
	subservice "github.com/greenspire/plant-rental/internal/services/subscription"
	visitservice "github.com/greenspire/plant-rental/internal/services/visit"
)

// Services bundles the business services the routes depend on.
type Services struct {
	Auth         *authservice.AuthService
	Catalog      *catalogservice.CatalogService
	Subscription *subservice.SubscriptionService
	Visit        *visitservice.VisitService
	Cart         *cartservice.CartService
	Contact      *contactservice.ContactService
}

// RegisterRoutes registers every route of the application.
func RegisterRoutes(r chi.Router, logger *slog.Logger, maker jwt.Maker, s *Services) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Get("/health", health.New(logger).ServeHTTP)
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/plants", plantlist.New(logger, s.Catalog).ServeHTTP)
		r.Get("/plants/{id}", plantread.New(logger, s.Catalog).ServeHTTP)
		r.Post("/contact", contactcreate.New(logger, s.Contact).ServeHTTP)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			admin := middlewarectx.RequireRole(logger, models.RoleAdmin)
			worker := middlewarectx.RequireRole(logger, models.RoleWorker, models.RoleAdmin)

			r.Post("/cart", cartadd.New(logger, s.Cart).ServeHTTP)
			r.Get("/cart", cartlist.New(logger, s.Cart).ServeHTTP)
			r.Delete("/cart/{index}", cartremove.New(logger, s.Cart).ServeHTTP)
			r.Post("/cart/checkout", cartcheckout.New(logger, s.Cart).ServeHTTP)

			r.Post("/subscriptions", subcreate.New(logger, s.Subscription).ServeHTTP)
			r.Get("/subscriptions", sublist.New(logger, s.Subscription).ServeHTTP)
			r.With(admin).Get("/subscriptions/admin/all", sublistall.New(logger, s.Subscription).ServeHTTP)
			r.Get("/subscriptions/{id}", subread.New(logger, s.Subscription).ServeHTTP)
			r.Patch("/subscriptions/{id}/status", substatus.New(logger, s.Subscription).ServeHTTP)
			r.With(admin).Post("/subscriptions/{id}/visits", generatevisits.New(logger, s.Subscription).ServeHTTP)

			r.Route("/services", func(r chi.Router) {
				r.Get("/subscription/{id}", listbysubscription.New(logger, s.Subscription, s.Visit).ServeHTTP)
				r.Get("/user", listforuser.New(logger, s.Visit).ServeHTTP)
				r.With(worker).Get("/worker", listforworker.New(logger, s.Visit).ServeHTTP)
				r.With(admin).Get("/admin", listadmin.New(logger, s.Visit).ServeHTTP)
				r.With(admin).Get("/{id}/updates", listupdates.New(logger, s.Visit).ServeHTTP)
				r.With(admin).Put("/{id}/assign", assign.New(logger, s.Visit).ServeHTTP)
				r.With(admin).Put("/{id}/reassign", reassign.New(logger, s.Visit).ServeHTTP)
				r.With(worker).Put("/{id}/submit", submit.New(logger, s.Visit).ServeHTTP)
				r.Put("/{id}/confirm", confirm.New(logger, s.Visit).ServeHTTP)
				r.Put("/{id}/report-issue", reportissue.New(logger, s.Visit).ServeHTTP)
			})

			r.With(admin).Post("/plants", plantcreate.New(logger, s.Catalog).ServeHTTP)
			r.With(admin).Put("/plants/{id}", plantupdate.New(logger, s.Catalog).ServeHTTP)
			r.With(admin).Delete("/plants/{id}", plantremove.New(logger, s.Catalog).ServeHTTP)

			r.With(admin).Get("/contact/admin", contactlist.New(logger, s.Contact).ServeHTTP)
			r.With(admin).Put("/contact/{id}/reply", contactreply.New(logger, s.Contact).ServeHTTP)

			r.With(admin).Get("/users/workers", workers.New(logger, s.Auth).ServeHTTP)
			r.With(admin).Put("/users/{uid}/promote", changerole.New(logger, s.Auth).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
