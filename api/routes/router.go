package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tillpoint/pos-backend/api/controllers"
	"github.com/tillpoint/pos-backend/api/middleware"
	"github.com/tillpoint/pos-backend/internal/auth"
	"github.com/tillpoint/pos-backend/internal/catalog"
	"github.com/tillpoint/pos-backend/internal/registers"
	"github.com/tillpoint/pos-backend/internal/sales"
	"github.com/tillpoint/pos-backend/internal/settings"
	"github.com/tillpoint/pos-backend/internal/shifts"
	"github.com/tillpoint/pos-backend/internal/telegram"
	"github.com/tillpoint/pos-backend/internal/users"
	"github.com/tillpoint/pos-backend/pkg/config"
	"github.com/tillpoint/pos-backend/pkg/db"
	"github.com/tillpoint/pos-backend/pkg/enums"
	"github.com/tillpoint/pos-backend/pkg/logger"
	"github.com/tillpoint/pos-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	registry *prometheus.Registry,
	terminalMetrics *metrics.TerminalMetrics,
	authService auth.Service,
	userService users.Service,
	catalogService catalog.Service,
	cartManager *registers.Manager,
	salesService sales.Service,
	shiftService shifts.Service,
	settingsStore settings.Repository,
	telegramClient *telegram.Client,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(authService, logg))

		r.Route("/v1/catalog", func(r chi.Router) {
			r.Get("/products", controllers.ProductList(catalogService, logg))
			r.Get("/categories", controllers.CategoryList(catalogService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))
				r.Post("/products", controllers.ProductCreate(catalogService, logg))
				r.Patch("/products/{productId}", controllers.ProductUpdate(catalogService, logg))
				r.Delete("/products/{productId}", controllers.ProductDelete(catalogService, logg))
				r.Post("/categories", controllers.CategoryCreate(catalogService, logg))
				r.Patch("/categories/{categoryId}", controllers.CategoryUpdate(catalogService, logg))
				r.Delete("/categories/{categoryId}", controllers.CategoryDelete(catalogService, logg))
				r.Post("/categories/{categoryId}/reorder", controllers.CategoryReorder(catalogService, logg))
			})
		})

		r.Route("/v1/registers/carts", func(r chi.Router) {
			r.Get("/", controllers.CartList(cartManager))
			r.Post("/", controllers.CartCreate(cartManager))
			r.Post("/{cartId}/activate", controllers.CartActivate(cartManager, logg))
			r.Patch("/{cartId}", controllers.CartRename(cartManager, logg))
			r.Delete("/{cartId}", controllers.CartDelete(cartManager, logg))
			r.Post("/{cartId}/items", controllers.CartAddItem(cartManager, catalogService, logg))
			r.Delete("/{cartId}/items/{productId}", controllers.CartRemoveItem(cartManager, logg))
			r.Put("/{cartId}/items/{productId}/variant", controllers.CartSetVariant(cartManager, logg))
			r.Put("/{cartId}/items/{productId}/price", controllers.CartSetManualPrice(cartManager, logg))
			r.Post("/{cartId}/checkout", controllers.CartCheckout(cartManager, salesService, logg))
		})

		r.Route("/v1/sales", func(r chi.Router) {
			r.Get("/", controllers.SalesList(salesService, logg))
			r.Post("/{saleId}/return", controllers.SaleReturn(salesService, logg))
		})

		r.Route("/v1/shifts", func(r chi.Router) {
			r.Post("/open", controllers.ShiftOpen(shiftService, logg))
			r.Post("/close", controllers.ShiftClose(shiftService, logg))
			r.Get("/current", controllers.ShiftCurrent(shiftService, logg))
			r.Get("/report", controllers.ShiftReport(shiftService, logg))
			r.Get("/stats", controllers.ShiftStats(shiftService, logg))
			r.Post("/report/send", controllers.ShiftReportSend(shiftService, settingsStore, telegramClient, terminalMetrics, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))

			r.Route("/v1/users", func(r chi.Router) {
				r.Get("/", controllers.UserList(userService, logg))
				r.Post("/", controllers.UserCreate(userService, logg))
				r.Patch("/{userId}", controllers.UserUpdate(userService, logg))
				r.Delete("/{userId}", controllers.UserDelete(userService, logg))
			})

			r.Route("/v1/writeoffs", func(r chi.Router) {
				r.Get("/", controllers.WriteOffList(shiftService, logg))
				r.Post("/", controllers.WriteOffCreate(shiftService, logg))
			})

			r.Route("/v1/settings/telegram", func(r chi.Router) {
				r.Get("/", controllers.TelegramSettingsGet(settingsStore, logg))
				r.Put("/", controllers.TelegramSettingsPut(settingsStore, logg))
			})
		})
	})

	return r
}
