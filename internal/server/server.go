// Package server wires stores, handlers, and middleware into the HTTP API.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/suyanik/Einkauflist/internal/handler"
	"github.com/suyanik/Einkauflist/internal/middleware"
	"github.com/suyanik/Einkauflist/internal/notify"
	"github.com/suyanik/Einkauflist/internal/report"
	"github.com/suyanik/Einkauflist/internal/store"
	"github.com/suyanik/Einkauflist/internal/translate"
	ws "github.com/suyanik/Einkauflist/internal/websocket"
)

// Config carries the optional external service credentials and
// deployment-dependent settings.
type Config struct {
	GeminiAPIKey string
	Push         notify.Config
	// SecureCookies marks session cookies Secure even when the connection
	// itself is plain HTTP, for deployments behind a TLS proxy.
	SecureCookies bool
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	userStore   *store.UserStore
	authH       *handler.AuthHandler
	catalogH    *handler.CatalogHandler
	productH    *handler.ProductHandler
	orderH      *handler.OrderHandler
	reportH     *handler.ReportHandler
	pushH       *handler.PushHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	catalogStore := store.NewCatalogStore(db)
	orderStore := store.NewOrderStore(db)
	pushStore := store.NewPushStore(db)

	translator := translate.NewClient(cfg.GeminiAPIKey)

	var notifier *notify.Service
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		notifier = notify.NewService(cfg.Push, pushStore, logger.With("component", "notify"))
	}

	return &Server{
		db:          db,
		hub:         hub,
		userStore:   userStore,
		authH:       handler.NewAuthHandler(userStore, cfg.SecureCookies, logger.With("component", "auth")),
		catalogH:    handler.NewCatalogHandler(catalogStore, logger.With("component", "catalog")),
		productH:    handler.NewProductHandler(catalogStore, translator, logger.With("component", "product")),
		orderH:      handler.NewOrderHandler(orderStore, hub, notifier, logger.With("component", "order")),
		reportH:     handler.NewReportHandler(report.NewAggregator(orderStore), logger.With("component", "report")),
		pushH:       handler.NewPushHandler(pushStore, cfg.Push.VAPIDPublicKey, logger.With("component", "push")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the login rate limiter for periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no session required)
	outerMux.HandleFunc("POST /auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /auth/logout", s.authH.Logout)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Routes for any logged-in user
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /categories", s.catalogH.Categories)
	protectedMux.HandleFunc("GET /products", s.catalogH.Products)
	protectedMux.HandleFunc("POST /orders/create", s.orderH.Create)
	protectedMux.Handle("GET /ws", ws.Handler(s.hub))

	// Admin-only routes
	admin := middleware.RequireAdmin
	protectedMux.Handle("GET /orders/pending", admin(http.HandlerFunc(s.orderH.Pending)))
	protectedMux.Handle("POST /orders/complete", admin(http.HandlerFunc(s.orderH.Complete)))
	protectedMux.Handle("GET /report/monthly", admin(http.HandlerFunc(s.reportH.Monthly)))
	protectedMux.Handle("POST /products/save", admin(http.HandlerFunc(s.productH.Save)))
	protectedMux.Handle("POST /products/add", admin(http.HandlerFunc(s.productH.Translate)))
	protectedMux.Handle("POST /push/subscribe", admin(http.HandlerFunc(s.pushH.Subscribe)))
	protectedMux.Handle("GET /push/key", admin(http.HandlerFunc(s.pushH.PublicKey)))

	authMiddleware := middleware.RequireAuth(s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}
