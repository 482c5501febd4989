// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, response caching, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tbourn/go-garage-backend/internal/config"
	"github.com/tbourn/go-garage-backend/internal/http/handlers"
	"github.com/tbourn/go-garage-backend/internal/http/middleware"
	"github.com/tbourn/go-garage-backend/internal/repo"
	"github.com/tbourn/go-garage-backend/internal/services"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured request logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress responses for clients that accept it
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, carID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, carID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db
	slotSvc := services.NewSlotService(db)
	clientSvc := &services.ClientService{DB: db}
	carSvc := &services.CarService{DB: db, Slots: slotSvc}
	repairSvc := &services.RepairService{DB: db, Slots: slotSvc}
	billingSvc := &services.BillingService{DB: db}
	catalogSvc := &services.CatalogService{DB: db}
	statsSvc := &services.StatsService{DB: db, Slots: slotSvc}
	h := handlers.New(clientSvc, carSvc, repairSvc, slotSvc, billingSvc, catalogSvc, statsSvc)

	// Short-TTL response cache for the hot read-only endpoints.
	respCache := middleware.ResponseCache(
		gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		cfg.CacheTTL,
	)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Clients
		api.POST("/clients", h.CreateClient)
		api.GET("/clients", h.ListClients)
		api.GET("/clients/:id", h.GetClient)
		api.GET("/clients/:id/cars", h.ListClientCars)
		api.PUT("/clients/:id", h.UpdateClient)
		api.DELETE("/clients/:id", h.DeleteClient)

		// Cars
		api.POST("/cars", h.CreateCar)
		api.GET("/cars", h.ListCars)
		api.GET("/cars/:id", h.GetCar)
		api.PUT("/cars/:id", h.UpdateCar)
		api.PUT("/cars/:id/status", h.OverrideCarStatus)
		api.DELETE("/cars/:id", h.DeleteCar)
		api.GET("/cars/status/:status", h.ListCarsByStatus)
		api.GET("/cars/client/:clientId", h.ListCarsByClient)

		// Billing
		api.GET("/cars/:id/quote", h.GetCarQuote)
		api.POST("/cars/:id/pay", h.PayCar)
		api.GET("/cars/:id/payment", h.GetCarPayment)

		// Repairs
		api.POST("/cars/:id/repairs", h.CreateRepair)
		api.GET("/cars/:id/repairs", h.ListCarRepairs)
		api.GET("/repairs", h.ListRepairs)
		api.GET("/repairs/state/:state", h.ListRepairsByState)
		api.GET("/repairs/:id", h.GetRepair)
		api.PUT("/repairs/:id/start", h.StartRepair)
		api.PUT("/repairs/:id/finish", h.FinishRepair)
		api.DELETE("/repairs/:id", h.DeleteRepair)

		// Slots
		api.GET("/slots", h.ListSlots)
		api.GET("/slots/report", h.SlotReport)
		api.GET("/slots/:id", h.GetSlot)
		api.PUT("/slots/:id/occupy", h.OccupySlot)
		api.PUT("/slots/:id/release", h.ReleaseSlot)

		// Catalog (cached: fixed offering, read-heavy)
		api.GET("/interventions", respCache, h.ListInterventions)
		api.GET("/interventions/:id", h.GetIntervention)
		api.POST("/interventions", h.CreateIntervention)
		api.PUT("/interventions/:id", h.UpdateIntervention)
		api.DELETE("/interventions/:id", h.DeleteIntervention)

		// Reporting (cached: aggregate, tolerant of short staleness)
		api.GET("/stats/dashboard", respCache, h.GetDashboard)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
