package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lettable/booking-admin/pkg/admin"
	adminapi "github.com/lettable/booking-admin/pkg/admin/api"
	"github.com/lettable/booking-admin/pkg/auth"
	"github.com/lettable/booking-admin/pkg/booking"
	bookingapi "github.com/lettable/booking-admin/pkg/booking/api"
	"github.com/lettable/booking-admin/pkg/config"
	"github.com/lettable/booking-admin/pkg/db"
	"github.com/lettable/booking-admin/pkg/directory"
	"github.com/lettable/booking-admin/pkg/metrics"
	"github.com/lettable/booking-admin/pkg/notify"
	"github.com/lettable/booking-admin/pkg/profile"
	"github.com/lettable/booking-admin/pkg/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		directoryRepo directory.Repository
		profileRepo   profile.Repository
		propertyRepo  booking.PropertyRepository
		bookingRepo   booking.BookingRepository
	)
	if cfg.Db.InMemory {
		slog.Warn("Running with in-memory stores; nothing will survive a restart")
		directoryRepo = directory.NewInMemoryRepository()
		profileRepo = profile.NewInMemoryRepository()
		propertyRepo = booking.NewInMemoryPropertyRepository()
		bookingRepo = booking.NewInMemoryBookingRepository()
	} else {
		if err := db.Migrate(cfg.Db.ToDatabaseURL()); err != nil {
			slog.Error("Failed to migrate database", "err", err)
			os.Exit(1)
		}
		pool, err := db.NewPool(ctx, cfg.Db.ToDatabaseURL())
		if err != nil {
			slog.Error("Failed to connect to database", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		directoryRepo = directory.NewPostgresRepository(pool)
		profileRepo = profile.NewPostgresRepository(pool)
		propertyRepo = booking.NewPostgresPropertyRepository(pool)
		bookingRepo = booking.NewPostgresBookingRepository(pool)
	}

	directorySvc := directory.NewService(directoryRepo)
	profileSvc := profile.NewService(profileRepo)
	bookingSvc := booking.NewService(propertyRepo, bookingRepo)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	adminSvc := admin.NewService(directorySvc, profileSvc, admin.WithMetrics(collector))

	tokenSvc := auth.NewTokenService(cfg.Jwt.Secret, cfg.Jwt.Issuer,
		auth.WithAccessTokenExpiry(cfg.Jwt.AccessTokenExpiry),
		auth.WithRefreshTokenExpiry(cfg.Jwt.RefreshTokenExpiry),
	)

	var sender notify.Sender = notify.NoOpSender{}
	if cfg.Email.Enabled {
		sender, err = notify.NewEmailSender(notify.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			TLS:      cfg.Email.TLS,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		})
		if err != nil {
			slog.Error("Failed to create mail client", "err", err)
			os.Exit(1)
		}
	}

	authHandle := auth.NewHandle(directorySvc, profileSvc, tokenSvc,
		auth.WithNotifier(sender),
		auth.WithFrontendURL(cfg.Server.FrontendURL),
		auth.WithSecureCookies(cfg.Jwt.CookieSecure),
	)
	adminHandle := adminapi.NewHandle(adminSvc)
	bookingHandle := bookingapi.NewHandle(bookingSvc)

	logger := httplog.NewLogger("bookadmin", httplog.Options{
		JSON:            true,
		LogLevel:        slog.LevelInfo,
		Concise:         true,
		RequestHeaders:  false,
		QuietDownRoutes: []string{"/healthz", "/metrics"},
		QuietDownPeriod: time.Minute,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})
	r.Method("GET", "/metrics", metrics.Handler(registry))

	// Credential endpoints are the brute-force surface; admin and booking
	// endpoints rely on authentication instead.
	r.Group(func(r chi.Router) {
		if cfg.RateLimit.Enabled {
			limiter := ratelimit.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
			r.Use(limiter.Middleware)
		}
		authHandle.RegisterRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenSvc.JWTAuth()))
		r.Use(auth.CallerMiddleware)
		adminHandle.RegisterRoutes(r)
		bookingHandle.RegisterRoutes(r)
	})

	if cfg.Reconciler.Enabled {
		reconciler := admin.NewReconciler(directorySvc, profileSvc, collector)
		go reconciler.Run(ctx, cfg.Reconciler.Interval)
	}

	server := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: r,
	}

	go func() {
		slog.Info("Server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Forced shutdown", "err", err)
	}
}
