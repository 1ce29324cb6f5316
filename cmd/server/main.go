package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"hrpay/internal/db"
	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/auth"
	"hrpay/internal/domain/employee"
	"hrpay/internal/domain/payroll"
	"hrpay/internal/platform/config"
	"hrpay/internal/platform/jobs"
	audithandler "hrpay/internal/transport/http/handlers/audit"
	authhandler "hrpay/internal/transport/http/handlers/auth"
	departmenthandler "hrpay/internal/transport/http/handlers/departments"
	employeehandler "hrpay/internal/transport/http/handlers/employees"
	payrollhandler "hrpay/internal/transport/http/handlers/payroll"
	userhandler "hrpay/internal/transport/http/handlers/users"
	"hrpay/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	isProd := cfg.Environment == "production"

	logFormat := httplog.SchemaECS.Concise(!isProd)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hrpay"),
		slog.String("env", cfg.Environment),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if err := db.BootstrapSuperAdmin(ctx, pool, cfg); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	auditSvc := audit.New(pool)
	authStore := auth.NewStore(pool)
	authSvc := auth.NewService(authStore, auditSvc, cfg.JWTSecret, cfg.JWTTTL)
	employeeStore := employee.NewStore(pool)
	payrollStore := payroll.NewStore(pool)
	payrollSvc := payroll.NewService(payrollStore, auditSvc, payroll.Rates{
		DefaultTaxRate:         cfg.Rates.DefaultTaxRate,
		SocialSecurityRate:     cfg.Rates.SocialSecurityRate,
		HealthInsurancePremium: cfg.Rates.HealthInsurancePremium,
		RetirementRate:         cfg.Rates.RetirementRate,
	})

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	router.Use(chimiddleware.CleanPath)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(isProd))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Authenticate(cfg.JWTSecret, authStore))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			userhandler.NewHandler(authSvc).RegisterRoutes(r)
			departmenthandler.NewHandler(employeeStore, auditSvc).RegisterRoutes(r)
			employeehandler.NewHandler(employeeStore, auditSvc).RegisterRoutes(r)
			payrollhandler.NewHandler(payrollSvc, employeeStore).RegisterRoutes(r)
			audithandler.NewHandler(auditSvc).RegisterRoutes(r)
		})
	})

	background := jobs.New(pool, cfg)
	background.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown incomplete", "err", err)
	}
}
