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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/medicart/internal/auth"
	"github.com/Skotchmaster/medicart/internal/config"
	"github.com/Skotchmaster/medicart/internal/db"
	"github.com/Skotchmaster/medicart/internal/es"
	"github.com/Skotchmaster/medicart/internal/httpserver"
	"github.com/Skotchmaster/medicart/internal/invoice"
	"github.com/Skotchmaster/medicart/internal/logging"
	authmw "github.com/Skotchmaster/medicart/internal/middleware/auth"
	"github.com/Skotchmaster/medicart/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/medicart/internal/middleware/logging"
	"github.com/Skotchmaster/medicart/internal/mykafka"
	"github.com/Skotchmaster/medicart/internal/repo"
	"github.com/Skotchmaster/medicart/internal/service"
	"github.com/Skotchmaster/medicart/internal/service/search"
	"github.com/Skotchmaster/medicart/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFile).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	gdb, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBDriver)
	if err != nil {
		logger.Error("db_open_failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("db_migrate_failed", "error", err)
		os.Exit(1)
	}
	store := &repo.GormRepo{DB: gdb}

	prod, err := mykafka.New(cfg.KafkaBrokers)
	if err != nil {
		logger.Error("kafka_init_failed", "error", err)
		os.Exit(1)
	}

	var searcher search.Searcher = &search.DB{DB: gdb}
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			logger.Warn("es_unavailable_using_db_search", "error", err)
		} else {
			searcher = search.NewElastic(esClient, cfg.ESIndex)
		}
	}

	creds, err := auth.NewCredentials(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPassHash)
	if err != nil {
		logger.Error("admin_credentials_invalid", "error", err)
		os.Exit(1)
	}
	issuer := auth.NewIssuer(cfg.AdminTokenSecret, cfg.AdminSessionTTL)

	invoices := invoice.NewGenerator(invoice.Options{
		Dir:      cfg.InvoiceDir,
		FontPath: cfg.InvoiceFont,
		Compress: cfg.InvoiceCompress,
	})

	sessionStore, err := session.NewStore(cfg.SessionDir, cfg.SessionSecret, cfg.CookieSecure)
	if err != nil {
		logger.Error("session_store_failed", "error", err)
		os.Exit(1)
	}
	if n, err := session.Prune(cfg.SessionDir, time.Now()); err != nil {
		logger.Warn("session_prune_error", "dir", cfg.SessionDir, "error", err)
	} else if n > 0 {
		logger.Info("session_pruned", "removed", n)
	}

	catalog := &service.CatalogService{Repo: store, Search: searcher, Events: prod}
	orders := &service.OrderService{Orders: store, Events: prod}

	renderer, err := httpserver.NewRenderer()
	if err != nil {
		logger.Error("templates_parse_failed", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		ShopHandler:     &httpserver.ShopHTTP{Svc: catalog},
		CartHandler:     &httpserver.CartHTTP{Svc: &service.CartService{Catalog: catalog}},
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: &service.CheckoutService{Orders: store, Invoices: invoices, Events: prod}},
		InvoiceHandler:  &httpserver.InvoiceHTTP{Invoices: invoices, Orders: orders},
		AdminHandler: &httpserver.AdminHTTP{
			Admin:   &service.AdminService{Credentials: creds, Issuer: issuer},
			Catalog: catalog,
			Orders:  orders,
		},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		Guard:          authmw.NewAdminGuard(issuer),
		SessionStore:   sessionStore,
		StaticDir:      cfg.StaticDir,
		Ready:          store.Ping,
	}
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.Secure = cfg.CookieSecure
		csrfCfg.SkipPrefixes = []string{"/api/"}
		deps.CSRF = &csrfCfg
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force_exit")
		os.Exit(1)
	}()

	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := service.WaitPublished(shutdownCtx); err != nil {
		logger.Warn("events_drain_timeout", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	if err := prod.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}
