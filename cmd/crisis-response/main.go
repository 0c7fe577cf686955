package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/mr1hm/go-crisis-response/internal/api"
	"github.com/mr1hm/go-crisis-response/internal/assist"
	"github.com/mr1hm/go-crisis-response/internal/config"
	"github.com/mr1hm/go-crisis-response/internal/intake"
	"github.com/mr1hm/go-crisis-response/internal/logging"
	"github.com/mr1hm/go-crisis-response/internal/notify"
	"github.com/mr1hm/go-crisis-response/internal/repository"
	"github.com/mr1hm/go-crisis-response/internal/seed"
	"github.com/mr1hm/go-crisis-response/internal/session"
	"github.com/mr1hm/go-crisis-response/internal/transfer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "store", cfg.Store.Driver)

	data, err := seed.Load(cfg.Store.SeedPath, time.Now())
	if err != nil {
		logging.Fatalf("Failed to load seed data: %v", err)
	}
	memory := repository.NewMemoryStore(data)

	var (
		requests repository.RequestRepository = memory
		notices  repository.NoticeRepository  = memory
	)
	if cfg.Store.Driver == "sqlite" {
		db, err := openSQLite(cfg.Store.Path, data)
		if err != nil {
			logging.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		requests, notices = db, db
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	broadcaster := notify.NewBroadcaster()

	mgr := intake.NewManager(cfg, requests, notices, broadcaster)
	mgr.Start(ctx)

	transfers := transfer.NewService(cfg.Transfer.Delay, cfg.Transfer.Workers, cfg.Transfer.Queue)
	transfers.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.Middleware())
	router.Use(cors.New(corsConfig(cfg.Server.AllowOrigins)))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(api.Deps{
		Requests:    requests,
		Notices:     notices,
		Catalog:     memory,
		Intake:      mgr,
		Transfers:   transfers,
		Assistant:   assist.NewClient(cfg.Assist.URL, cfg.Assist.Timeout),
		Sessions:    session.NewStore(),
		Broadcaster: broadcaster,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		// SSE handlers only return once their subscription channel closes.
		broadcaster.Close()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	cancel()
	mgr.Stop()
	transfers.Stop()

	if err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func openSQLite(path string, data *seed.Dataset) (*repository.SQLiteDB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("error creating data directory: %w", err)
		}
	}

	db, err := repository.NewSQLiteDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.Seed(context.Background(), data.Requests, data.Notices); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func corsConfig(origins []string) cors.Config {
	wildcard := slices.Contains(origins, "*")
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: !wildcard, // must be false with wildcard origins
	}
	if wildcard {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
