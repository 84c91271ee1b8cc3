package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maker-profiles/config"
	"maker-profiles/handlers"
	"maker-profiles/middleware"
	"maker-profiles/models"
	"maker-profiles/routes"
	"maker-profiles/secretmanager"
	"maker-profiles/store"
	"maker-profiles/telemetry"
	"maker-profiles/utils"
	"maker-profiles/views"

	"github.com/google/uuid"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	prodSecretName  = "prod/maker-profiles"
	shutdownTimeout = 10 * time.Second
)

var (
	loadEnv        = godotenv.Load
	loadConfig     = config.Load
	initTelemetry  = telemetry.Init
	getSecretMap   = secretmanager.GetSecretMap
	resolveDataDir = store.ResolveDataDir
	randRead       = rand.Read
	listenAndServe = func(srv *http.Server) error { return srv.ListenAndServe() }
	logFatal       = log.Fatal
)

func loadProdSecrets(ctx context.Context) error {
	secrets, err := getSecretMap(ctx, prodSecretName)
	if err != nil {
		return fmt.Errorf("error retrieving app secret: %w", err)
	}
	for key, value := range secrets {
		os.Setenv(key, value)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logFatal(err)
	}
}

func run(ctx context.Context) error {
	if err := loadEnv(); err != nil {
		log.Println("No .env file found; using system environment variables")
	}
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}
	log.Println("Environment:", appEnv)

	if appEnv == "prod" {
		if err := loadProdSecrets(ctx); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	shutdownTelemetry, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("telemetry error: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Printf("telemetry shutdown error: %v", err)
		}
	}()

	dataDir, err := resolveDataDir(cfg.Storage.DataDir, cfg.Storage.FallbackDataDir)
	if err != nil {
		return fmt.Errorf("storage error: %w", err)
	}
	log.Printf("Data directory: %s", dataDir)

	profiles := store.NewMemoryStore()
	persister := store.NewPersister(profiles, store.SnapshotPath(dataDir, cfg.Storage.SnapshotFile), cfg.Storage.SaveDelay, nil)
	if !persister.Load() && cfg.Storage.SeedDemo {
		if err := seedDemo(profiles, time.Now()); err != nil {
			return fmt.Errorf("seed error: %w", err)
		}
		persister.ScheduleSave()
	}
	log.Printf("Loaded %d profiles", profiles.Len())

	handler, err := buildHandler(cfg, profiles, persister)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, persister)
}

// buildHandler assembles the router and the middleware around it.
func buildHandler(cfg config.Config, profiles *store.MemoryStore, persister *store.Persister) (http.Handler, error) {
	pages, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}

	csrfKey := cfg.CSRF.Key
	if csrfKey == nil {
		csrfKey = make([]byte, 32)
		if _, err := randRead(csrfKey); err != nil {
			return nil, fmt.Errorf("csrf key error: %w", err)
		}
		log.Println("CSRF_KEY not set; using a per-process key")
	}
	csrfFailure := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages.RenderError(w, r, http.StatusForbidden, "Your form expired. Reload the page and try again.")
	})

	profileHandler := handlers.NewProfileHandler(cfg, profiles, persister, pages)
	router := routes.SetupRoutes(profileHandler, handlers.HealthHandler(profiles), pages)

	return middleware.Chain(router,
		middleware.Identity(cfg.Identity, profiles),
		middleware.CSRF(cfg, csrfKey, csrfFailure),
		middleware.SecurityHeaders,
		middleware.RequestLogger,
		func(next http.Handler) http.Handler { return otelhttp.NewHandler(next, "http.server") },
		gorillaHandlers.CompressHandler,
		gorillaHandlers.ProxyHeaders,
	), nil
}

// serve runs srv until ctx is done or the listener fails, then drains
// in-flight requests and writes out any pending snapshot.
func serve(ctx context.Context, srv *http.Server, persister *store.Persister) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		errCh <- listenAndServe(srv)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown error: %v", err)
		}
	}

	if err := persister.Close(); err != nil {
		log.Printf("final snapshot flush failed: %v", err)
	}
	return serveErr
}

func seedDemo(profiles store.ProfileStore, now time.Time) error {
	secret, err := utils.GenerateEditSecret()
	if err != nil {
		return err
	}
	now = now.UTC()
	demo := models.Profile{
		ID:      uuid.NewString(),
		Name:    "Demo Maker",
		MakerID: "DEM-0MK-R01",
		Bio:     "An example profile. Create your own to show off your courses.",
		Tags:    []string{"Standard", "Puzzle"},
		TopItems: []models.TopItem{
			{Title: "Tutorial Tower", ItemID: "TUT-000-001", Note: "Start here"},
			{Title: "Switch Palace"},
		},
		CreatedAt:  now,
		UpdatedAt:  now,
		EditSecret: secret,
	}
	created, err := profiles.Create(demo, func(taken func(string) bool) string {
		return "demo"
	})
	if err != nil {
		return err
	}
	log.Printf("Seeded demo profile handle=%s", created.Handle)
	return nil
}
