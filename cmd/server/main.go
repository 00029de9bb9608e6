// SPDX-License-Identifier: MIT

// Command server runs the Physical AI Textbook backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/hamza123545/physical-ai-backend/internal/api"
	"github.com/hamza123545/physical-ai-backend/internal/auth"
	"github.com/hamza123545/physical-ai-backend/internal/cache"
	"github.com/hamza123545/physical-ai-backend/internal/config"
	"github.com/hamza123545/physical-ai-backend/internal/cors"
	"github.com/hamza123545/physical-ai-backend/internal/health"
	"github.com/hamza123545/physical-ai-backend/internal/llm"
	applog "github.com/hamza123545/physical-ai-backend/internal/log"
	"github.com/hamza123545/physical-ai-backend/internal/rag"
	"github.com/hamza123545/physical-ai-backend/internal/store"
	"github.com/hamza123545/physical-ai-backend/internal/vector"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	envFile := flag.String("env-file", "", "path to a .env file (optional)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Load .env before reading configuration; a missing default file is fine.
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load env file %s: %v\n", *envFile, err)
			os.Exit(1)
		}
	} else {
		_ = godotenv.Load()
	}

	applog.Configure(applog.Config{
		Service: "physical-ai-backend",
	})
	logger := applog.WithComponent("server")

	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Str(applog.FieldEvent, "server.failed").Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg config.AppConfig) error {
	logger := applog.WithComponent("server")

	logger.Info().
		Str(applog.FieldEvent, "server.starting").
		Str("version", version).
		Str("environment", cfg.Environment).
		Str("addr", cfg.Addr).
		Msg("starting textbook backend")

	// Storage.
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := store.Open(cfg.DatabasePath, store.DefaultConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.New(db)
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	// Quick structural check on the database file before serving traffic.
	if diags, err := store.VerifyIntegrity(cfg.DatabasePath, "quick"); err != nil {
		logger.Warn().Err(err).Str(applog.FieldEvent, "store.integrity_skipped").Msg("integrity check could not run")
	} else if len(diags) > 0 {
		return fmt.Errorf("database integrity check failed: %v", diags)
	}

	// Cache: Redis when configured, in-memory otherwise.
	var contentCache cache.Cache
	var redisCache *cache.Redis
	if cfg.RedisAddr != "" {
		redisCache, err = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, applog.WithComponent("cache"))
		if err != nil {
			return fmt.Errorf("redis cache: %w", err)
		}
		defer redisCache.Close()
		contentCache = redisCache
	} else {
		mem := cache.NewMemory(time.Minute)
		defer mem.Stop()
		contentCache = mem
	}

	// Upstream clients.
	openai := llm.New(llm.Config{
		BaseURL:        cfg.OpenAIBaseURL,
		APIKey:         cfg.OpenAIKey,
		Model:          cfg.OpenAIModel,
		EmbeddingModel: cfg.OpenAIEmbeddingModel,
	})

	var qdrant *vector.Client
	if cfg.QdrantURL != "" {
		qdrant = vector.New(cfg.QdrantURL, cfg.QdrantAPIKey)
	} else {
		logger.Warn().Str(applog.FieldEvent, "qdrant.disabled").Msg("QDRANT_URL not set; retrieval disabled")
	}

	var ragSvc *rag.Service
	if qdrant != nil {
		ragSvc = rag.NewService(openai, qdrant, openai, cfg.QdrantCollection)
	}
	personalizer := rag.NewPersonalizer(openai, contentCache, cfg.ContentCacheTTL)

	// Health and readiness.
	hm := health.NewManager("physical-ai-backend", version)
	hm.RegisterChecker(health.NewSQLChecker(db))
	var lister health.CollectionLister
	if qdrant != nil {
		lister = qdrant
	}
	hm.RegisterChecker(health.NewQdrantChecker(lister))
	if redisCache != nil {
		hm.RegisterChecker(health.NewRedisChecker(redisCache))
	}

	policy := cors.NewPolicy(cfg.CORSOrigins, cfg.IsDevelopment())

	server := api.New(api.Deps{
		Config:       cfg,
		Policy:       policy,
		Store:        st,
		Signer:       auth.NewSigner(cfg.JWTSecret, cfg.TokenTTL),
		RAG:          ragService(ragSvc),
		Personalizer: personalizer,
		ChatKit:      openai,
		Health:       hm,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str(applog.FieldEvent, "server.listening").Str("addr", cfg.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Str(applog.FieldEvent, "server.shutdown").Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ragService adapts a possibly-nil retrieval pipeline. Without Qdrant the
// chat and embeddings routes answer 503 instead of panicking.
func ragService(svc *rag.Service) api.Asker {
	if svc == nil {
		return unavailableRAG{}
	}
	return svc
}

type unavailableRAG struct{}

var errRetrievalDisabled = errors.New("retrieval not configured")

func (unavailableRAG) Ask(ctx context.Context, q string, h []llm.Message, onChunk func(string)) (*rag.Answer, error) {
	return nil, errRetrievalDisabled
}

func (unavailableRAG) SearchPassages(ctx context.Context, q string, limit int) ([]vector.Point, error) {
	return nil, errRetrievalDisabled
}
