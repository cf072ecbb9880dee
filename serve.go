package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ashkam58/pythongrade3/internal/assistant"
	"github.com/ashkam58/pythongrade3/internal/config"
	"github.com/ashkam58/pythongrade3/internal/curriculum"
	"github.com/ashkam58/pythongrade3/internal/httpserver"
	"github.com/ashkam58/pythongrade3/internal/metrics"
	"github.com/ashkam58/pythongrade3/internal/progress"
	"github.com/ashkam58/pythongrade3/internal/store"
)

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			loaded.Port = port
		}
		return runServe(cmd.Context(), loaded)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT)")
}

// runServe wires the stores, the assistant and the router, then serves until
// SIGINT/SIGTERM.
func runServe(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := progress.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()
	applied, err := progress.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		log.Info().Strs("migrations", applied).Msg("database migrated")
	}

	content, err := curriculum.Load(cfg.CurriculumFile)
	if err != nil {
		return err
	}

	ai, err := assistant.New(ctx, cfg.APIKey, cfg.GeminiModel)
	if err != nil {
		return err
	}

	sessions, locker, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	srv := httpserver.New(httpserver.Deps{
		Config:    cfg,
		Sessions:  sessions,
		DB:        db,
		Content:   content,
		Assistant: ai,
		Metrics:   metrics.New(),
		Locker:    locker,
	})

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("starting funfair server")
		if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := hs.Shutdown(sctx); err != nil {
			_ = hs.Close()
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// openSessions picks Redis when REDIS_ADDR is set and the in-memory store
// otherwise. Only Redis comes with a cross-process locker.
func openSessions(ctx context.Context, cfg config.Config) (store.Store, store.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info().Dur("ttl", cfg.SessionTTL).Msg("using in-memory session store")
		return store.NewMemoryStore(cfg.SessionTTL), nil, func() {}, nil
	}
	rs, err := store.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, store.WithTTL(cfg.SessionTTL))
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis session store")
	return rs, rs.Locker(cfg.RequestTimeout), func() {
		if err := rs.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis")
		}
	}, nil
}
