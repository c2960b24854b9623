package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appgame "pick-derby/internal/app/game"
	"pick-derby/internal/config"
	"pick-derby/internal/logging"
	"pick-derby/internal/oracle"
	"pick-derby/internal/scheduler"
	"pick-derby/internal/store"
	httptransport "pick-derby/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	game, err := cfg.Game.Build()
	if err != nil {
		log.Fatal().Err(err).Msg("game config invalid")
	}

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	feed := newFeed(cfg.Game)
	svc, err := appgame.New(context.Background(), game, st, feed, time.Now().UTC())
	if err != nil {
		log.Fatal().Err(err).Msg("service init failed")
	}

	sched, err := scheduler.New(cfg.Server.ResolveCron, func(ctx context.Context) error {
		_, err := svc.ResolveDue(ctx)
		return err
	})
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler init failed")
	}
	sched.Start()

	r := httptransport.NewRouter(svc, st, cfg.Server)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	<-sched.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}

// newFeed wires the oracle. The engine only needs the Feed interface;
// deployments point ORACLE_SNAPSHOT_FILE at a JSON fixture written by
// whatever observation pipeline sits upstream.
func newFeed(cfg config.GameConfig) oracle.Feed {
	feed, err := oracle.NewFileFeed(cfg.OracleSnapshotFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.OracleSnapshotFile).Msg("oracle feed init failed")
	}
	return feed
}
