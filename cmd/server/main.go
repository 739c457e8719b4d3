package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sampark/internal/app/client"
	"sampark/internal/app/client/config"
	"sampark/internal/app/server/api"
	"sampark/internal/utils/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.NewWithFile(cfg.Env, cfg.LogFile)

	app, err := client.New(cfg, log)
	if err != nil {
		log.Error("Не удалось запустить агент", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Start(ctx)
	cfg.Watch(app.Sync().SetInterval)

	srv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           api.New(app, log),
		ReadHeaderTimeout: 5 * time.Second,
		// Потоки событий закрываются вместе с агентом
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Локальный API запущен", "addr", cfg.ListenAddress, "auth", cfg.LocalAPIToken != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Агент остановлен с ошибкой", "error", err)
	}

	app.Shutdown()
}
