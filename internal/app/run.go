package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func (a *App) runServices(ctx context.Context, deps *Dependencies) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("starting http server", "addr", deps.HTTPServer.Addr)
		if err := deps.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	if deps.TelegramPoller != nil {
		g.Go(func() error {
			// Снимаем webhook перед long polling, иначе Telegram вернёт 409
			if err := deps.TelegramPoller.DeleteWebhook(gCtx); err != nil {
				a.Log.Warn("failed to delete webhook before polling", "error", err)
			}
			return deps.TelegramPoller.Start(gCtx)
		})
	}

	g.Go(func() error {
		return deps.Notifier.Start(gCtx)
	})

	if err := deps.JobScheduler.Start(gCtx); err != nil {
		return fmt.Errorf("failed to start job scheduler: %w", err)
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.Log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := deps.HTTPServer.Shutdown(shutdownCtx); err != nil {
			a.Log.Error("http server shutdown error", "error", err)
		}

		if deps.EventProducer != nil {
			if err := deps.EventProducer.Close(); err != nil {
				a.Log.Error("kafka producer close error", "error", err)
			}
		}

		if deps.Cache != nil {
			if err := deps.Cache.Close(); err != nil {
				a.Log.Error("cache close error", "error", err)
			}
		}

		if err := deps.DB.Close(); err != nil {
			a.Log.Error("postgres close error", "error", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("service error: %w", err)
	}

	a.Log.Info("stopped gracefully")
	return nil
}
