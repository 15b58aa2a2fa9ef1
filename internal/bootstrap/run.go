package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// Worker is a long-running loop that returns once ctx is cancelled.
type Worker func(ctx context.Context) error

// Run serves srv and runs workers until SIGINT/SIGTERM or until one of them
// fails. Workers finish their in-flight unit of work before returning, so
// the resources in App are still open while they drain.
func (a *App) Run(ctx context.Context, srv *http.Server, workers ...Worker) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.Logger.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), a.Config.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	for _, w := range workers {
		g.Go(func() error { return w(gCtx) })
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	a.Logger.Info().Err(err).Msg("Stopped")
	return err
}
