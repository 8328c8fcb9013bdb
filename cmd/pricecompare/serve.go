package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveFlags = configFlags()

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the scheduled alert evaluation",
		RunE:  serveCommand,
	}
	cobraflags.RegisterMap(cmd, serveFlags)
	return cmd
}

func serveCommand(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, serveFlags[configFlag].GetString())
	defer a.close()
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Errorf("APPLICATION CRASHED: %+v", r)
		}
	}()

	if a.config.AlertCheckInterval > 0 {
		a.logger.Info("Starting alert evaluation with interval:", a.config.AlertCheckInterval)
		go a.server.EvaluateAlertsInInterval(ctx, time.NewTicker(a.config.AlertCheckInterval))
	} else {
		a.logger.Info("Scheduled alert evaluation disabled")
	}

	httpSrv := &http.Server{
		Handler:      a.server.Router(),
		Addr:         a.config.ServerAddress,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("Serving on", httpSrv.Addr)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err = <-errc:
		return errors.Wrap(err, "error serving HTTP")
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = httpSrv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "error shutting down HTTP server")
	}
	return nil
}
