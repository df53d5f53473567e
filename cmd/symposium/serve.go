package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/krakosik/symposium/internal/client"
	"github.com/krakosik/symposium/internal/controller"
	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/repository"
	"github.com/krakosik/symposium/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveRun(ctx context.Context, cfg dto.Config) error {
	db, err := repository.Open(cfg)
	if err != nil {
		return err
	}
	repositories := repository.NewRepositories(db)

	clients := client.NewClients(cfg)
	defer func() {
		if err := clients.Close(); err != nil {
			logrus.Errorf("Error closing clients: %v", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	services := service.NewServices(repositories, cfg, clients, registry)
	controllers := controller.NewControllers(services, cfg, registry)

	e := controller.NewEcho()
	controllers.Route(e)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logrus.Infof("Listening on %s", cfg.Address())
		serveErr <- e.Start(cfg.Address())
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context(), configFromContext(cmd.Context()))
		},
	}
}
