package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-list-api/app/config"
	"todo-list-api/app/controllers"
	"todo-list-api/app/logger"
	"todo-list-api/app/routes"

	"github.com/charmbracelet/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal("server stopped", "err", err)
	}
}

func run(args []string) error {
	cfg, err := config.Load(flag.NewFlagSet("todo", flag.ExitOnError), args)
	if err != nil {
		return err
	}
	l := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the item store
	store, err := config.OpenStore(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			l.Error("closing store", "err", err)
		}
	}()

	// Initialize the controller layer
	itemController := controllers.NewItemController(store, l)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      routes.NewRouter(itemController, l),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("server is running", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	l.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
