package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adminkit/adminctl/internal/logging"
)

// App wires the dev backend together and manages its lifecycle.
type App struct {
	config *Config
	logger logging.Logger
	server *Server
}

func NewApp(cfg *Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	srv, err := NewServer([]byte(cfg.SecretKey), cfg.TokenValidityDuration, logger)
	if err != nil {
		return nil, err
	}

	return &App{config: cfg, logger: logger, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the HTTP API until the context is canceled or a termination
// signal arrives, then shuts the listener down gracefully.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting dev backend...", "addr", app.config.Addr)

	app.initSignalHandler(cancelFunc)

	hs := &http.Server{
		Addr:    app.config.Addr,
		Handler: app.server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, err.Error())
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}
}
