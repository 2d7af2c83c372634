package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adminkit/adminctl/internal/client/api"
	"github.com/adminkit/adminctl/internal/client/config"
	"github.com/adminkit/adminctl/internal/client/guard"
	"github.com/adminkit/adminctl/internal/client/services"
	"github.com/adminkit/adminctl/internal/client/session"
	"github.com/adminkit/adminctl/internal/client/upload"
	"github.com/adminkit/adminctl/internal/filex"
	"github.com/adminkit/adminctl/internal/logging"

	"github.com/adminkit/adminctl/internal/client/repositories/state"
)

// App is the composition root of the console: it owns the single instances
// of the session store, the transport client and the services, and exposes
// the command handlers the REPL dispatches to.
type App struct {
	config   *config.Config
	auth     services.AuthService
	users    services.UserService
	uploader upload.Uploader
	store    *session.Store
	logger   logging.Logger
	reader   *bufio.Reader
}

// NewApp builds the full object graph from cfg.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	slogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(slogger)

	dbPath := cfg.StateDBPath
	if !filepath.IsAbs(dbPath) && filepath.Dir(dbPath) == "." {
		dir, err := filex.EnsureSubDir("data")
		if err != nil {
			return nil, fmt.Errorf("init data dir: %w", err)
		}
		dbPath = filepath.Join(dir, dbPath)
	}

	db, err := state.InitDatabase(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("init state database: %w", err)
	}

	store := session.NewStore(db)
	apiClient := api.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout, store.Token)

	var uploader upload.Uploader
	switch cfg.UploadBackend {
	case "s3":
		uploader, err = upload.NewS3Uploader(ctx, cfg.S3Bucket)
		if err != nil {
			return nil, err
		}
	default:
		uploader = upload.NewChunkUploader(cfg.UploadEndpoint, cfg.RequestTimeout,
			upload.WithTokenSource(store.Token))
	}

	return &App{
		config:   cfg,
		auth:     services.NewAuthService(apiClient, store, logger),
		users:    services.NewUserService(apiClient),
		uploader: uploader,
		store:    store,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores a persisted session and hands control to the REPL. It
// returns when the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.auth.Close(ctx) }()

	if err := a.auth.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
	}
	if snap := a.store.Get(); snap.Authenticated() {
		printlnFn(fmt.Sprintf("Session restored for %s", snap.User.Email))
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

// status renders the prompt suffix: the signed-in identity, if any.
func (a *App) status() string {
	snap := a.store.Get()
	if !snap.Authenticated() {
		return ""
	}
	return fmt.Sprintf("(%s)", snap.User.Email)
}

func (a *App) loggedIn() bool {
	return guard.Allowed(a.store)
}
