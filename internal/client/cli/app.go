// Package cli wires the client together and drives it from an interactive
// prompt: login, onboarding, sync, availability, sign-out.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/coffyapp/coffy-client/internal/client/api"
	"github.com/coffyapp/coffy-client/internal/client/config"
	"github.com/coffyapp/coffy-client/internal/client/repositories/cache"
	"github.com/coffyapp/coffy-client/internal/client/services"
	"github.com/coffyapp/coffy-client/internal/client/session"
	"github.com/coffyapp/coffy-client/internal/logging"
	"github.com/coffyapp/coffy-client/internal/netx"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config       *config.Config
	store        *session.Store
	orchestrator *services.Orchestrator
	apiClient    api.Client
	log          logging.Logger
	Mode         Mode
	reader       *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	repo, err := cache.NewRepository(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing cache backend", "error", err)
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.ServerEndpointAddr, netx.NewClient(log), c.RequestTimeout, c.CheckTimeout)
	store := session.NewStore(repo, log)
	resolver := services.NewResolver(apiClient, repo, log)
	orchestrator := services.NewOrchestrator(store, resolver, apiClient, repo, log)

	return &App{
		config:       c,
		store:        store,
		orchestrator: orchestrator,
		apiClient:    apiClient,
		log:          log,
		reader:       bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.store.Snapshot()
	return ok
}

// StartOnlineStatusWatcher probes the backend on a ticker and flips the
// online/offline mode accordingly.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.apiClient.Ping(ctx); err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}
		case <-ctx.Done():
			return
		}
	}
}
