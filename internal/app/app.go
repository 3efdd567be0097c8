package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/mcptools"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/session"
)

const shutdownTimeout = time.Second * 30

type Options struct {
	Version    string
	SessionTTL time.Duration
	BasePath   string
	// CorsOrigins restricts cross origin requests; any origin when empty.
	CorsOrigins []string
}

type App struct {
	logger   *logrus.Logger
	router   *http.ServeMux
	registry *session.Registry
	jwt      *config.JWT
	ws       *config.WebSocket
	mcp      *mcptools.Server
	basePath string
	origins  []string
}

// New reads the environment driven config and builds the game registry.
// Close releases the registry's sweeper.
func New(logger *logrus.Logger, opts Options) (*App, error) {
	table, err := config.NewDifficultyTable()
	if err != nil {
		return nil, err
	}

	jwt, err := config.NewJWT()
	if err != nil {
		return nil, err
	}

	ws, err := config.NewWebSocket()
	if err != nil {
		return nil, err
	}

	registry := session.NewRegistry(session.Options{
		Table:  table,
		TTL:    opts.SessionTTL,
		Logger: logger,
	})

	app := &App{
		logger:   logger,
		router:   http.NewServeMux(),
		registry: registry,
		jwt:      jwt,
		ws:       ws,
		mcp:      mcptools.New(logger, registry, jwt, opts.Version),
		basePath: opts.BasePath,
		origins:  opts.CorsOrigins,
	}
	app.loadRoutes()

	return app, nil
}

func (a *App) Close() {
	a.registry.Close()
}

func (a *App) MCP() *mcptools.Server {
	return a.mcp
}

func (a *App) Handler() http.Handler {
	var handler http.Handler = a.router
	if a.basePath != "" {
		handler = http.StripPrefix(a.basePath, handler)
	}
	return middleware.Wrap(
		handler,
		middleware.Cors(a.origins...),
		middleware.Logging(a.logger),
	)
}

// Start serves on addr until ctx is done, then shuts down gracefully.
func (a *App) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: a.Handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.logger.WithField("addr", addr).Info("server listening")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
