package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"festivalpulse/internal/config"
	apierrors "festivalpulse/internal/errors"
	"festivalpulse/internal/infrastructure"
	custommw "festivalpulse/internal/middleware"
	"festivalpulse/internal/services"
	"festivalpulse/internal/session"
	transporthttp "festivalpulse/internal/transport/http"
	ws "festivalpulse/internal/websocket"
)

const (
	// AppName is the application display name
	AppName = "FestivalPulse"

	// Version is the application version, overridable at build time
	Version = "1.0.0"
)

// BuildTime is set at build time via ldflags
var BuildTime = ""

// Application wires configuration, services, transport and
// observability together and owns the server lifecycle.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	Store            *session.Store
	Hub              *ws.Hub
	DashboardService *services.DashboardService
	HealthService    *services.HealthService

	Router chi.Router
	Server *http.Server

	FrontendFS fs.FS

	serverGroup   *errgroup.Group
	janitorCancel context.CancelFunc
}

// NewApplication builds a fully wired application. frontendFS serves
// the embedded dashboard UI; pass nil to disable static serving.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize opentelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		FrontendFS:    frontendFS,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() {
	a.Store = session.NewStore(a.Config.Session.TTL, a.Logger)
	a.Hub = ws.NewHub(a.Logger)

	a.DashboardService = services.NewDashboardService(a.Config, a.Store, a.Logger)
	a.HealthService = services.NewHealthService(Version, BuildTime, a.Store, a.Hub, a.Logger)
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware that won't interfere with WebSocket upgrades
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	r.With(custommw.WebSocketTraceMiddleware(a.Logger)).HandleFunc("/ws", a.handleWebSocket)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := custommw.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("failed to create OpenTelemetry middleware",
				slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
			a.DashboardService.SetMetrics(otelMiddleware.Metrics())
		}

		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(custommw.CORS(custommw.CORSConfig{
				AllowedOrigins:   a.Config.Security.AllowedOrigins,
				AllowCredentials: true,
				Logger:           a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupFrontend(r)
	})

	// Prometheus endpoint stays outside the middleware group
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	r.Route("/api", func(r chi.Router) {
		r.Use(custommw.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler := transporthttp.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())

		dashboardHandler := transporthttp.NewDashboardHandler(
			a.DashboardService,
			a.Hub,
			a.Logger,
			errorHandler,
			a.Config.Upload.MaxUploadSize,
			a.Config.Charts.DefaultTopN,
		)
		r.Mount("/", dashboardHandler.Routes())

		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)
	})
}

func (a *Application) setupFrontend(r chi.Router) {
	if a.FrontendFS == nil {
		return
	}

	fileServer := http.FileServer(http.FS(a.FrontendFS))
	r.Handle("/*", fileServer)
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the application and its background services
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Hub.Start()

	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	a.janitorCancel = janitorCancel
	a.Store.StartJanitor(janitorCtx)

	a.serverGroup, _ = errgroup.WithContext(ctx)
	a.serverGroup.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
			return err
		}
		return nil
	})

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	// Wait for the listener goroutine before tearing anything else down.
	if a.serverGroup != nil {
		if err := a.serverGroup.Wait(); err != nil {
			a.Logger.ErrorContext(ctx, "server exited with error",
				slog.String("error", err.Error()))
		}
	}

	if a.janitorCancel != nil {
		a.janitorCancel()
	}
	a.Hub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

// handleWebSocket upgrades the connection and hands it to the hub
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = fmt.Sprintf("ws-%d", time.Now().UnixNano())
	}

	ctx := infrastructure.WithTraceID(r.Context(), reqID)
	a.Logger.InfoContext(ctx, "websocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range a.Config.Security.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			a.Logger.WarnContext(ctx, "websocket origin rejected",
				slog.String("origin", origin))
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.ErrorContext(ctx, "websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	ws.ServeWS(a.Hub, conn, reqID)
}
