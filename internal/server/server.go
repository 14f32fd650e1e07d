package server

import (
	"context"
	"net/http"
	"time"

	"aircheck/internal/catalog"
	"aircheck/internal/config"
	"aircheck/internal/media"
	"aircheck/internal/ngrok"
	"aircheck/internal/session"
	"aircheck/internal/sheets"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// MapServer serves the station map: catalog endpoints, per-session selection
// and playback state, and locally hosted audio clips.
type MapServer struct {
	config       *config.Config
	catalog      *catalog.Catalog
	loader       *sheets.Loader
	sessions     *session.Manager
	prober       *media.Prober
	ngrokService *ngrok.Service
	watcher      *fsnotify.Watcher
	logger       *logrus.Logger
	httpServer   *http.Server
}

// NewMapServer creates a new map server instance
func NewMapServer(cfg *config.Config, logger *logrus.Logger) (*MapServer, error) {
	// Pick the tab source: a local data directory wins over the network.
	var source sheets.Source
	if cfg.Sheets.DataDir != "" {
		source = sheets.NewDirSource(cfg.Sheets.DataDir)
	} else {
		source = sheets.NewHTTPSource(cfg.Sheets.BaseURL, cfg.FetchTimeoutDuration())
	}

	cat := catalog.New()

	// Create ngrok service
	ngrokSvc, err := ngrok.NewService(&cfg.Ngrok)
	if err != nil {
		logger.WithError(err).Warn("Ngrok service not available")
		ngrokSvc = nil
	}

	ms := &MapServer{
		config:       cfg,
		catalog:      cat,
		loader:       sheets.NewLoader(source, logger),
		sessions:     session.NewManager(cat, cfg, logger),
		prober:       media.NewProber(cfg.Clips.SupportedFormats, logger),
		ngrokService: ngrokSvc,
		logger:       logger,
	}

	return ms, nil
}

// LoadCatalog fetches every tab, waits for the join, and swaps the
// transformed result into the catalog. A failure leaves the current catalog
// untouched; at startup that means the page shell serves with no content.
func (ms *MapServer) LoadCatalog(ctx context.Context) error {
	tables, err := ms.loader.LoadAll(ctx, ms.config.AllTabs())
	if err != nil {
		return err
	}

	roster, dates := catalog.Transform(tables, ms.config, ms.logger)
	ms.catalog.Replace(roster, dates, ms.config.Sheets.DateTabs)

	ms.logger.WithFields(logrus.Fields{
		"stations": len(roster),
		"dates":    len(dates),
	}).Info("Catalog loaded")
	return nil
}

// Start starts the map server
func (ms *MapServer) Start() {
	// Start data directory watcher if enabled
	if ms.config.Sheets.DataDir != "" && ms.config.Sheets.WatchDataDir {
		if err := ms.startDataWatcher(); err != nil {
			ms.logger.WithError(err).Warn("Could not start data watcher")
		} else {
			defer ms.stopDataWatcher()
		}
	}

	ms.sessions.StartCleanup()
	defer ms.sessions.StopCleanup()

	handler := ms.setupRoutes()

	localAddress := "http://" + ms.config.GetAddress()

	ms.logger.WithField("port", ms.config.Server.Port).Info("Aircheck server starting")
	ms.logger.WithFields(logrus.Fields{
		"stations": len(ms.catalog.Roster()),
		"dates":    len(ms.catalog.DateOrder()),
	}).Info("Serving catalog")
	ms.logger.WithField("address", localAddress).Info("Local access")

	// Start ngrok tunnel if enabled
	if ms.ngrokService != nil {
		ctx := context.Background()
		if err := ms.ngrokService.StartTunnel(ctx, localAddress); err != nil {
			ms.logger.WithError(err).Warn("Could not start ngrok tunnel")
		} else {
			defer ms.ngrokService.Stop()
		}
	}

	ms.httpServer = &http.Server{
		Addr:        ms.config.GetAddress(),
		Handler:     handler,
		ReadTimeout: time.Duration(ms.config.Server.ReadTimeout) * time.Second,
	}

	if err := ms.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ms.logger.WithError(err).Fatal("Server failed to start")
	}
}

func (ms *MapServer) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", ms.handleHome)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(ms.config.Server.StaticDir))))
	mux.HandleFunc("/health", ms.handleHealthCheck)

	// Catalog routes
	mux.HandleFunc("/api/stations", ms.handleGetStations)
	mux.HandleFunc("/api/dates", ms.handleGetDates)

	// Session routes
	mux.HandleFunc("/api/session", ms.handleCreateSession)
	mux.HandleFunc("/api/session/acknowledge", ms.handleAcknowledge)

	// Selection routes
	mux.HandleFunc("/api/selection", ms.handleGetSelection)
	mux.HandleFunc("/api/selection/date", ms.handleSetDate)
	mux.HandleFunc("/api/selection/station", ms.handleSelectStation)

	// Player routes
	mux.HandleFunc("/api/player/state", ms.handleGetPlayerState)
	mux.HandleFunc("/api/player/toggle", ms.handlePlayerToggle)
	mux.HandleFunc("/api/player/seek", ms.handlePlayerSeek)
	mux.HandleFunc("/api/player/volume", ms.handlePlayerVolume)
	mux.HandleFunc("/api/player/mute", ms.handlePlayerMute)
	mux.HandleFunc("/api/player/events", ms.handlePlayerEvents)

	// Clip streaming
	mux.HandleFunc("/clips/", ms.handleClip)

	return ms.requestLoggingMiddleware(ms.corsMiddleware(ms.panicRecoveryMiddleware(mux)))
}

// Shutdown gracefully shuts down the map server
func (ms *MapServer) Shutdown() {
	ms.logger.Info("Shutting down map server...")

	ms.stopDataWatcher()

	if ms.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ms.httpServer.Shutdown(ctx); err != nil {
			ms.logger.WithError(err).Warn("HTTP server shutdown error")
		}
	}

	ms.logger.Info("Map server shutdown complete")
}
