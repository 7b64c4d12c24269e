package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"clinic-queue/config"
	"clinic-queue/handlers"
	"clinic-queue/internal/api"
	"clinic-queue/internal/realtime"
	"clinic-queue/internal/session"
	"clinic-queue/models"
	"clinic-queue/security"
	"clinic-queue/services"
	"clinic-queue/utils"
)

func Start() error {
	// Load configuration
	cfg := config.LoadConfig()
	slog.Info("station gateway configuration loaded",
		"environment", cfg.Environment,
		"facility", cfg.FacilityID,
		"counter", cfg.CounterID,
		"pollInterval", cfg.PollInterval,
	)

	// Initialize Redis. The gateway stays up without it: sessions fall back
	// to memory and rate limiting fails open.
	redisClient, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("Redis unavailable, running with in-memory session store: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var sessionStore session.Store
	if redisClient != nil {
		sessionStore = session.NewRedisStore(redisClient)
	} else {
		sessionStore = session.NewMemoryStore(session.Record{FacilityID: cfg.FacilityID})
	}

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey
	if code, err := utils.GenerateCode(8); err == nil {
		pnConfig.UUID = "station-" + code
	}

	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clinic API client and services
	apiClient := api.NewClient(api.ClientConfig{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
	}, sessionStore)

	announcer := services.NewPubNubAnnouncer(pn, cfg.FacilityID)

	counter := resolveCounter(ctx, apiClient, cfg)

	stationService := services.NewStationService(apiClient, sessionStore, announcer, counter,
		services.APISkip(apiClient, sessionStore))

	displayService := services.NewDisplayService(apiClient, announcer, services.DisplayConfig{
		FacilityID:     cfg.FacilityID,
		PollInterval:   cfg.PollInterval,
		DebounceWindow: cfg.DebounceWindow,
	})

	refreshStation := func(ctx context.Context) {
		entries, err := apiClient.ListQueue(ctx, api.QueueFilter{
			FacilityID: cfg.FacilityID,
			CounterID:  cfg.CounterID,
		})
		if err != nil {
			log.Printf("Station queue refresh failed: %v", err)
			return
		}
		stationService.SetEntries(entries)
	}

	// Station refetches coalesce like the display's trigger: at most one
	// pending while another is running, never one goroutine per event.
	stationTrigger := make(chan struct{}, 1)
	subscriber := realtime.NewSubscriber(pn, cfg.FacilityID, func(event string) {
		displayService.Trigger(event)
		select {
		case stationTrigger <- struct{}{}:
		default:
		}
	})

	// Start background tasks
	go displayService.Run(ctx)
	go subscriber.Listen(ctx)
	go stationPollLoop(ctx, cfg.PollInterval, stationTrigger, refreshStation)

	// Setup graceful shutdown
	go handleShutdown(cancel)

	// Initialize handlers
	boardHandler := handlers.NewBoardHandler(displayService, redisClient)
	stationHandler := handlers.NewStationHandler(stationService)
	pharmacyHandler := handlers.NewPharmacyHandler(apiClient, cfg.FacilityID)
	limiter := security.NewRateLimiter(redisClient, cfg.StationRatePerMinute)

	e := echo.New()

	// Public display endpoints
	e.GET("/api/board", boardHandler.GetBoard)

	// Station endpoints
	station := e.Group("/api/station")
	station.Use(limiter.StationRateLimit())
	station.GET("/queue", stationHandler.GetQueue)
	station.POST("/queue/reorder", stationHandler.Reorder)
	station.POST("/patients/:id/serve-now", stationHandler.ServeNow)
	station.POST("/patients/:id/set-next", stationHandler.SetNext)
	station.POST("/patients/:id/serve", stationHandler.Serve)
	station.POST("/patients/:id/wait", stationHandler.Wait)
	station.POST("/patients/:id/next", stationHandler.Next)
	station.POST("/patients/:id/skip", stationHandler.Skip)
	station.POST("/patients/:id/pin", stationHandler.Pin)

	// Pharmacy endpoints
	e.GET("/api/encounters/:id", pharmacyHandler.GetEncounter)
	e.GET("/api/pharmacy/inventory", pharmacyHandler.ListInventory)
	e.POST("/api/pharmacy/inventory/:id/dispense", pharmacyHandler.Dispense)
	e.GET("/api/changelog", pharmacyHandler.ListChangeLog)

	// Health check
	e.GET("/health", boardHandler.Health)

	if cfg.EnableMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	log.Println("Server routes registered")

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	log.Printf("Starting station gateway on :%s (facility=%s counter=%s)", cfg.Port, cfg.FacilityID, cfg.CounterID)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// resolveCounter looks up the configured counter so announcements can name
// it. A failed lookup is not fatal; the station runs with just the id.
func resolveCounter(ctx context.Context, apiClient *api.Client, cfg *config.Config) models.Counter {
	lookupCtx, lookupCancel := context.WithTimeout(ctx, cfg.APITimeout)
	defer lookupCancel()

	counters, err := apiClient.ListCounters(lookupCtx, cfg.FacilityID)
	if err != nil {
		log.Printf("Counter lookup failed, using configured id: %v", err)
		return models.Counter{ID: cfg.CounterID}
	}
	for _, c := range counters {
		if c.ID == cfg.CounterID {
			return c
		}
	}
	if cfg.CounterID != "" {
		log.Printf("Counter %s not found in facility %s", cfg.CounterID, cfg.FacilityID)
	}
	return models.Counter{ID: cfg.CounterID}
}

// stationPollLoop keeps the station's local mirror in sync: a fixed poll
// plus coalesced realtime triggers, one refetch at a time.
func stationPollLoop(ctx context.Context, interval time.Duration, trigger <-chan struct{}, refresh func(context.Context)) {
	if interval <= 0 {
		interval = 3 * time.Second
	}

	refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-trigger:
		}
		refresh(ctx)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
