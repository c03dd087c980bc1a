package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"econnect/config"
	"econnect/internal/conference"
	"econnect/internal/conference/jitsi"
	"econnect/internal/handlers"
	"econnect/internal/storage"
	"econnect/monitoring"
	"econnect/security"
	"econnect/services"
	"econnect/utils"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the conference engine
	registry := conference.NewEngineRegistry(conference.NewFactory())
	if err := registry.RegisterEngine(ctx, conference.EngineJitsi, &jitsi.Config{
		Domain:       cfg.ConferenceDomain,
		JWTSecret:    cfg.JWTSecret,
		PublishKey:   cfg.PubNubPublishKey,
		SubscribeKey: cfg.PubNubSubscribeKey,
		SecretKey:    cfg.PubNubSecretKey,
	}); err != nil {
		return err
	}
	engine, err := registry.GetPrimaryEngine()
	if err != nil {
		return err
	}
	sessionManager := conference.NewManager(engine)

	// Initialize blob storage
	blobs, err := storage.New(&storage.Config{
		Backend:        storage.Provider(cfg.StorageBackend),
		BaseURL:        cfg.StorageBaseURL,
		Dir:            cfg.StorageDir,
		Bucket:         cfg.S3Bucket,
		Region:         cfg.S3Region,
		Endpoint:       cfg.S3Endpoint,
		AccessKey:      cfg.S3AccessKey,
		Secret:         cfg.S3Secret,
		ForcePathStyle: cfg.S3ForcePathStyle,
	})
	if err != nil {
		return err
	}

	// Metrics are served on a dedicated listener.
	var monitor services.Monitor
	if cfg.EnableMetrics {
		monitor = monitoring.NewMonitor(redisClient, cfg.PresenceUpdate)
		go serveMetrics(cfg.MetricsPort)
	}

	// Initialize services
	store := services.NewRecordStore(app)
	tokenService := services.NewTokenService(cfg)
	eventService := services.NewEventService(store)
	sessionService := services.NewSessionService(store, redisClient, pn, cfg, monitor)
	presenceService := services.NewPresenceService(store, redisClient, pn, cfg)
	recordingService := services.NewRecordingService(store, blobs, tokenService, cfg, monitor)
	marketplaceService := services.NewMarketplaceService(store)

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(app, eventService)
	sessionHandler := handlers.NewSessionHandler(app, sessionService, tokenService, presenceService)
	tableHandler := handlers.NewTableHandler(app, presenceService)
	recordingHandler := handlers.NewRecordingHandler(app, recordingService, sessionManager)
	tokenHandler := handlers.NewTokenHandler(app, tokenService, sessionService, sessionManager)
	serviceHandler := handlers.NewServiceHandler(app, marketplaceService)

	rateLimiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Setup graceful shutdown
	go handleShutdown(cancel, sessionManager)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		syncLiveEventsToRedis(app, redisClient)

		api := e.Router.Group("/api/v1")
		api.BindFunc(rateLimiter.AntiBot(), rateLimiter.RateLimit())

		// Event endpoints
		api.POST("/events", eventHandler.CreateEvent)
		api.GET("/events", eventHandler.ListEvents)
		api.GET("/events/{eventId}", eventHandler.GetEvent)
		api.POST("/events/join", eventHandler.JoinEvent)
		api.POST("/events/leave", eventHandler.LeaveEvent)

		// Meeting lifecycle endpoints
		api.POST("/meetings/join", sessionHandler.JoinMeeting)
		api.POST("/meetings/leave", sessionHandler.LeaveMeeting)
		api.GET("/meetings/{roomName}", sessionHandler.GetMeeting)

		// Virtual table endpoints
		api.GET("/events/{eventId}/tables", tableHandler.ListTables)
		api.POST("/tables", tableHandler.CreateTable)
		api.POST("/tables/join", tableHandler.JoinTable)
		api.POST("/tables/leave", tableHandler.LeaveTable)
		api.POST("/broadcast/start", tableHandler.StartBroadcast)
		api.POST("/broadcast/end", tableHandler.EndBroadcast)

		// Recording endpoints
		api.POST("/recordings/start", recordingHandler.StartRecording)
		api.POST("/recordings/stop", recordingHandler.StopRecording)
		api.POST("/recordings/upload", recordingHandler.UploadRecording)
		api.GET("/events/{eventId}/recordings", recordingHandler.ListRecordings)
		api.DELETE("/recordings/{recordingId}", recordingHandler.DeleteRecording)
		api.GET("/recordings/{recordingId}/download", recordingHandler.GetDownloadURL)

		// Token and room endpoints
		api.POST("/tokens", tokenHandler.IssueToken)
		api.POST("/rooms/open", tokenHandler.OpenRoom)
		api.POST("/rooms/close", tokenHandler.CloseRoom)

		// Marketplace endpoints
		api.POST("/services", serviceHandler.CreateService)
		api.GET("/services", serviceHandler.ListServices)
		api.DELETE("/services/{serviceId}", serviceHandler.DeleteService)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		setupEventHooks(app, redisClient)

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("Metrics listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("metrics server", "error", err)
	}
}

// syncLiveEventsToRedis seeds the live_events set from the database so
// broadcast and presence checks survive restarts.
func syncLiveEventsToRedis(app *pocketbase.PocketBase, redisClient *redis.Client) {
	ctx := context.Background()

	var records []dbx.NullStringMap
	if err := app.DB().NewQuery(
		"SELECT id FROM events WHERE end_time > datetime('now') OR end_time = ''",
	).All(&records); err != nil {
		log.Printf("Error fetching live events: %v", err)
		return
	}

	redisClient.Del(ctx, "live_events")

	if len(records) > 0 {
		var eventIDs []interface{}
		for _, record := range records {
			if id := record["id"].String; id != "" {
				eventIDs = append(eventIDs, id)
			}
		}

		if len(eventIDs) > 0 {
			redisClient.SAdd(ctx, "live_events", eventIDs...)
			log.Printf("Synced %d live events to Redis", len(eventIDs))
		}
	}
}

func setupEventHooks(app *pocketbase.PocketBase, redisClient *redis.Client) {
	app.OnRecordCreateRequest("events").BindFunc(func(e *core.RecordRequestEvent) error {
		ctx := e.Request.Context()

		if err := redisClient.SAdd(ctx, "live_events", e.Record.Id).Err(); err != nil {
			slog.Error("add live event to redis", "eventID", e.Record.Id, "error", err)
			// Redis sync failures never block the request.
			return e.Next()
		}
		slog.Info("added live event to redis", "eventID", e.Record.Id)
		return e.Next()
	})

	app.OnRecordDeleteRequest("events").BindFunc(func(e *core.RecordRequestEvent) error {
		ctx := e.Request.Context()

		if err := redisClient.SRem(ctx, "live_events", e.Record.Id).Err(); err != nil {
			slog.Error("remove live event from redis", "eventID", e.Record.Id, "error", err)
			return e.Next()
		}

		// Drop the broadcast flag with the event.
		redisClient.Del(ctx, "broadcast:"+e.Record.Id)
		return e.Next()
	})
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc, sessionManager *conference.Manager) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := sessionManager.Shutdown(shutdownCtx); err != nil {
		slog.Error("session manager shutdown", "error", err)
	}

	cancel()
}
