package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"roomsizes/config"
	"roomsizes/logging"
	"roomsizes/scheduler"
	"roomsizes/server"
	"roomsizes/services"
	"roomsizes/storage"
	"roomsizes/workers"
)

var (
	digestNow = flag.Bool("digest", false, "Compute one stats digest and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting roomsizes...")

	ctx := context.Background()

	// Postgres holds all domain data (streets, schemas, rooms, submissions)
	pgStore, err := storage.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Database.URL))

	// SQLite keeps the local digest history only
	digestStore, err := storage.NewDigestStore(cfg.Digest.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer digestStore.Close()
	log.Printf("SQLite database: %s", cfg.Digest.DBPath)

	// Analytics events are queued and written by a single background goroutine
	dispatcher := workers.NewDispatcher(pgStore, cfg.Analytics.QueueSize, cfg.Analytics.InsertTimeout)
	go dispatcher.Run()
	log.Println("Analytics dispatcher started")

	searchService := services.NewSearchService(pgStore, dispatcher)
	catalogService := services.NewCatalogService(pgStore, dispatcher, services.NewAssetPolicy(cfg.Assets.AllowedHosts))
	submissionService := services.NewSubmissionService(pgStore, dispatcher)
	analyticsService := services.NewAnalyticsService(pgStore)
	log.Println("Services initialized")

	sched := scheduler.New(cfg.Digest, analyticsService, digestStore)

	if *digestNow {
		log.Println("Computing digest...")
		if err := sched.RunOnce(ctx); err != nil {
			log.Fatalf("Digest failed: %v", err)
		}
		dispatcher.Close(cfg.Server.ShutdownTimeout)
		log.Println("Digest complete!")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	if cfg.Admin.Key == "" {
		log.Println("Warning: ADMIN_KEY not set; admin endpoints are disabled")
	}

	handler := server.NewHandler(
		searchService,
		catalogService,
		submissionService,
		analyticsService,
		digestStore,
		cfg.Admin.Key,
	)
	srv := server.NewServer(cfg.Server, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down...", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}

	sched.Stop()
	dispatcher.Close(cfg.Server.ShutdownTimeout)
	log.Println("Goodbye!")
}

// maskConnectionString masks the password in a connection string for logging.
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
