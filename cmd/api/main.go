package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homefix-app/homefix-backend/config"
	"github.com/homefix-app/homefix-backend/internal/bootstrap"
	"github.com/homefix-app/homefix-backend/internal/identity"
	cronjob "github.com/homefix-app/homefix-backend/internal/repair/cron"
	"github.com/homefix-app/homefix-backend/internal/repair/repository"
	"github.com/homefix-app/homefix-backend/internal/repair/sync"
	"github.com/homefix-app/homefix-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	paths := store.Paths{AppID: cfg.Firebase.AppID}

	// Firestore when credentials are configured; otherwise the in-memory
	// store keeps development working without a project.
	var docStore store.Store
	var verifier identity.TokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		authClient, fsClient, err := identity.InitializeFirebase(&cfg.Firebase)
		if err != nil {
			log.Fatalf("firebase: %v", err)
		}
		defer fsClient.Close()
		docStore = store.NewFirestore(fsClient)
		verifier = identity.NewFirebaseVerifier(authClient)
		log.Printf("[info] store=firestore project=%s app=%s", cfg.Firebase.ProjectID, cfg.Firebase.AppID)
	} else {
		docStore = store.NewMemory()
		log.Printf("[warn] store=memory (no FIREBASE_CREDENTIALS_PATH); data is not persisted")
	}

	var bridge *sync.RedisBridge
	if cfg.Redis.Addr != "" {
		redisClient, err := bootstrap.OpenRedis(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		bridge = sync.NewRedisBridge(redisClient, cfg.Firebase.AppID)
		// One publish loop per process; SSE sessions only consume.
		stopPublish := sync.PublishLoop(context.Background(), repository.NewRequestRepo(docStore, paths), bridge)
		defer stopPublish()
		log.Printf("[info] event bridge enabled addr=%s", cfg.Redis.Addr)
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "homefix-backend",
		Version:     cfg.App.Version,
		Store:       docStore,
		Paths:       paths,
		Verifier:    verifier,
		Bridge:      bridge,
		CompanyName: cfg.App.CompanyName,
	})

	digest := cronjob.NewScheduler(
		repository.NewRequestRepo(docStore, paths),
		"0 0 * * * *", // hourly
	)
	digest.Start()
	defer digest.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
