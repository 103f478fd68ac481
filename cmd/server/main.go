package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tiketi/config"
	"tiketi/internal/database"
	"tiketi/internal/repository"
	"tiketi/internal/router"
	"tiketi/internal/service"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db, &cfg.Admin)
	database.SeedSettings(db, cfg.Ledger.DefaultFeePercent)

	events, err := service.NewEventPublisher(cfg.Events.NatsURL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	if events != nil {
		log.Printf("[events] publishing ledger events to %s", cfg.Events.NatsURL)
		defer events.Close()
	} else {
		log.Printf("[events] disabled: set TIKETI_NATS_URL to enable")
	}

	engine := router.Setup(cfg, db, events)

	var stopSweep func()
	if cfg.Ledger.SweepInterval > 0 {
		rebuildSvc := service.NewRebuildService(
			db,
			repository.NewLedgerRepository(db),
			repository.NewBookingRepository(db),
			repository.NewWithdrawalRepository(db),
			repository.NewPartnerRepository(db),
			repository.NewAuditLogRepository(db),
			events,
		)
		stopSweep = rebuildSvc.StartSweep(cfg.Ledger.SweepInterval)
		log.Printf("[rebuild] reconciliation sweep every %s", cfg.Ledger.SweepInterval)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	if stopSweep != nil {
		stopSweep()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	log.Println("server stopped")
}
