package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timeblind/timeblind-go/internal/api"
	"github.com/timeblind/timeblind-go/internal/store"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", "timeblind.db", "challenge store path")
	sweep := flag.Duration("sweep", 30*time.Second, "expired challenge sweep interval")
	flag.Parse()

	db, err := store.NewSQLiteDB(*dbPath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("migrating store: %v", err)
	}

	server := api.NewServer(db, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go server.SweepExpired(ctx, *sweep)

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown err=%q", err)
		}
	}()

	log.Printf("server_start addr=%s db=%s", *addr, *dbPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
	log.Printf("server_stopped")
}
