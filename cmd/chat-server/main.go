package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vergissmeinnicht/internal/dbmysql"
	"vergissmeinnicht/internal/di"
)

func main() {
	log.Println("Starting Chat Server...")

	app, cleanup, err := di.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize chat server: %v", err)
	}
	defer cleanup()

	// Migrations run in main, not in the connection layer.
	if err := dbmysql.Migrate(app.DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	srv := &http.Server{
		Addr:         ":" + app.Config.Server.ChatServicePort,
		Handler:      app.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections outlive any write timeout
	}

	go func() {
		log.Printf("Chat Server running on port %s", app.Config.Server.ChatServicePort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Chat Server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Chat Server stopped")
}
