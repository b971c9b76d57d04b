package main

import (
	"context"
	"log"
	"net/http"

	"vergissmeinnicht/internal/config"
	"vergissmeinnicht/internal/dbmongo"
	"vergissmeinnicht/internal/media"
)

func main() {
	cfg := config.LoadConfig()

	mongoClient, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Close(context.Background())

	storage := dbmongo.NewMediaStorage(mongoClient)
	mediaServer := media.NewHTTPServer(storage)

	log.Printf("Media server starting on port %s", cfg.Server.MediaServicePort)
	if err := http.ListenAndServe(":"+cfg.Server.MediaServicePort, mediaServer); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
