// Package di assembles the application graph. Shared providers live here;
// wire_gen.go carries the generated injector.
package di

import (
	"context"
	"log"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"vergissmeinnicht/internal/chat/broker"
	"vergissmeinnicht/internal/chat/handler"
	"vergissmeinnicht/internal/chat/service"
	"vergissmeinnicht/internal/chat/validator"
	"vergissmeinnicht/internal/config"
	"vergissmeinnicht/internal/dbmongo"
)

// Application is the fully wired chat server.
type Application struct {
	Config *config.Config
	DB     *gorm.DB
	API    *handler.API
	Broker *broker.Broker
}

func (a *Application) Router() *mux.Router {
	return a.API.Router()
}

func provideValidator(cfg *config.Config) *validator.Validator {
	return validator.New(cfg.Chat.MaxMediaBytes)
}

func provideMongoClient(cfg *config.Config) (*dbmongo.MongoClient, func(), error) {
	client, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(ctx); err != nil {
			log.Printf("mongodb close: %v", err)
		}
	}
	return client, cleanup, nil
}

func provideMediaStore(storage *dbmongo.MediaStorage) service.MediaStore {
	return storage
}

// provideRegistry picks the fan-out backend: a Redis bridge when clustering
// is enabled, otherwise the in-process registry.
func provideRegistry(cfg *config.Config) (broker.GroupRegistry, func()) {
	if !cfg.Redis.Enabled {
		return broker.NewMemoryRegistry(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	registry := broker.NewRedisRegistry(rdb)
	cleanup := func() {
		if err := rdb.Close(); err != nil {
			log.Printf("redis close: %v", err)
		}
	}
	return registry, cleanup
}
