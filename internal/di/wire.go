//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"vergissmeinnicht/internal/chat/broker"
	"vergissmeinnicht/internal/chat/handler"
	"vergissmeinnicht/internal/chat/repository"
	"vergissmeinnicht/internal/chat/service"
	"vergissmeinnicht/internal/config"
	"vergissmeinnicht/internal/dbmongo"
	"vergissmeinnicht/internal/dbmysql"
	"vergissmeinnicht/internal/user"
)

// InitializeApplication assembles the chat server. Regenerate with
// `wire ./internal/di` after changing providers.
func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		config.LoadConfig,
		dbmysql.NewMySQL,
		provideMongoClient,
		dbmongo.NewMediaStorage,
		provideMediaStore,
		repository.NewStore,
		repository.NewKeyRegistry,
		repository.NewGifCatalog,
		provideValidator,
		service.NewChatService,
		provideRegistry,
		broker.NewBroker,
		user.NewRepository,
		user.NewService,
		handler.NewAPI,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil, nil
}
