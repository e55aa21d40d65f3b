//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/prepnest/prepnest/internal/bootstrap"
	"github.com/prepnest/prepnest/internal/domain/qna"
	"github.com/prepnest/prepnest/internal/domain/users"
	"github.com/prepnest/prepnest/internal/infra/config"
	httpiface "github.com/prepnest/prepnest/internal/interface/http"
	"github.com/prepnest/prepnest/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		newStores,
		provideQuestionRepository,
		provideAnswerRepository,
		provideUserRepository,
		provideRelatedIndex,
		provideClosers,
		provideProfileResolver,
		provideObjectStorage,
		provideEmbedder,
		provideQnAConfig,
		provideUsersConfig,
		users.NewService,
		qna.NewService,
		httpiface.NewQnAHandler,
		httpiface.NewAuthHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
