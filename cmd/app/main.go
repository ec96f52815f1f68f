package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/StudyOwl-Labs/flashdeck-back/internal/ai"
	"github.com/StudyOwl-Labs/flashdeck-back/internal/config"
	"github.com/StudyOwl-Labs/flashdeck-back/internal/db"
	"github.com/StudyOwl-Labs/flashdeck-back/internal/service"
	"github.com/StudyOwl-Labs/flashdeck-back/internal/study"
	"github.com/StudyOwl-Labs/flashdeck-back/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			newLogger,
			db.NewGormClient,
			newGenerator,
			service.NewFlashcards,
			study.NewManager,
			transport.NewHTTPServer,
		),
		fx.Invoke(func(*transport.HTTPServer) {}),
	)
	app.Run()
}

func newLogger() (*zap.SugaredLogger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func newGenerator(cfg *config.Config, logger *zap.SugaredLogger) service.CardGenerator {
	return ai.NewGenerator(cfg, logger)
}
