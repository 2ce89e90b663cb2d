package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/riskibarqy/fantasy-league-activation/internal/app"
	"github.com/riskibarqy/fantasy-league-activation/internal/config"
	"github.com/riskibarqy/fantasy-league-activation/internal/observability"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)

	if _, err := observability.InitUptrace(cfg, logger); err != nil {
		logger.Error("init uptrace", "error", err)
	}

	container, err := app.Build(context.Background(), cfg, logger, app.Options{})
	if err != nil {
		logger.Error("build app", "error", err)
		_ = logger.Sync()
		panic(err)
	}

	lambda.Start(app.NewLambdaHandler(container).Handle)
}
