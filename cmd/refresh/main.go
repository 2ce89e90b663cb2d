package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskibarqy/fantasy-league-activation/internal/app"
	"github.com/riskibarqy/fantasy-league-activation/internal/config"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
)

func main() {
	platform := flag.String("platform", "", "only refresh leagues of this platform (espn|yahoo)")
	seasonYear := flag.Int("season", 0, "season to refresh, defaults to REFRESH_SEASON or the current season")
	expire := flag.Bool("expire", true, "clear the updated flag of stale leagues before refreshing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "job", "refresh")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.Build(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() { _ = container.Close() }()

	if *expire {
		expired, err := container.Refresh.ExpireStale(ctx, cfg.RefreshStaleAfter)
		if err != nil {
			logger.Error("expire stale leagues", "error", err)
			os.Exit(1)
		}
		logger.Info("stale leagues expired", "count", expired, "stale_after", cfg.RefreshStaleAfter.String())
	}

	season := *seasonYear
	if season == 0 {
		season = cfg.RefreshSeason
	}
	summary, err := container.Refresh.RefreshActive(ctx, usecase.RefreshRequest{
		Platform: league.Platform(*platform),
		Season:   season,
	})
	if err != nil {
		logger.Error("refresh active leagues", "error", err)
		os.Exit(1)
	}
	for _, item := range summary.Failures {
		logger.Warn("league refresh failed",
			"league_id", item.LeagueID,
			"platform", string(item.Platform),
			"status", item.Outcome.Label(),
			"detail", item.Outcome.Detail,
		)
	}
	if summary.Failed > 0 {
		os.Exit(3)
	}
}
