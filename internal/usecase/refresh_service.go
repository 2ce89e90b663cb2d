package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
)

type RefreshRequest struct {
	Platform league.Platform
	Season   int
}

type RefreshItem struct {
	LeagueID string
	Platform league.Platform
	Outcome  Outcome
}

type RefreshSummary struct {
	Season    int
	Processed int
	Succeeded int
	Failed    int
	Failures  []RefreshItem
}

type RefreshConfig struct {
	Workers  int
	Now      func() time.Time
	Logger   *logging.Logger
	Recorder Recorder
}

// RefreshService re-processes the current season of every active league.
type RefreshService struct {
	leagues    league.Repository
	activation *ActivationService
	workers    int
	now        func() time.Time
	logger     *logging.Logger
	recorder   Recorder
}

func NewRefreshService(leagues league.Repository, activation *ActivationService, cfg RefreshConfig) *RefreshService {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = NopRecorder{}
	}
	return &RefreshService{
		leagues:    leagues,
		activation: activation,
		workers:    cfg.Workers,
		now:        cfg.Now,
		logger:     cfg.Logger,
		recorder:   cfg.Recorder,
	}
}

func (s *RefreshService) RefreshActive(ctx context.Context, req RefreshRequest) (RefreshSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshService.RefreshActive")
	defer span.End()

	if req.Platform != "" {
		platform, err := league.ParsePlatform(string(req.Platform))
		if err != nil {
			return RefreshSummary{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		req.Platform = platform
	}
	if req.Season <= 0 {
		req.Season = CurrentSeason(s.now())
	}

	leagues, err := s.leagues.ListActive(ctx, req.Platform)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("list active leagues: %w", err)
	}

	summary := RefreshSummary{Season: req.Season}
	if len(leagues) == 0 {
		return summary, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
	)
	record := func(item RefreshItem) {
		mu.Lock()
		defer mu.Unlock()
		summary.Processed++
		if item.Outcome.IsActive() {
			summary.Succeeded++
			return
		}
		summary.Failed++
		summary.Failures = append(summary.Failures, item)
	}

	for _, lg := range leagues {
		lg := lg
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			item := RefreshItem{LeagueID: lg.LeagueID, Platform: lg.Platform}
			var catcher panics.Catcher
			catcher.Try(func() {
				item.Outcome = s.activation.Refresh(ctx, lg, req.Season).Outcome
			})
			if recovered := catcher.Recovered(); recovered != nil {
				s.logger.ErrorContext(ctx, "league refresh panicked", "league_id", lg.LeagueID, "panic", recovered.String())
				item.Outcome = Failed(fmt.Sprintf("panic: %v", recovered.Value))
			}
			record(item)
		}); err != nil {
			workers.Done()
			return RefreshSummary{}, fmt.Errorf("submit refresh to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.SliceStable(summary.Failures, func(i, j int) bool {
		if summary.Failures[i].Platform != summary.Failures[j].Platform {
			return summary.Failures[i].Platform < summary.Failures[j].Platform
		}
		return summary.Failures[i].LeagueID < summary.Failures[j].LeagueID
	})

	s.recorder.ObserveRefresh(summary.Processed, summary.Failed)
	s.logger.InfoContext(ctx, "active leagues refreshed",
		"season", summary.Season,
		"processed", summary.Processed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return summary, nil
}

// ExpireStale clears the updated flag of leagues last refreshed before
// now - staleAfter so the next activation reprocesses them.
func (s *RefreshService) ExpireStale(ctx context.Context, staleAfter time.Duration) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshService.ExpireStale")
	defer span.End()

	if staleAfter <= 0 {
		return 0, fmt.Errorf("%w: stale window must be > 0", ErrInvalidInput)
	}

	rows, err := s.leagues.ExpireUpdated(ctx, s.now().Add(-staleAfter))
	if err != nil {
		return 0, fmt.Errorf("expire stale leagues: %w", err)
	}
	s.logger.InfoContext(ctx, "stale leagues expired", "rows", rows, "stale_after", staleAfter.String())
	return rows, nil
}
