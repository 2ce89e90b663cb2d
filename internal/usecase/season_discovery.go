package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/resilience"
)

const (
	DefaultDiscoveryMaxMisses = 4
	DefaultDiscoveryFloor     = 2000
)

type DiscoveryConfig struct {
	MaxMisses int
	Floor     int
	Logger    *logging.Logger
	Recorder  Recorder
}

// SeasonDiscovery walks backward from a start season to find every season a
// league has data for.
type SeasonDiscovery struct {
	maxMisses int
	floor     int
	logger    *logging.Logger
	recorder  Recorder
}

type DiscoveryRequest struct {
	LeagueID    string
	Credential  league.Credential
	StartSeason int
}

type DiscoveryResult struct {
	// Seasons is sorted ascending.
	Seasons []int
	Probes  int
}

func NewSeasonDiscovery(cfg DiscoveryConfig) *SeasonDiscovery {
	if cfg.MaxMisses < 1 {
		cfg.MaxMisses = DefaultDiscoveryMaxMisses
	}
	if cfg.Floor <= 0 {
		cfg.Floor = DefaultDiscoveryFloor
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = NopRecorder{}
	}
	return &SeasonDiscovery{
		maxMisses: cfg.MaxMisses,
		floor:     cfg.Floor,
		logger:    cfg.Logger,
		recorder:  cfg.Recorder,
	}
}

// Discover returns an empty result when no season answers. An unauthorized
// probe aborts the walk and is returned.
func (d *SeasonDiscovery) Discover(ctx context.Context, source PlatformSource, req DiscoveryRequest) (DiscoveryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonDiscovery.Discover")
	defer span.End()

	req.LeagueID = strings.TrimSpace(req.LeagueID)
	if req.LeagueID == "" {
		return DiscoveryResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if req.StartSeason <= 0 {
		return DiscoveryResult{}, fmt.Errorf("%w: start season must be > 0", ErrInvalidInput)
	}

	platform := string(source.Platform())
	walk := resilience.DescendingWalk{
		Start:     req.StartSeason,
		Floor:     d.floor,
		MaxMisses: d.maxMisses,
		Probe: func(ctx context.Context, candidate int) error {
			err := source.Probe(ctx, SeasonRequest{LeagueID: req.LeagueID, Season: candidate, Credential: req.Credential})
			d.recorder.ObserveProbe(platform, err == nil)
			d.logger.DebugContext(ctx, "season probe",
				"league_id", req.LeagueID,
				"platform", platform,
				"season", candidate,
				"hit", err == nil,
				"reason", probeReason(err),
			)
			return err
		},
		Classify: classifyProbe,
	}

	walked, err := walk.Run(ctx)
	if err != nil {
		return DiscoveryResult{Probes: walked.Probes}, fmt.Errorf("discover seasons league=%s: %w", req.LeagueID, err)
	}

	seasons := append([]int(nil), walked.Hits...)
	sort.Ints(seasons)
	return DiscoveryResult{Seasons: seasons, Probes: walked.Probes}, nil
}

func classifyProbe(err error) resilience.ProbeVerdict {
	if errors.Is(err, context.Canceled) || FetchReasonOf(err) == ReasonUnauthorized {
		return resilience.ProbeFatal
	}
	return resilience.ProbeMiss
}

func probeReason(err error) string {
	if err == nil {
		return ""
	}
	return string(FetchReasonOf(err))
}
