package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
)

// ActivationRequest asks for a league to be made current. Season zero runs
// season discovery.
type ActivationRequest struct {
	LeagueID   string
	Platform   league.Platform
	Credential league.Credential
	Season     int
}

type ActivationResult struct {
	Outcome Outcome
	Seasons []int
	RunID   string
}

type ActivationDeps struct {
	Leagues   league.Repository
	Store     season.Store
	Sources   []PlatformSource
	Tokens    TokenExchanger
	Discovery *SeasonDiscovery
	Assembler *Assembler
	IDs       IDGenerator
	Now       func() time.Time
	Logger    *logging.Logger
	Recorder  Recorder
}

// ActivationService drives lookup, credential check, discovery, assembly,
// season writes and the final commit for one league.
type ActivationService struct {
	leagues   league.Repository
	store     season.Store
	sources   map[league.Platform]PlatformSource
	tokens    TokenExchanger
	discovery *SeasonDiscovery
	assembler *Assembler
	ids       IDGenerator
	now       func() time.Time
	logger    *logging.Logger
	recorder  Recorder
}

func NewActivationService(deps ActivationDeps) *ActivationService {
	sources := make(map[league.Platform]PlatformSource, len(deps.Sources))
	for _, src := range deps.Sources {
		if src != nil {
			sources[src.Platform()] = src
		}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if deps.Recorder == nil {
		deps.Recorder = NopRecorder{}
	}
	if deps.Discovery == nil {
		deps.Discovery = NewSeasonDiscovery(DiscoveryConfig{Logger: deps.Logger, Recorder: deps.Recorder})
	}
	if deps.Assembler == nil {
		deps.Assembler = NewAssembler(deps.Logger)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &ActivationService{
		leagues:   deps.Leagues,
		store:     deps.Store,
		sources:   sources,
		tokens:    deps.Tokens,
		discovery: deps.Discovery,
		assembler: deps.Assembler,
		ids:       deps.IDs,
		now:       deps.Now,
		logger:    deps.Logger,
		recorder:  deps.Recorder,
	}
}

// Activate never fails at the transport level; every problem is an Outcome.
func (s *ActivationService) Activate(ctx context.Context, req ActivationRequest) ActivationResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.ActivationService.Activate")
	defer span.End()

	started := s.now()
	runID := s.newRunID()
	logger := s.logger.With("run_id", runID, "league_id", req.LeagueID, "platform", string(req.Platform))

	result := s.activate(ctx, logger, req)
	result.RunID = runID

	s.recorder.ObserveActivation(string(req.Platform), result.Outcome.Label(), s.now().Sub(started))
	logger.InfoContext(ctx, "activation finished",
		"status", result.Outcome.Label(),
		"detail", result.Outcome.Detail,
		"seasons", result.Seasons,
	)
	return result
}

func (s *ActivationService) activate(ctx context.Context, logger *logging.Logger, req ActivationRequest) ActivationResult {
	req.LeagueID = strings.TrimSpace(req.LeagueID)
	if req.LeagueID == "" {
		return ActivationResult{Outcome: Failed(fmt.Sprintf("%s: league id is required", ErrInvalidInput))}
	}
	platform, err := league.ParsePlatform(string(req.Platform))
	if err != nil {
		return ActivationResult{Outcome: Failed(fmt.Sprintf("%s: %v", ErrInvalidInput, err))}
	}
	req.Platform = platform
	if req.Season < 0 {
		return ActivationResult{Outcome: Failed(fmt.Sprintf("%s: season must be > 0", ErrInvalidInput))}
	}

	stored, exists, err := s.leagues.Get(ctx, req.LeagueID, req.Platform)
	if err != nil {
		logger.ErrorContext(ctx, "league lookup failed", "error", err)
		return ActivationResult{Outcome: Failed("league lookup failed")}
	}
	logger.InfoContext(ctx, "league lookup", "exists", exists, "updated", exists && stored.Updated)
	if exists && stored.Updated {
		return ActivationResult{Outcome: Active()}
	}

	var storedCred league.Credential
	if exists {
		storedCred = stored.StoredCredential()
	}
	return s.process(ctx, logger, req, storedCred)
}

// Refresh re-runs one season of an already active league in patch mode,
// without the lookup short-circuit.
func (s *ActivationService) Refresh(ctx context.Context, lg league.League, seasonYear int) ActivationResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.ActivationService.Refresh")
	defer span.End()

	runID := s.newRunID()
	logger := s.logger.With("run_id", runID, "league_id", lg.LeagueID, "platform", string(lg.Platform))
	if seasonYear <= 0 {
		seasonYear = CurrentSeason(s.now())
	}

	result := s.process(ctx, logger, ActivationRequest{
		LeagueID: lg.LeagueID,
		Platform: lg.Platform,
		Season:   seasonYear,
	}, lg.StoredCredential())
	result.RunID = runID
	return result
}

func (s *ActivationService) process(ctx context.Context, logger *logging.Logger, req ActivationRequest, stored league.Credential) ActivationResult {
	source, ok := s.sources[req.Platform]
	if !ok {
		return ActivationResult{Outcome: Failed(fmt.Sprintf("platform %s is not configured", req.Platform))}
	}

	cred, outcome := s.checkCredential(ctx, logger, source, req, stored)
	if !outcome.IsActive() {
		return ActivationResult{Outcome: outcome}
	}

	seasons := []int{req.Season}
	mode := season.WritePatch
	var allSeasons []int
	if req.Season == 0 {
		found, err := s.discovery.Discover(ctx, source, DiscoveryRequest{
			LeagueID:    req.LeagueID,
			Credential:  cred,
			StartSeason: s.now().Year() + 1,
		})
		if err != nil {
			logger.WarnContext(ctx, "season discovery failed", "error", err, "probes", found.Probes)
			if errors.Is(err, ErrUnauthorized) {
				return ActivationResult{Outcome: AuthRequired("credential rejected during season discovery")}
			}
			return ActivationResult{Outcome: Failed(err.Error())}
		}
		logger.InfoContext(ctx, "seasons discovered", "seasons", found.Seasons, "probes", found.Probes)
		if len(found.Seasons) == 0 {
			return ActivationResult{Outcome: NotFound("no seasons found for league")}
		}
		seasons = found.Seasons
		allSeasons = found.Seasons
		mode = season.WriteUpsert
	}

	for _, year := range seasons {
		record, err := s.assembler.Assemble(ctx, source, AssemblyRequest{
			SeasonRequest: SeasonRequest{LeagueID: req.LeagueID, Season: year, Credential: cred},
			AllSeasons:    allSeasons,
		})
		if err != nil {
			logger.ErrorContext(ctx, "season assembly failed", "season", year, "error", err)
			return ActivationResult{Outcome: Failed(err.Error()), Seasons: seasons}
		}

		err = s.store.Write(ctx, record, mode)
		s.recorder.ObserveSeasonWrite(string(mode), err)
		if err != nil {
			failure := &PersistenceFailure{Season: year, Mode: mode, Cause: err}
			logger.ErrorContext(ctx, "season write failed", "season", year, "error", failure)
			return ActivationResult{Outcome: Failed(failure.Error()), Seasons: seasons}
		}
		logger.InfoContext(ctx, "season uploaded", "season", year, "mode", string(mode))
	}

	if err := s.leagues.CommitActivation(ctx, league.ActivationFor(req.LeagueID, req.Platform, cred)); err != nil {
		logger.ErrorContext(ctx, "activation commit failed", "error", err)
		return ActivationResult{Outcome: Failed("activation commit failed"), Seasons: seasons}
	}
	logger.InfoContext(ctx, "activation committed", "seasons", seasons)

	return ActivationResult{Outcome: Active(), Seasons: seasons}
}

func (s *ActivationService) checkCredential(ctx context.Context, logger *logging.Logger, source PlatformSource, req ActivationRequest, stored league.Credential) (league.Credential, Outcome) {
	switch req.Platform {
	case league.PlatformESPN:
		cred := league.Credential{
			EspnS2: firstNonEmpty(req.Credential.EspnS2, stored.EspnS2),
			SWID:   firstNonEmpty(req.Credential.SWID, stored.SWID),
		}
		statusSeason := req.Season
		if statusSeason == 0 {
			statusSeason = CurrentSeason(s.now())
		}
		err := source.Probe(ctx, SeasonRequest{LeagueID: req.LeagueID, Season: statusSeason, Credential: cred})
		outcome := OutcomeFromFetch(err)
		logger.InfoContext(ctx, "league status probe", "season", statusSeason, "status", outcome.Label())
		if req.Season == 0 && outcome.Kind == OutcomeNotFound {
			// Discovery decides whether a league without a current season exists.
			return cred, Active()
		}
		return cred, outcome

	case league.PlatformYahoo:
		if s.tokens == nil {
			return league.Credential{}, Failed("yahoo token exchange is not configured")
		}

		var (
			cred league.Credential
			err  error
		)
		if code := strings.TrimSpace(req.Credential.AuthCode); code != "" {
			cred, err = s.tokens.Exchange(ctx, code)
		} else {
			refresh := firstNonEmpty(req.Credential.RefreshToken, stored.RefreshToken)
			if refresh == "" {
				return league.Credential{}, AuthRequired("yahoo auth code or refresh token is required")
			}
			cred, err = s.tokens.Refresh(ctx, refresh)
		}
		if err != nil {
			var tokenErr *TokenError
			if errors.As(err, &tokenErr) {
				logger.WarnContext(ctx, "yahoo token exchange rejected", "error", tokenErr.Code)
				return league.Credential{}, AuthRequired(tokenErr.Code)
			}
			logger.ErrorContext(ctx, "yahoo token exchange failed", "error", err)
			return league.Credential{}, Failed("yahoo token exchange failed")
		}
		return cred, Active()

	default:
		return league.Credential{}, Failed(fmt.Sprintf("unsupported platform %s", req.Platform))
	}
}

func (s *ActivationService) newRunID() string {
	if s.ids == nil {
		return ""
	}
	runID, err := s.ids.NewID()
	if err != nil {
		s.logger.Warn("generate run id failed", "error", err)
		return ""
	}
	return runID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
