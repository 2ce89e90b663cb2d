package usecase

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
	leaguemock "github.com/riskibarqy/fantasy-league-activation/internal/mocks/domain/league"
	seasonmock "github.com/riskibarqy/fantasy-league-activation/internal/mocks/domain/season"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/id"
	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2022, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestActivation(repo league.Repository, store season.Store, tokens TokenExchanger, sources ...PlatformSource) *ActivationService {
	return NewActivationService(ActivationDeps{
		Leagues: repo,
		Store:   store,
		Sources: sources,
		Tokens:  tokens,
		IDs:     id.Static("run-1"),
		Now:     func() time.Time { return fixedNow },
	})
}

func TestActivationService_AlreadyUpdatedMakesNoPlatformCalls(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	src := newFakeSource(league.PlatformESPN, 2022)

	repo.On("Get", mock.Anything, "48375511", league.PlatformESPN).
		Return(league.League{LeagueID: "48375511", Platform: league.PlatformESPN, Updated: true}, true, nil).
		Once()

	got := newTestActivation(repo, store, nil, src).Activate(ctx, ActivationRequest{LeagueID: "48375511", Platform: league.PlatformESPN})
	if got.Outcome.Label() != "ACTIVE" {
		t.Fatalf("expected ACTIVE, got %+v", got.Outcome)
	}
	if got.RunID != "run-1" {
		t.Fatalf("unexpected run id: %q", got.RunID)
	}
	if probes, fetches := src.calls(); probes != 0 || fetches != 0 {
		t.Fatalf("expected zero platform calls, got probes=%d fetches=%d", probes, fetches)
	}
}

func TestActivationService_NewESPNLeagueDiscoversAndUpserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	src := newFakeSource(league.PlatformESPN, 2020, 2021, 2022)

	repo.On("Get", mock.Anything, "48375511", league.PlatformESPN).Return(league.League{}, false, nil).Once()

	var written []int
	store.On("Write", mock.Anything, mock.MatchedBy(func(rec season.Record) bool {
		return rec.LeagueID == "48375511" && reflect.DeepEqual(rec.AllSeasons, []int{2020, 2021, 2022})
	}), season.WriteUpsert).
		Run(func(args mock.Arguments) {
			written = append(written, args.Get(1).(season.Record).Season)
		}).
		Return(nil).
		Times(3)

	repo.On("CommitActivation", mock.Anything, league.Activation{
		LeagueID:   "48375511",
		Platform:   league.PlatformESPN,
		Credential: "s2-cookie",
		SWID:       "{SWID}",
	}).Return(nil).Once()

	got := newTestActivation(repo, store, nil, src).Activate(ctx, ActivationRequest{
		LeagueID:   "48375511",
		Platform:   league.PlatformESPN,
		Credential: league.Credential{EspnS2: "s2-cookie", SWID: "{SWID}"},
	})
	if !got.Outcome.IsActive() {
		t.Fatalf("expected ACTIVE, got %+v", got.Outcome)
	}
	if !reflect.DeepEqual(got.Seasons, []int{2020, 2021, 2022}) {
		t.Fatalf("unexpected seasons: %v", got.Seasons)
	}
	if !reflect.DeepEqual(written, []int{2020, 2021, 2022}) {
		t.Fatalf("seasons must be written oldest first, got %v", written)
	}
	// one status probe plus 2023..2016 during discovery
	if probes, _ := src.calls(); probes != 9 {
		t.Fatalf("unexpected probe count: %d", probes)
	}
}

func TestActivationService_StoredCookieIsReused(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	src := newFakeSource(league.PlatformESPN, 2022)

	repo.On("Get", mock.Anything, "1", league.PlatformESPN).
		Return(league.League{LeagueID: "1", Platform: league.PlatformESPN, Credential: "stored-s2", SWID: "{STORED}"}, true, nil).
		Once()
	store.On("Write", mock.Anything, mock.Anything, season.WritePatch).Return(nil).Once()
	repo.On("CommitActivation", mock.Anything, league.Activation{LeagueID: "1", Platform: league.PlatformESPN, Credential: "stored-s2", SWID: "{STORED}"}).
		Return(nil).
		Once()

	got := newTestActivation(repo, store, nil, src).Activate(ctx, ActivationRequest{LeagueID: "1", Platform: league.PlatformESPN, Season: 2022})
	if !got.Outcome.IsActive() {
		t.Fatalf("expected ACTIVE, got %+v", got.Outcome)
	}
}

func TestActivationService_StatusProbeShortCircuits(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		season int
		label  string
	}{
		{name: "private league", err: &FetchFailure{Reason: ReasonUnauthorized, StatusCode: http.StatusUnauthorized}, label: "AUTH_REQUIRED"},
		{name: "missing explicit season", err: &FetchFailure{Reason: ReasonNotFound, StatusCode: http.StatusNotFound}, season: 2021, label: "NOT_FOUND"},
		{name: "platform down", err: &FetchFailure{Reason: ReasonTransient, StatusCode: http.StatusBadGateway}, label: "ERROR"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := leaguemock.NewRepository(t)
			store := seasonmock.NewStore(t)
			src := newFakeSource(league.PlatformESPN, 2022)
			src.leagueErr["7"] = tc.err

			repo.On("Get", mock.Anything, "7", league.PlatformESPN).Return(league.League{}, false, nil).Once()

			got := newTestActivation(repo, store, nil, src).Activate(context.Background(), ActivationRequest{LeagueID: "7", Platform: league.PlatformESPN, Season: tc.season})
			if got.Outcome.Label() != tc.label {
				t.Fatalf("expected %s, got %+v", tc.label, got.Outcome)
			}
			if probes, fetches := src.calls(); probes != 1 || fetches != 0 {
				t.Fatalf("expected a single status probe, got probes=%d fetches=%d", probes, fetches)
			}
		})
	}
}

func TestActivationService_MissingLeagueIsDecidedByDiscovery(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	src := newFakeSource(league.PlatformESPN, 2022)
	src.leagueErr["7"] = &FetchFailure{Reason: ReasonNotFound, StatusCode: http.StatusNotFound}

	repo.On("Get", mock.Anything, "7", league.PlatformESPN).Return(league.League{}, false, nil).Once()

	got := newTestActivation(repo, store, nil, src).Activate(context.Background(), ActivationRequest{LeagueID: "7", Platform: league.PlatformESPN})
	if got.Outcome.Label() != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %+v", got.Outcome)
	}
	// status probe plus four discovery misses from 2023 down to 2020
	if probes, fetches := src.calls(); probes != 5 || fetches != 0 {
		t.Fatalf("unexpected calls probes=%d fetches=%d", probes, fetches)
	}
}

func TestActivationService_PastSeasonLeagueStillDiscovered(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	src := newFakeSource(league.PlatformESPN, 2019, 2020)

	repo.On("Get", mock.Anything, "1", league.PlatformESPN).Return(league.League{}, false, nil).Once()
	store.On("Write", mock.Anything, mock.MatchedBy(func(rec season.Record) bool {
		return reflect.DeepEqual(rec.AllSeasons, []int{2019, 2020})
	}), season.WriteUpsert).Return(nil).Times(2)
	repo.On("CommitActivation", mock.Anything, mock.Anything).Return(nil).Once()

	got := newTestActivation(repo, store, nil, src).Activate(context.Background(), ActivationRequest{LeagueID: "1", Platform: league.PlatformESPN})
	if !got.Outcome.IsActive() || !reflect.DeepEqual(got.Seasons, []int{2019, 2020}) {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestActivationService_ExplicitSeasonSkipsDiscoveryAndPatches(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	src := newFakeSource(league.PlatformESPN, 2021)

	repo.On("Get", mock.Anything, "1", league.PlatformESPN).Return(league.League{}, false, nil).Once()
	store.On("Write", mock.Anything, mock.MatchedBy(func(rec season.Record) bool {
		return rec.Season == 2021 && rec.AllSeasons == nil
	}), season.WritePatch).Return(nil).Once()
	repo.On("CommitActivation", mock.Anything, mock.Anything).Return(nil).Once()

	got := newTestActivation(repo, store, nil, src).Activate(context.Background(), ActivationRequest{LeagueID: "1", Platform: league.PlatformESPN, Season: 2021})
	if !got.Outcome.IsActive() || !reflect.DeepEqual(got.Seasons, []int{2021}) {
		t.Fatalf("unexpected result: %+v", got)
	}
	if probes, _ := src.calls(); probes != 1 {
		t.Fatalf("expected only the status probe, got %d", probes)
	}
}

func TestActivationService_NoSeasonsIsNotFound(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	statusOnly := &statusOnlySource{fakeSource: newFakeSource(league.PlatformESPN)}

	repo.On("Get", mock.Anything, "1", league.PlatformESPN).Return(league.League{}, false, nil).Once()

	got := newTestActivation(repo, store, nil, statusOnly).Activate(context.Background(), ActivationRequest{LeagueID: "1", Platform: league.PlatformESPN})
	if got.Outcome.Label() != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %+v", got.Outcome)
	}
}

// statusOnlySource answers the first probe only.
type statusOnlySource struct {
	*fakeSource
	answered bool
}

func (s *statusOnlySource) Probe(ctx context.Context, req SeasonRequest) error {
	if !s.answered {
		s.answered = true
		return nil
	}
	return s.fakeSource.Probe(ctx, req)
}

func TestActivationService_AssemblyFailureSkipsCommit(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	src := newFakeSource(league.PlatformESPN, 2022)
	src.fetchErr[season.EndpointPlayers] = &FetchFailure{Reason: ReasonTransient}

	repo.On("Get", mock.Anything, "1", league.PlatformESPN).Return(league.League{}, false, nil).Once()

	got := newTestActivation(repo, store, nil, src).Activate(context.Background(), ActivationRequest{LeagueID: "1", Platform: league.PlatformESPN, Season: 2022})
	if got.Outcome.Kind != OutcomeError {
		t.Fatalf("expected ERROR, got %+v", got.Outcome)
	}
	repo.AssertNotCalled(t, "CommitActivation", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivationService_WriteFailureSkipsCommit(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	src := newFakeSource(league.PlatformESPN, 2022)

	repo.On("Get", mock.Anything, "1", league.PlatformESPN).Return(league.League{}, false, nil).Once()
	store.On("Write", mock.Anything, mock.Anything, season.WritePatch).Return(errors.New("throttled")).Once()

	got := newTestActivation(repo, store, nil, src).Activate(context.Background(), ActivationRequest{LeagueID: "1", Platform: league.PlatformESPN, Season: 2022})
	if got.Outcome.Kind != OutcomeError {
		t.Fatalf("expected ERROR, got %+v", got.Outcome)
	}
	repo.AssertNotCalled(t, "CommitActivation", mock.Anything, mock.Anything)
}

func TestActivationService_InvalidInputIsErrorOutcome(t *testing.T) {
	t.Parallel()

	svc := newTestActivation(leaguemock.NewRepository(t), seasonmock.NewStore(t), nil)

	if got := svc.Activate(context.Background(), ActivationRequest{Platform: league.PlatformESPN}); got.Outcome.Kind != OutcomeError {
		t.Fatalf("expected ERROR for missing league id, got %+v", got.Outcome)
	}
	if got := svc.Activate(context.Background(), ActivationRequest{LeagueID: "1", Platform: "sleeper"}); got.Outcome.Kind != OutcomeError {
		t.Fatalf("expected ERROR for unknown platform, got %+v", got.Outcome)
	}
}

func TestActivationService_YahooAuthCodePath(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	src := newFakeSource(league.PlatformYahoo, 2022)
	tokens := &fakeTokens{}

	repo.On("Get", mock.Anything, "99", league.PlatformYahoo).Return(league.League{}, false, nil).Once()
	store.On("Write", mock.Anything, mock.Anything, season.WritePatch).Return(nil).Once()
	repo.On("CommitActivation", mock.Anything, league.Activation{LeagueID: "99", Platform: league.PlatformYahoo, Credential: "refresh-from-code"}).
		Return(nil).
		Once()

	got := newTestActivation(repo, store, tokens, src).Activate(context.Background(), ActivationRequest{
		LeagueID:   "99",
		Platform:   league.PlatformYahoo,
		Credential: league.Credential{AuthCode: "code-123", RefreshToken: "ignored"},
		Season:     2022,
	})
	if !got.Outcome.IsActive() {
		t.Fatalf("expected ACTIVE, got %+v", got.Outcome)
	}
	if !reflect.DeepEqual(tokens.exchanged, []string{"code-123"}) || len(tokens.refreshed) != 0 {
		t.Fatalf("expected auth-code grant only: exchanged=%v refreshed=%v", tokens.exchanged, tokens.refreshed)
	}
}

func TestActivationService_YahooRefreshPathUsesStoredToken(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	src := newFakeSource(league.PlatformYahoo, 2022)
	tokens := &fakeTokens{}

	repo.On("Get", mock.Anything, "99", league.PlatformYahoo).
		Return(league.League{LeagueID: "99", Platform: league.PlatformYahoo, Credential: "stored-refresh"}, true, nil).
		Once()
	store.On("Write", mock.Anything, mock.Anything, season.WritePatch).Return(nil).Once()
	repo.On("CommitActivation", mock.Anything, mock.Anything).Return(nil).Once()

	got := newTestActivation(repo, store, tokens, src).Activate(context.Background(), ActivationRequest{
		LeagueID: "99",
		Platform: league.PlatformYahoo,
		Season:   2022,
	})
	if !got.Outcome.IsActive() {
		t.Fatalf("expected ACTIVE, got %+v", got.Outcome)
	}
	if !reflect.DeepEqual(tokens.refreshed, []string{"stored-refresh"}) || len(tokens.exchanged) != 0 {
		t.Fatalf("expected refresh grant only: exchanged=%v refreshed=%v", tokens.exchanged, tokens.refreshed)
	}
}

func TestActivationService_YahooTokenErrorIsReturnedAsOutcome(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	src := newFakeSource(league.PlatformYahoo, 2022)
	tokens := &fakeTokens{err: &TokenError{Code: "invalid_grant"}}

	repo.On("Get", mock.Anything, "99", league.PlatformYahoo).Return(league.League{}, false, nil).Once()

	got := newTestActivation(repo, seasonmock.NewStore(t), tokens, src).Activate(context.Background(), ActivationRequest{
		LeagueID:   "99",
		Platform:   league.PlatformYahoo,
		Credential: league.Credential{RefreshToken: "expired"},
	})
	if got.Outcome.Label() != "AUTH_REQUIRED" || got.Outcome.Detail != "invalid_grant" {
		t.Fatalf("unexpected outcome: %+v", got.Outcome)
	}
}

func TestActivationService_YahooWithoutCredential(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	tokens := &fakeTokens{}
	repo.On("Get", mock.Anything, "99", league.PlatformYahoo).Return(league.League{}, false, nil).Once()

	got := newTestActivation(repo, seasonmock.NewStore(t), tokens, newFakeSource(league.PlatformYahoo)).Activate(context.Background(), ActivationRequest{
		LeagueID: "99",
		Platform: league.PlatformYahoo,
	})
	if got.Outcome.Kind != OutcomeAuthRequired {
		t.Fatalf("expected AUTH_REQUIRED, got %+v", got.Outcome)
	}
	if len(tokens.exchanged)+len(tokens.refreshed) != 0 {
		t.Fatalf("no token call expected")
	}
}

func TestCurrentSeason(t *testing.T) {
	t.Parallel()

	if got := CurrentSeason(time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC)); got != 2024 {
		t.Fatalf("unexpected season before october: %d", got)
	}
	if got := CurrentSeason(time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)); got != 2025 {
		t.Fatalf("unexpected season from october: %d", got)
	}
}
