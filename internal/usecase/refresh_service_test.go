package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
	leaguemock "github.com/riskibarqy/fantasy-league-activation/internal/mocks/domain/league"
	seasonmock "github.com/riskibarqy/fantasy-league-activation/internal/mocks/domain/season"
	"github.com/stretchr/testify/mock"
)

func TestRefreshService_RefreshActive(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	store := seasonmock.NewStore(t)
	src := newFakeSource(league.PlatformESPN, 2022)
	src.leagueErr["gone"] = &FetchFailure{Reason: ReasonNotFound, StatusCode: http.StatusNotFound}
	src.panicOn = "boom"

	repo.On("ListActive", mock.Anything, league.PlatformESPN).Return([]league.League{
		{LeagueID: "ok-1", Platform: league.PlatformESPN, Credential: "s2", SWID: "{A}", Active: true},
		{LeagueID: "gone", Platform: league.PlatformESPN, Active: true},
		{LeagueID: "boom", Platform: league.PlatformESPN, Active: true},
		{LeagueID: "ok-2", Platform: league.PlatformESPN, Active: true},
	}, nil).Once()
	store.On("Write", mock.Anything, mock.MatchedBy(func(rec season.Record) bool {
		return rec.Season == 2022 && rec.AllSeasons == nil
	}), season.WritePatch).Return(nil).Times(2)
	repo.On("CommitActivation", mock.Anything, mock.MatchedBy(func(a league.Activation) bool {
		return a.LeagueID == "ok-1" || a.LeagueID == "ok-2"
	})).Return(nil).Times(2)

	activation := newTestActivation(repo, store, nil, src)
	svc := NewRefreshService(repo, activation, RefreshConfig{Workers: 2, Now: func() time.Time { return fixedNow }})

	got, err := svc.RefreshActive(context.Background(), RefreshRequest{Platform: league.PlatformESPN, Season: 2022})
	if err != nil {
		t.Fatalf("refresh active: %v", err)
	}
	if got.Processed != 4 || got.Succeeded != 2 || got.Failed != 2 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got.Failures[0].LeagueID != "boom" || got.Failures[1].LeagueID != "gone" {
		t.Fatalf("unexpected failures order: %+v", got.Failures)
	}
	if got.Failures[0].Outcome.Kind != OutcomeError || got.Failures[1].Outcome.Kind != OutcomeNotFound {
		t.Fatalf("unexpected failure outcomes: %+v", got.Failures)
	}
}

func TestRefreshService_DefaultsToCurrentSeason(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	repo.On("ListActive", mock.Anything, league.Platform("")).Return([]league.League{}, nil).Once()

	october := time.Date(2022, time.October, 20, 0, 0, 0, 0, time.UTC)
	svc := NewRefreshService(repo, newTestActivation(repo, seasonmock.NewStore(t), nil), RefreshConfig{Now: func() time.Time { return october }})

	got, err := svc.RefreshActive(context.Background(), RefreshRequest{})
	if err != nil {
		t.Fatalf("refresh active: %v", err)
	}
	if got.Season != 2023 || got.Processed != 0 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestRefreshService_ExpireStale(t *testing.T) {
	t.Parallel()

	repo := leaguemock.NewRepository(t)
	repo.On("ExpireUpdated", mock.Anything, fixedNow.Add(-24*time.Hour)).Return(int64(3), nil).Once()

	svc := NewRefreshService(repo, nil, RefreshConfig{Now: func() time.Time { return fixedNow }})
	rows, err := svc.ExpireStale(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("expire stale: %v", err)
	}
	if rows != 3 {
		t.Fatalf("unexpected rows: %d", rows)
	}

	if _, err := svc.ExpireStale(context.Background(), 0); err == nil {
		t.Fatalf("expected error for zero stale window")
	}
}
