package usecase

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
)

func assembleSample(t *testing.T, src *fakeSource, allSeasons []int) season.Record {
	t.Helper()

	rec, err := NewAssembler(nil).Assemble(context.Background(), src, AssemblyRequest{
		SeasonRequest: SeasonRequest{LeagueID: "48375511", Season: 2022},
		AllSeasons:    allSeasons,
	})
	if err != nil {
		t.Fatalf("assemble season: %v", err)
	}
	return rec
}

func TestAssembler_DraftRecapIsLeftJoin(t *testing.T) {
	t.Parallel()

	rec := assembleSample(t, newFakeSource(league.PlatformESPN), nil)

	if rec.DraftRecap.Len() != 3 {
		t.Fatalf("expected every draft pick to survive, got %d", rec.DraftRecap.Len())
	}
	unmatched := rec.DraftRecap.Rows[2]
	if unmatched[season.ColPickNumber] != int64(3) {
		t.Fatalf("unexpected pick order: %+v", rec.DraftRecap.Rows)
	}
	if unmatched[season.ColRatingSeason] != nil || unmatched[season.ColRankingSeason] != nil || unmatched[season.ColPlayerName] != nil {
		t.Fatalf("expected null rating fields for unmatched pick, got %+v", unmatched)
	}
	if got := rec.DraftRecap.Rows[0][season.ColPlayerName]; got != "Drafted Free Agent" {
		t.Fatalf("unexpected joined player: %v", got)
	}
}

func TestAssembler_EjectionsColumnsFollowLeagueCategories(t *testing.T) {
	t.Parallel()

	withEjs := assembleSample(t, newFakeSource(league.PlatformESPN), nil)
	wantRecap := []string{"pickNumber", "round", "playerName", "teamId", "ratingSeason", "rankingSeason", "ratingEjsSeason", "rankingEjsSeason"}
	if !reflect.DeepEqual(withEjs.DraftRecap.Columns, wantRecap) {
		t.Fatalf("unexpected recap columns: %v", withEjs.DraftRecap.Columns)
	}
	if !withEjs.Players.Has(season.ColRatingEjsSeason) || !withEjs.Players.Has(season.ColRankingEjsSeason) {
		t.Fatalf("expected ejections columns in players: %v", withEjs.Players.Columns)
	}

	src := newFakeSource(league.PlatformESPN)
	src.tables = sampleTables(false)
	withoutEjs := assembleSample(t, src, nil)
	for _, tbl := range []*season.Table{withoutEjs.Players, withoutEjs.DraftRecap} {
		if tbl.Has(season.ColRatingEjsSeason) || tbl.Has(season.ColRankingEjsSeason) {
			t.Fatalf("unexpected ejections columns: %v", tbl.Columns)
		}
	}
}

func TestAssembler_PlatformWithoutEjectionsNeverAddsColumns(t *testing.T) {
	t.Parallel()

	src := newFakeSource(league.PlatformYahoo)
	rec := assembleSample(t, src, nil)
	if rec.Players.Has(season.ColRatingEjsSeason) {
		t.Fatalf("yahoo leagues must not carry ejections columns")
	}
	if rec.Platform != league.PlatformYahoo {
		t.Fatalf("unexpected platform: %s", rec.Platform)
	}
}

func TestAssembler_RatingsAndRankings(t *testing.T) {
	t.Parallel()

	rec := assembleSample(t, newFakeSource(league.PlatformESPN), nil)

	byID := make(map[int64]season.Row)
	for _, row := range rec.Players.Rows {
		byID[row[season.ColPlayerID].(int64)] = row
	}

	star := byID[1]
	if star[season.ColRatingSeason] != 3.0 || star[season.ColRatingEjsSeason] != 2.0 {
		t.Fatalf("unexpected star ratings: %+v", star)
	}
	drafted := byID[2]
	if drafted[season.ColRatingSeason] != 9.0 || drafted[season.ColRankingSeason] != int64(1) {
		t.Fatalf("unexpected drafted ratings: %+v", drafted)
	}
	if byID[4][season.ColRatingSeason] != nil || byID[4][season.ColRankingSeason] != nil {
		t.Fatalf("unrated player must keep null rating and ranking: %+v", byID[4])
	}
	if star[season.ColRankingSeason] != int64(3) {
		// duplicate row rated 9 ties with player 2 ahead of the star
		t.Fatalf("unexpected star ranking: %v", star[season.ColRankingSeason])
	}
}

func TestAssembler_TruncatesToRosteredOrDrafted(t *testing.T) {
	t.Parallel()

	rec := assembleSample(t, newFakeSource(league.PlatformESPN), nil)

	ids := rec.Players.Column(season.ColPlayerID)
	if !reflect.DeepEqual(ids, []any{int64(1), int64(2), int64(4)}) {
		t.Fatalf("unexpected truncated players: %v", ids)
	}
	if rec.Players.Rows[0][season.ColPlayerName] != "Rostered Star" {
		t.Fatalf("duplicate rows must collapse to the first occurrence: %+v", rec.Players.Rows[0])
	}
	if rec.Players.Has(season.ColStatRatingsSeason) {
		t.Fatalf("stat rating blobs must be dropped")
	}
}

func TestAssembler_AllSeasonsOnlyWhenDefining(t *testing.T) {
	t.Parallel()

	rec := assembleSample(t, newFakeSource(league.PlatformESPN), nil)
	if rec.AllSeasons != nil {
		t.Fatalf("expected no allSeasons, got %v", rec.AllSeasons)
	}

	rec = assembleSample(t, newFakeSource(league.PlatformESPN), []int{2021, 2022})
	if !reflect.DeepEqual(rec.AllSeasons, []int{2021, 2022}) {
		t.Fatalf("unexpected allSeasons: %v", rec.AllSeasons)
	}
}

func TestAssembler_FetchFailureAbortsSeason(t *testing.T) {
	t.Parallel()

	src := newFakeSource(league.PlatformESPN)
	src.fetchErr[season.EndpointScoreboard] = &FetchFailure{Reason: ReasonTransient, StatusCode: http.StatusBadGateway}

	_, err := NewAssembler(nil).Assemble(context.Background(), src, AssemblyRequest{
		SeasonRequest: SeasonRequest{LeagueID: "48375511", Season: 2022},
	})
	var failure *AssemblyFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected AssemblyFailure, got %v", err)
	}
	if failure.Season != 2022 || failure.Endpoint != season.EndpointScoreboard {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected failure to unwrap to the transient fetch, got %v", err)
	}
	if _, fetches := src.calls(); fetches != 3 {
		t.Fatalf("expected fetching to stop at the failing endpoint, got %d fetches", fetches)
	}
}
