package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
)

func newTestStore(t *testing.T) (*SeasonStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSeasonStore(client, SeasonStoreConfig{
		KeyPrefix: "test:",
		Now:       func() time.Time { return time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC) },
	}), mr
}

func testRecord(allSeasons []int, playerName string) season.Record {
	players := season.NewTable(season.ColPlayerID, season.ColPlayerName)
	players.Append(int64(1), playerName)
	return season.Record{
		LeagueID:   "7788",
		Platform:   league.PlatformYahoo,
		Season:     2022,
		Settings:   season.NewTable(season.ColLeagueID),
		Teams:      season.NewTable(season.ColTeamID),
		Scoreboard: season.NewTable(season.ColWeek),
		Players:    players,
		DraftRecap: season.NewTable(season.ColPickNumber),
		AllSeasons: allSeasons,
	}
}

func TestSeasonStore_UpsertThenPatch(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()
	hashKey := "test:yahoo#7788#2022"

	if err := store.Write(ctx, testRecord([]int{2021, 2022}, "first"), season.WriteUpsert); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got := mr.HGet(hashKey, season.AttrAllYears); got != "[2021,2022]" {
		t.Fatalf("unexpected allYears: %q", got)
	}

	if err := store.Write(ctx, testRecord(nil, "second"), season.WritePatch); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got := mr.HGet(hashKey, season.AttrAllYears); got != "[2021,2022]" {
		t.Fatalf("patch must keep allYears, got %q", got)
	}
	if got := mr.HGet(hashKey, season.AttrPlayers); got != `[{"playerId":1,"playerName":"second"}]` {
		t.Fatalf("patch must replace players, got %s", got)
	}
	if got := mr.HGet(hashKey, "updatedAt"); got != "2022-06-01T00:00:00Z" {
		t.Fatalf("unexpected updatedAt: %q", got)
	}
}

func TestSeasonStore_UpsertDropsStaleFields(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()
	hashKey := store.HashKey(season.Key{Platform: league.PlatformYahoo, LeagueID: "7788", Season: 2022})

	_ = store.Write(ctx, testRecord([]int{2022}, "first"), season.WriteUpsert)
	if err := store.Write(ctx, testRecord(nil, "second"), season.WriteUpsert); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if mr.HGet(hashKey, season.AttrAllYears) != "" {
		t.Fatalf("upsert must replace the whole hash")
	}
	if mr.HGet(hashKey, season.AttrLeagueID) != "7788" {
		t.Fatalf("expected league id field")
	}
}
