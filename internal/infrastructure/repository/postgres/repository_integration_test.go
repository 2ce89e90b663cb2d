//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/rawdata"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *sqlx.DB

func TestMain(m *testing.M) {
	ctx := context.Background()
	migrations := filepath.Join("..", "..", "..", "..", "db", "migrations")

	container, err := tcpostgres.Run(ctx, "postgres:16.3-alpine",
		tcpostgres.WithDatabase("activation"),
		tcpostgres.WithUsername("activation"),
		tcpostgres.WithPassword("secret"),
		tcpostgres.WithInitScripts(
			filepath.Join(migrations, "000001_create_leagueids.up.sql"),
			filepath.Join(migrations, "000002_create_raw_platform_payloads.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Printf("start postgres container: %v\n", err)
		os.Exit(1)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err == nil {
		testDB, err = sqlx.Open("postgres", dsn)
	}
	if err != nil {
		fmt.Printf("connect postgres container: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()
	_ = testDB.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestLeagueRepository_CommitAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewLeagueRepository(testDB)

	_, found, err := repo.Get(ctx, "commit-1", league.PlatformESPN)
	if err != nil || found {
		t.Fatalf("expected missing league, found=%v err=%v", found, err)
	}

	if err := repo.CommitActivation(ctx, league.Activation{LeagueID: "commit-1", Platform: league.PlatformESPN, Credential: "s2", SWID: "{SWID}"}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	first, found, err := repo.Get(ctx, "commit-1", league.PlatformESPN)
	if err != nil || !found {
		t.Fatalf("get first commit: found=%v err=%v", found, err)
	}
	if first.LastUpdated == nil || !first.Updated || !first.Active {
		t.Fatalf("first commit must stamp last_updated: %+v", first)
	}
	if n, err := repo.ExpireUpdated(ctx, time.Now().Add(-time.Hour)); err != nil || n != 0 {
		t.Fatalf("fresh league must not expire: n=%d err=%v", n, err)
	}

	// A blank credential keeps the stored cookie.
	if err := repo.CommitActivation(ctx, league.Activation{LeagueID: "commit-1", Platform: league.PlatformESPN}); err != nil {
		t.Fatalf("recommit: %v", err)
	}

	got, found, err := repo.Get(ctx, "commit-1", league.PlatformESPN)
	if err != nil || !found {
		t.Fatalf("get committed league: found=%v err=%v", found, err)
	}
	if !got.Active || !got.Updated || got.LastUpdated == nil {
		t.Fatalf("expected active updated league, got %+v", got)
	}
	if got.Credential != "s2" || got.SWID != "{SWID}" {
		t.Fatalf("stored credential was overwritten: %+v", got)
	}

	if _, found, _ := repo.Get(ctx, "commit-1", league.PlatformYahoo); found {
		t.Fatalf("league id must be scoped by platform")
	}
}

func TestLeagueRepository_TouchAndExpire(t *testing.T) {
	ctx := context.Background()
	repo := NewLeagueRepository(testDB)

	if err := repo.CommitActivation(ctx, league.Activation{LeagueID: "touch-1", Platform: league.PlatformYahoo, Credential: "refresh"}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	for i := 0; i < 2; i++ {
		n, err := repo.TouchViewed(ctx, "touch-1", "")
		if err != nil || n != 1 {
			t.Fatalf("touch viewed: n=%d err=%v", n, err)
		}
	}
	got, _, _ := repo.Get(ctx, "touch-1", league.PlatformYahoo)
	if got.ViewCount != 2 || got.LastViewed == nil {
		t.Fatalf("unexpected view tracking: %+v", got)
	}

	if n, err := repo.TouchUpdated(ctx, "missing", league.PlatformYahoo); err != nil || n != 0 {
		t.Fatalf("expected zero rows for unknown league, n=%d err=%v", n, err)
	}

	n, err := repo.ExpireUpdated(ctx, time.Now().Add(time.Hour))
	if err != nil || n < 1 {
		t.Fatalf("expire updated: n=%d err=%v", n, err)
	}
	got, _, _ = repo.Get(ctx, "touch-1", league.PlatformYahoo)
	if got.Updated || !got.Active {
		t.Fatalf("expire must clear only the updated flag: %+v", got)
	}

	if n, err := repo.TouchUpdated(ctx, "touch-1", league.PlatformYahoo); err != nil || n != 1 {
		t.Fatalf("touch updated: n=%d err=%v", n, err)
	}
	got, _, _ = repo.Get(ctx, "touch-1", league.PlatformYahoo)
	if got.Updated || got.LastUpdated == nil {
		t.Fatalf("touch updated must only stamp the timestamp: %+v", got)
	}
}

func TestLeagueRepository_ListActive(t *testing.T) {
	ctx := context.Background()
	repo := NewLeagueRepository(testDB)

	for _, a := range []league.Activation{
		{LeagueID: "list-b", Platform: league.PlatformESPN},
		{LeagueID: "list-a", Platform: league.PlatformESPN},
		{LeagueID: "list-c", Platform: league.PlatformYahoo},
	} {
		if err := repo.CommitActivation(ctx, a); err != nil {
			t.Fatalf("commit %s: %v", a.LeagueID, err)
		}
	}

	espn, err := repo.ListActive(ctx, league.PlatformESPN)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	var ids []string
	for _, l := range espn {
		if l.Platform != league.PlatformESPN {
			t.Fatalf("platform filter leaked %+v", l)
		}
		ids = append(ids, l.LeagueID)
	}
	idxA, idxB := indexOf(ids, "list-a"), indexOf(ids, "list-b")
	if idxA < 0 || idxB < 0 || idxA > idxB {
		t.Fatalf("expected ordered espn leagues, got %v", ids)
	}
}

func TestRawPayloadRepository_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRawPayloadRepository(testDB)

	body := []byte(`{"id":1}`)
	item := rawdata.Payload{
		Source:      "espn",
		EntityType:  "settings",
		EntityKey:   "1/2022/settings",
		LeagueID:    "1",
		Season:      2022,
		PayloadJSON: body,
		PayloadHash: rawdata.HashPayload(body),
		FetchedAt:   time.Now().UTC(),
	}
	for i := 0; i < 2; i++ {
		if err := repo.UpsertMany(ctx, []rawdata.Payload{item}); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	var count int
	if err := testDB.GetContext(ctx, &count, `SELECT COUNT(*) FROM raw_platform_payloads WHERE entity_key = $1`, item.EntityKey); err != nil {
		t.Fatalf("count payloads: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one archived payload, got %d", count)
	}
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
