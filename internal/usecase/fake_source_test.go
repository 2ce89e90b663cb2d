package usecase

import (
	"context"
	"net/http"
	"sync"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
)

// fakeSource serves the same tables for every season listed in seasons.
type fakeSource struct {
	platform  league.Platform
	seasons   map[int]bool
	probeErr  map[int]error
	leagueErr map[string]error
	fetchErr  map[season.Endpoint]error
	tables    map[season.Endpoint]*season.Table
	ejections bool
	panicOn   string

	mu      sync.Mutex
	probes  []int
	fetches int
}

func newFakeSource(platform league.Platform, seasons ...int) *fakeSource {
	src := &fakeSource{
		platform:  platform,
		seasons:   make(map[int]bool),
		probeErr:  make(map[int]error),
		leagueErr: make(map[string]error),
		fetchErr:  make(map[season.Endpoint]error),
		tables:    sampleTables(true),
		ejections: platform == league.PlatformESPN,
	}
	for _, s := range seasons {
		src.seasons[s] = true
	}
	return src
}

func (f *fakeSource) Platform() league.Platform {
	return f.platform
}

func (f *fakeSource) Probe(_ context.Context, req SeasonRequest) error {
	f.mu.Lock()
	f.probes = append(f.probes, req.Season)
	f.mu.Unlock()

	if err, ok := f.leagueErr[req.LeagueID]; ok {
		return err
	}
	if err, ok := f.probeErr[req.Season]; ok {
		return err
	}
	if !f.seasons[req.Season] {
		return &FetchFailure{Reason: ReasonNotFound, StatusCode: http.StatusNotFound}
	}
	return nil
}

func (f *fakeSource) FetchEndpoint(_ context.Context, req SeasonRequest, endpoint season.Endpoint) (*season.Table, error) {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()

	if req.LeagueID == f.panicOn && f.panicOn != "" {
		panic("platform client exploded")
	}
	if err, ok := f.fetchErr[endpoint]; ok {
		return nil, err
	}
	return f.tables[endpoint], nil
}

func (f *fakeSource) EjectionsCategory() (int64, bool) {
	return season.ESPNEjectionsStatID, f.ejections
}

func (f *fakeSource) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.probes), f.fetches
}

func sampleTables(withEjections bool) map[season.Endpoint]*season.Table {
	categories := []int64{0, 1, 2, -1}
	if withEjections {
		categories = append(categories, season.ESPNEjectionsStatID)
	}

	settings := season.NewTable(season.SettingsColumns...)
	settings.Append("48375511", int64(2022), "Sample League", int64(10), "H2H_CATEGORY", categories, int64(20), int64(20), true, "SNAKE")

	teams := season.NewTable(season.TeamsColumns...)
	teams.Append(int64(3), "BOS", "Boston Ballers", "Sam Owner", int64(10), int64(5), int64(0), 0.667, 120.0, 80.0, int64(1), int64(1))

	scoreboard := season.NewTable(season.ScoreboardColumns...)
	scoreboard.Append(int64(1), int64(1), int64(3), int64(5), true, int64(6), int64(3), int64(0), "WIN", nil)

	draft := season.NewTable(season.DraftColumns...)
	draft.Append(int64(1), int64(1), int64(1), int64(5), int64(2), false)
	draft.Append(int64(2), int64(1), int64(2), int64(3), int64(1), false)
	draft.Append(int64(3), int64(1), int64(3), int64(4), int64(99), false)

	players := season.NewTable(season.PlayersColumns...)
	players.Append(int64(1), "Rostered Star", int64(7), int64(1), int64(3), 99.5, season.StatRatings{0: 1, 1: 2, season.ESPNEjectionsStatID: -1}, nil, nil, nil)
	players.Append(int64(2), "Drafted Free Agent", int64(8), int64(2), int64(0), 40.0, season.StatRatings{0: 4, 1: 4, 2: 1}, nil, nil, nil)
	players.Append(int64(3), "Undrafted Free Agent", int64(9), int64(3), int64(0), 1.0, season.StatRatings{0: 0.5}, nil, nil, nil)
	players.Append(int64(1), "Rostered Star Duplicate", int64(7), int64(1), int64(3), 99.5, season.StatRatings{0: 9}, nil, nil, nil)
	players.Append(int64(4), "Unrated Bench", int64(10), int64(4), int64(5), 12.0, nil, nil, nil, nil)

	return map[season.Endpoint]*season.Table{
		season.EndpointSettings:   settings,
		season.EndpointTeams:      teams,
		season.EndpointScoreboard: scoreboard,
		season.EndpointDraft:      draft,
		season.EndpointPlayers:    players,
	}
}

type fakeTokens struct {
	mu        sync.Mutex
	exchanged []string
	refreshed []string
	err       error
}

func (f *fakeTokens) Exchange(_ context.Context, authCode string) (league.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanged = append(f.exchanged, authCode)
	if f.err != nil {
		return league.Credential{}, f.err
	}
	return league.Credential{AccessToken: "access-from-code", RefreshToken: "refresh-from-code"}, nil
}

func (f *fakeTokens) Refresh(_ context.Context, refreshToken string) (league.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, refreshToken)
	if f.err != nil {
		return league.Credential{}, f.err
	}
	return league.Credential{AccessToken: "access-from-refresh", RefreshToken: refreshToken}, nil
}
