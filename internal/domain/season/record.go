package season

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
)

type Endpoint string

const (
	EndpointSettings   Endpoint = "settings"
	EndpointTeams      Endpoint = "teams"
	EndpointScoreboard Endpoint = "scoreboard"
	EndpointDraft      Endpoint = "draft"
	EndpointPlayers    Endpoint = "players"
)

// Endpoints is the fixed fetch order for one season.
var Endpoints = []Endpoint{EndpointSettings, EndpointTeams, EndpointScoreboard, EndpointDraft, EndpointPlayers}

const (
	AttrLeagueID   = "leagueId"
	AttrPlatform   = "platform"
	AttrSettings   = "settings"
	AttrTeams      = "teams"
	AttrScoreboard = "scoreboard"
	AttrPlayers    = "players"
	AttrDraftRecap = "draftRecap"
	AttrAllYears   = "allYears"
)

// ParseYear reads an optional season year. Blank means no explicit season;
// anything else must be a positive integer.
func ParseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("season %q is not an integer year", raw)
	}
	if year <= 0 {
		return 0, fmt.Errorf("season %q must be > 0", raw)
	}
	return year, nil
}

// ESPNEjectionsStatID is the ESPN category id for ejections.
const ESPNEjectionsStatID = 7

// Record is one assembled league season. The raw draft table is merged into
// DraftRecap and never kept.
type Record struct {
	LeagueID   string
	Platform   league.Platform
	Season     int
	Settings   *Table
	Teams      *Table
	Scoreboard *Table
	Players    *Table
	DraftRecap *Table
	AllSeasons []int
}

type NamedTable struct {
	Name  string
	Table *Table
}

func (r Record) Tables() []NamedTable {
	return []NamedTable{
		{Name: AttrSettings, Table: r.Settings},
		{Name: AttrTeams, Table: r.Teams},
		{Name: AttrScoreboard, Table: r.Scoreboard},
		{Name: AttrPlayers, Table: r.Players},
		{Name: AttrDraftRecap, Table: r.DraftRecap},
	}
}

func (r Record) Validate() error {
	if r.LeagueID == "" {
		return fmt.Errorf("league id is required")
	}
	if r.Season <= 0 {
		return fmt.Errorf("season must be > 0")
	}
	if r.Players == nil || r.DraftRecap == nil {
		return fmt.Errorf("players and draft recap tables are required")
	}
	return nil
}

func (r Record) Key() Key {
	return Key{Platform: r.Platform, LeagueID: r.LeagueID, Season: r.Season}
}

// Key addresses one stored league season.
type Key struct {
	Platform league.Platform
	LeagueID string
	Season   int
}

// Partition is "{platform}#{leagueId}".
func (k Key) Partition() string {
	return string(k.Platform) + "#" + k.LeagueID
}

func (k Key) String() string {
	return k.Partition() + "#" + strconv.Itoa(k.Season)
}
