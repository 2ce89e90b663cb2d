package yahoo

// fantasyContent is the root element of every Yahoo Fantasy API response.
type fantasyContent struct {
	Games  []gameNode  `xml:"games>game"`
	League *leagueNode `xml:"league"`
}

type gameNode struct {
	GameKey string `xml:"game_key"`
	Code    string `xml:"code"`
	Season  int    `xml:"season"`
}

type leagueNode struct {
	LeagueKey   string `xml:"league_key"`
	LeagueID    string `xml:"league_id"`
	Name        string `xml:"name"`
	NumTeams    int64  `xml:"num_teams"`
	ScoringType string `xml:"scoring_type"`
	CurrentWeek int64  `xml:"current_week"`
	StartWeek   int64  `xml:"start_week"`
	EndWeek     int64  `xml:"end_week"`
	IsFinished  int64  `xml:"is_finished"`
	Season      int64  `xml:"season"`

	Settings     *settingsNode     `xml:"settings"`
	Standings    []teamNode        `xml:"standings>teams>team"`
	Matchups     []matchupNode     `xml:"scoreboard>matchups>matchup"`
	DraftResults []draftResultNode `xml:"draft_results>draft_result"`
	Teams        []teamNode        `xml:"teams>team"`
}

type settingsNode struct {
	DraftType      string         `xml:"draft_type"`
	StatCategories []statCategory `xml:"stat_categories>stats>stat"`
}

type statCategory struct {
	StatID            int64 `xml:"stat_id"`
	IsOnlyDisplayStat int64 `xml:"is_only_display_stat"`
}

type teamNode struct {
	TeamKey   string        `xml:"team_key"`
	TeamID    int64         `xml:"team_id"`
	Name      string        `xml:"name"`
	Managers  []managerNode `xml:"managers>manager"`
	Standings standingsNode `xml:"team_standings"`
	Stats     []statNode    `xml:"team_stats>stats>stat"`
	Players   []playerNode  `xml:"roster>players>player"`
}

type managerNode struct {
	Nickname string `xml:"nickname"`
}

type standingsNode struct {
	Rank          int64   `xml:"rank"`
	PlayoffSeed   int64   `xml:"playoff_seed"`
	Wins          int64   `xml:"outcome_totals>wins"`
	Losses        int64   `xml:"outcome_totals>losses"`
	Ties          int64   `xml:"outcome_totals>ties"`
	Percentage    float64 `xml:"outcome_totals>percentage"`
	PointsFor     float64 `xml:"points_for"`
	PointsAgainst float64 `xml:"points_against"`
}

// statNode values are text because Yahoo reports missing stats as "-".
type statNode struct {
	StatID int64  `xml:"stat_id"`
	Value  string `xml:"value"`
}

type statWinnerNode struct {
	StatID        int64  `xml:"stat_id"`
	WinnerTeamKey string `xml:"winner_team_key"`
	IsTied        int64  `xml:"is_tied"`
}

type matchupNode struct {
	Week          int64            `xml:"week"`
	Status        string           `xml:"status"`
	IsTied        int64            `xml:"is_tied"`
	WinnerTeamKey string           `xml:"winner_team_key"`
	StatWinners   []statWinnerNode `xml:"stat_winners>stat_winner"`
	Teams         []teamNode       `xml:"teams>team"`
}

type draftResultNode struct {
	Pick      int64  `xml:"pick"`
	Round     int64  `xml:"round"`
	TeamKey   string `xml:"team_key"`
	PlayerKey string `xml:"player_key"`
}

type playerNode struct {
	PlayerKey        string     `xml:"player_key"`
	PlayerID         int64      `xml:"player_id"`
	FullName         string     `xml:"name>full"`
	EditorialTeamKey string     `xml:"editorial_team_key"`
	PrimaryPosition  string     `xml:"primary_position"`
	PercentOwned     float64    `xml:"percent_owned>value"`
	Stats            []statNode `xml:"player_stats>stats>stat"`
}
