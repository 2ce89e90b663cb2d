package yahoo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
)

func normalize(endpoint season.Endpoint, content *fantasyContent) (*season.Table, error) {
	if content == nil || content.League == nil {
		return nil, fmt.Errorf("yahoo %s response has no league", endpoint)
	}
	lg := content.League

	switch endpoint {
	case season.EndpointSettings:
		return normalizeSettings(lg), nil
	case season.EndpointTeams:
		return normalizeTeams(lg.Standings), nil
	case season.EndpointScoreboard:
		return normalizeScoreboard(lg.Matchups), nil
	case season.EndpointDraft:
		return normalizeDraft(lg.DraftResults), nil
	case season.EndpointPlayers:
		return normalizePlayers(lg.Teams), nil
	default:
		return nil, fmt.Errorf("unknown endpoint %q", endpoint)
	}
}

func normalizeSettings(lg *leagueNode) *season.Table {
	var (
		draftType  string
		categories = make([]int64, 0)
	)
	if lg.Settings != nil {
		draftType = lg.Settings.DraftType
		for _, stat := range lg.Settings.StatCategories {
			if stat.IsOnlyDisplayStat == 1 {
				continue
			}
			categories = append(categories, stat.StatID)
		}
	}

	var periods int64
	if lg.StartWeek > 0 && lg.EndWeek >= lg.StartWeek {
		periods = lg.EndWeek - lg.StartWeek + 1
	}

	out := season.NewTable(season.SettingsColumns...)
	out.Append(
		strings.TrimSpace(lg.LeagueID),
		lg.Season,
		lg.Name,
		lg.NumTeams,
		lg.ScoringType,
		categories,
		periods,
		lg.CurrentWeek,
		lg.IsFinished == 0,
		draftType,
	)
	return out
}

func normalizeTeams(teams []teamNode) *season.Table {
	out := season.NewTable(season.TeamsColumns...)
	for _, team := range teams {
		var owner any
		if len(team.Managers) > 0 && team.Managers[0].Nickname != "" {
			owner = team.Managers[0].Nickname
		}
		st := team.Standings
		out.Append(
			team.TeamID,
			nil,
			team.Name,
			owner,
			st.Wins,
			st.Losses,
			st.Ties,
			st.Percentage,
			st.PointsFor,
			st.PointsAgainst,
			st.PlayoffSeed,
			st.Rank,
		)
	}
	return out
}

func normalizeScoreboard(matchups []matchupNode) *season.Table {
	out := season.NewTable(season.ScoreboardColumns...)
	for i, m := range matchups {
		if len(m.Teams) != 2 {
			continue
		}
		matchupID := int64(i + 1)
		for side, team := range m.Teams {
			opponent := m.Teams[1-side]
			wins, losses, ties := categoryRecord(m.StatWinners, team.TeamKey)
			out.Append(
				m.Week,
				matchupID,
				team.TeamID,
				opponent.TeamID,
				side == 0,
				wins,
				losses,
				ties,
				matchupResult(m, team.TeamKey),
				statValues(team.Stats),
			)
		}
	}
	return out
}

func categoryRecord(winners []statWinnerNode, teamKey string) (wins, losses, ties int64) {
	for _, w := range winners {
		switch {
		case w.IsTied == 1:
			ties++
		case w.WinnerTeamKey == teamKey:
			wins++
		case w.WinnerTeamKey != "":
			losses++
		}
	}
	return wins, losses, ties
}

func matchupResult(m matchupNode, teamKey string) string {
	switch {
	case m.IsTied == 1:
		return "TIE"
	case m.WinnerTeamKey == "":
		return "UNDECIDED"
	case m.WinnerTeamKey == teamKey:
		return "WIN"
	default:
		return "LOSS"
	}
}

func normalizeDraft(results []draftResultNode) *season.Table {
	out := season.NewTable(season.DraftColumns...)
	inRound := make(map[int64]int64)
	for _, pick := range results {
		inRound[pick.Round]++
		out.Append(
			pick.Pick,
			pick.Round,
			inRound[pick.Round],
			keySuffix(pick.TeamKey, ".t."),
			keySuffix(pick.PlayerKey, ".p."),
			false,
		)
	}
	return out
}

func normalizePlayers(teams []teamNode) *season.Table {
	out := season.NewTable(season.PlayersColumns...)
	for _, team := range teams {
		for _, p := range team.Players {
			playerID := p.PlayerID
			if playerID == 0 {
				playerID = keySuffix(p.PlayerKey, ".p.")
			}
			out.Append(
				playerID,
				p.FullName,
				keySuffix(p.EditorialTeamKey, ".t."),
				p.PrimaryPosition,
				team.TeamID,
				p.PercentOwned,
				playerRatings(p.Stats),
				nil,
				nil,
				nil,
			)
		}
	}
	return out
}

// playerRatings uses season stat values as ratings; nil when Yahoo sent none.
func playerRatings(stats []statNode) any {
	out := make(season.StatRatings, len(stats))
	for _, stat := range stats {
		if v, ok := parseStat(stat.Value); ok {
			out[stat.StatID] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func statValues(stats []statNode) map[string]float64 {
	if len(stats) == 0 {
		return nil
	}
	out := make(map[string]float64, len(stats))
	for _, stat := range stats {
		if v, ok := parseStat(stat.Value); ok {
			out[strconv.FormatInt(stat.StatID, 10)] = v
		}
	}
	return out
}

func parseStat(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" || v == "-" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// keySuffix extracts the numeric id after marker, e.g. 418.p.5471 -> 5471.
func keySuffix(key, marker string) int64 {
	idx := strings.LastIndex(key, marker)
	if idx < 0 {
		return 0
	}
	n, err := strconv.ParseInt(key[idx+len(marker):], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
