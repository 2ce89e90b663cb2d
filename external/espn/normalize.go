package espn

import (
	"fmt"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
)

type settingsPayload struct {
	ID       int64 `json:"id"`
	SeasonID int64 `json:"seasonId"`
	Settings struct {
		Name            string `json:"name"`
		Size            int64  `json:"size"`
		ScoringSettings struct {
			ScoringType  string `json:"scoringType"`
			ScoringItems []struct {
				StatID int64 `json:"statId"`
			} `json:"scoringItems"`
		} `json:"scoringSettings"`
		ScheduleSettings struct {
			MatchupPeriodCount int64 `json:"matchupPeriodCount"`
		} `json:"scheduleSettings"`
		DraftSettings struct {
			Type string `json:"type"`
		} `json:"draftSettings"`
	} `json:"settings"`
	Status struct {
		CurrentMatchupPeriod int64 `json:"currentMatchupPeriod"`
		IsActive             bool  `json:"isActive"`
	} `json:"status"`
}

type teamsPayload struct {
	Teams []struct {
		ID       int64    `json:"id"`
		Abbrev   string   `json:"abbrev"`
		Name     string   `json:"name"`
		Location string   `json:"location"`
		Nickname string   `json:"nickname"`
		Owners   []string `json:"owners"`
		Record   struct {
			Overall struct {
				Wins          int64   `json:"wins"`
				Losses        int64   `json:"losses"`
				Ties          int64   `json:"ties"`
				Percentage    float64 `json:"percentage"`
				PointsFor     float64 `json:"pointsFor"`
				PointsAgainst float64 `json:"pointsAgainst"`
			} `json:"overall"`
		} `json:"record"`
		PlayoffSeed         int64 `json:"playoffSeed"`
		RankCalculatedFinal int64 `json:"rankCalculatedFinal"`
	} `json:"teams"`
	Members []struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
	} `json:"members"`
}

type matchupSide struct {
	TeamID          int64   `json:"teamId"`
	TotalPoints     float64 `json:"totalPoints"`
	CumulativeScore struct {
		Wins        int64 `json:"wins"`
		Losses      int64 `json:"losses"`
		Ties        int64 `json:"ties"`
		ScoreByStat map[string]struct {
			Score float64 `json:"score"`
		} `json:"scoreByStat"`
	} `json:"cumulativeScore"`
}

type scoreboardPayload struct {
	Schedule []struct {
		ID              int64        `json:"id"`
		MatchupPeriodID int64        `json:"matchupPeriodId"`
		Home            *matchupSide `json:"home"`
		Away            *matchupSide `json:"away"`
		Winner          string       `json:"winner"`
	} `json:"schedule"`
}

type draftPayload struct {
	DraftDetail struct {
		Picks []struct {
			OverallPickNumber int64 `json:"overallPickNumber"`
			RoundID           int64 `json:"roundId"`
			RoundPickNumber   int64 `json:"roundPickNumber"`
			TeamID            int64 `json:"teamId"`
			PlayerID          int64 `json:"playerId"`
			Keeper            bool  `json:"keeper"`
		} `json:"picks"`
	} `json:"draftDetail"`
}

type ratingPeriod struct {
	TotalRating  float64 `json:"totalRating"`
	TotalRanking int64   `json:"totalRanking"`
	StatRankings []struct {
		ForStat int64   `json:"forStat"`
		Rating  float64 `json:"rating"`
	} `json:"statRankings"`
}

type playersPayload struct {
	Players []struct {
		ID       int64 `json:"id"`
		OnTeamID int64 `json:"onTeamId"`
		Player   struct {
			FullName          string `json:"fullName"`
			DefaultPositionID int64  `json:"defaultPositionId"`
			ProTeamID         int64  `json:"proTeamId"`
			Ownership         struct {
				PercentOwned float64 `json:"percentOwned"`
			} `json:"ownership"`
		} `json:"player"`
		Ratings map[string]ratingPeriod `json:"ratings"`
	} `json:"players"`
}

// ESPN rating period keys.
const (
	ratingPeriodSeason = "0"
	ratingPeriodLast7  = "1"
	ratingPeriodLast15 = "2"
	ratingPeriodLast30 = "3"
)

func normalize(endpoint season.Endpoint, raw []byte) (*season.Table, error) {
	switch endpoint {
	case season.EndpointSettings:
		return normalizeSettings(raw)
	case season.EndpointTeams:
		return normalizeTeams(raw)
	case season.EndpointScoreboard:
		return normalizeScoreboard(raw)
	case season.EndpointDraft:
		return normalizeDraft(raw)
	case season.EndpointPlayers:
		return normalizePlayers(raw)
	default:
		return nil, fmt.Errorf("unknown endpoint %q", endpoint)
	}
}

func normalizeSettings(raw []byte) (*season.Table, error) {
	var payload settingsPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode settings payload: %w", err)
	}

	categories := make([]int64, 0, len(payload.Settings.ScoringSettings.ScoringItems))
	for _, item := range payload.Settings.ScoringSettings.ScoringItems {
		categories = append(categories, item.StatID)
	}

	out := season.NewTable(season.SettingsColumns...)
	out.Append(
		strconv.FormatInt(payload.ID, 10),
		payload.SeasonID,
		payload.Settings.Name,
		payload.Settings.Size,
		payload.Settings.ScoringSettings.ScoringType,
		categories,
		payload.Settings.ScheduleSettings.MatchupPeriodCount,
		payload.Status.CurrentMatchupPeriod,
		payload.Status.IsActive,
		payload.Settings.DraftSettings.Type,
	)
	return out, nil
}

func normalizeTeams(raw []byte) (*season.Table, error) {
	var payload teamsPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode teams payload: %w", err)
	}

	owners := make(map[string]string, len(payload.Members))
	for _, m := range payload.Members {
		name := strings.TrimSpace(m.FirstName + " " + m.LastName)
		if name == "" {
			name = m.DisplayName
		}
		owners[m.ID] = name
	}

	out := season.NewTable(season.TeamsColumns...)
	for _, team := range payload.Teams {
		name := strings.TrimSpace(team.Name)
		if name == "" {
			name = strings.TrimSpace(team.Location + " " + team.Nickname)
		}
		var owner any
		if len(team.Owners) > 0 {
			if resolved, ok := owners[team.Owners[0]]; ok {
				owner = resolved
			}
		}
		overall := team.Record.Overall
		out.Append(
			team.ID,
			team.Abbrev,
			name,
			owner,
			overall.Wins,
			overall.Losses,
			overall.Ties,
			overall.Percentage,
			overall.PointsFor,
			overall.PointsAgainst,
			team.PlayoffSeed,
			team.RankCalculatedFinal,
		)
	}
	return out, nil
}

func normalizeScoreboard(raw []byte) (*season.Table, error) {
	var payload scoreboardPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode scoreboard payload: %w", err)
	}

	out := season.NewTable(season.ScoreboardColumns...)
	for _, m := range payload.Schedule {
		if m.Home != nil {
			appendMatchupSide(out, m.MatchupPeriodID, m.ID, m.Home, m.Away, true, sideResult(m.Winner, "HOME"))
		}
		if m.Away != nil {
			appendMatchupSide(out, m.MatchupPeriodID, m.ID, m.Away, m.Home, false, sideResult(m.Winner, "AWAY"))
		}
	}
	return out, nil
}

func appendMatchupSide(out *season.Table, week, matchupID int64, side, opponent *matchupSide, isHome bool, result string) {
	var opponentID any
	if opponent != nil {
		opponentID = opponent.TeamID
	}
	var stats map[string]float64
	if len(side.CumulativeScore.ScoreByStat) > 0 {
		stats = make(map[string]float64, len(side.CumulativeScore.ScoreByStat))
		for statID, score := range side.CumulativeScore.ScoreByStat {
			stats[statID] = score.Score
		}
	}
	out.Append(
		week,
		matchupID,
		side.TeamID,
		opponentID,
		isHome,
		side.CumulativeScore.Wins,
		side.CumulativeScore.Losses,
		side.CumulativeScore.Ties,
		result,
		stats,
	)
}

func sideResult(winner, side string) string {
	switch winner {
	case side:
		return "WIN"
	case "TIE":
		return "TIE"
	case "HOME", "AWAY":
		return "LOSS"
	default:
		return "UNDECIDED"
	}
}

func normalizeDraft(raw []byte) (*season.Table, error) {
	var payload draftPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode draft payload: %w", err)
	}

	out := season.NewTable(season.DraftColumns...)
	for _, pick := range payload.DraftDetail.Picks {
		out.Append(pick.OverallPickNumber, pick.RoundID, pick.RoundPickNumber, pick.TeamID, pick.PlayerID, pick.Keeper)
	}
	return out, nil
}

func normalizePlayers(raw []byte) (*season.Table, error) {
	var payload playersPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode players payload: %w", err)
	}

	out := season.NewTable(season.PlayersColumns...)
	for _, p := range payload.Players {
		out.Append(
			p.ID,
			p.Player.FullName,
			p.Player.ProTeamID,
			p.Player.DefaultPositionID,
			p.OnTeamID,
			p.Player.Ownership.PercentOwned,
			statRatings(p.Ratings, ratingPeriodSeason),
			statRatings(p.Ratings, ratingPeriodLast7),
			statRatings(p.Ratings, ratingPeriodLast15),
			statRatings(p.Ratings, ratingPeriodLast30),
		)
	}
	return out, nil
}

// statRatings returns nil when the period is absent.
func statRatings(periods map[string]ratingPeriod, key string) any {
	period, ok := periods[key]
	if !ok {
		return nil
	}
	out := make(season.StatRatings, len(period.StatRankings))
	for _, stat := range period.StatRankings {
		out[stat.ForStat] = stat.Rating
	}
	return out
}
