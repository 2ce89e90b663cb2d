package season

// Column names of the normalized tables. Every platform normalizer emits
// exactly these columns.
const (
	ColLeagueID             = "leagueId"
	ColSeasonID             = "seasonId"
	ColLeagueName           = "leagueName"
	ColSize                 = "size"
	ColScoringType          = "scoringType"
	ColCategoryIDs          = "categoryIds"
	ColMatchupPeriodCount   = "matchupPeriodCount"
	ColCurrentMatchupPeriod = "currentMatchupPeriod"
	ColIsActive             = "isActive"
	ColDraftType            = "draftType"

	ColTeamID        = "teamId"
	ColAbbrev        = "abbrev"
	ColFullTeamName  = "fullTeamName"
	ColOwnerName     = "ownerName"
	ColWins          = "wins"
	ColLosses        = "losses"
	ColTies          = "ties"
	ColWinPercentage = "winPercentage"
	ColPointsFor     = "pointsFor"
	ColPointsAgainst = "pointsAgainst"
	ColPlayoffSeed   = "playoffSeed"
	ColFinalRank     = "finalRank"

	ColWeek           = "week"
	ColMatchupID      = "matchupId"
	ColOpponentTeamID = "opponentTeamId"
	ColIsHome         = "isHome"
	ColResult         = "result"
	ColStats          = "stats"

	ColPickNumber      = "pickNumber"
	ColRound           = "round"
	ColRoundPickNumber = "roundPickNumber"
	ColKeeper          = "keeper"

	ColPlayerID          = "playerId"
	ColPlayerName        = "playerName"
	ColProTeamID         = "proTeamId"
	ColPositionID        = "positionId"
	ColOnTeamID          = "onTeamId"
	ColPercentOwned      = "percentOwned"
	ColStatRatingsSeason = "statRatingsSeason"
	ColStatRatingsLast7  = "statRatingsLast7"
	ColStatRatingsLast15 = "statRatingsLast15"
	ColStatRatingsLast30 = "statRatingsLast30"

	ColRatingSeason     = "ratingSeason"
	ColRankingSeason    = "rankingSeason"
	ColRatingEjsSeason  = "ratingEjsSeason"
	ColRankingEjsSeason = "rankingEjsSeason"
)

var (
	SettingsColumns = []string{
		ColLeagueID, ColSeasonID, ColLeagueName, ColSize, ColScoringType, ColCategoryIDs,
		ColMatchupPeriodCount, ColCurrentMatchupPeriod, ColIsActive, ColDraftType,
	}
	TeamsColumns = []string{
		ColTeamID, ColAbbrev, ColFullTeamName, ColOwnerName, ColWins, ColLosses, ColTies,
		ColWinPercentage, ColPointsFor, ColPointsAgainst, ColPlayoffSeed, ColFinalRank,
	}
	ScoreboardColumns = []string{
		ColWeek, ColMatchupID, ColTeamID, ColOpponentTeamID, ColIsHome, ColWins, ColLosses, ColTies, ColResult, ColStats,
	}
	DraftColumns = []string{
		ColPickNumber, ColRound, ColRoundPickNumber, ColTeamID, ColPlayerID, ColKeeper,
	}
	PlayersColumns = []string{
		ColPlayerID, ColPlayerName, ColProTeamID, ColPositionID, ColOnTeamID, ColPercentOwned,
		ColStatRatingsSeason, ColStatRatingsLast7, ColStatRatingsLast15, ColStatRatingsLast30,
	}
)

// StatRatings maps a stat category id to a player's rating for it.
type StatRatings map[int64]float64

// Sum adds the ratings of the given categories; missing ids count zero.
func (r StatRatings) Sum(categories []int64) float64 {
	var total float64
	for _, id := range categories {
		total += r[id]
	}
	return total
}
