package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
)

type AssemblyRequest struct {
	SeasonRequest
	// AllSeasons is attached only on the defining run of a season list.
	AllSeasons []int
}

// Assembler fetches every endpoint of a season and merges them into one record.
type Assembler struct {
	logger *logging.Logger
}

func NewAssembler(logger *logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Assembler{logger: logger}
}

func (a *Assembler) Assemble(ctx context.Context, source PlatformSource, req AssemblyRequest) (season.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Assembler.Assemble")
	defer span.End()

	req.LeagueID = strings.TrimSpace(req.LeagueID)
	if req.LeagueID == "" || req.Season <= 0 {
		return season.Record{}, &AssemblyFailure{Season: req.Season, Cause: fmt.Errorf("%w: league id and season are required", ErrInvalidInput)}
	}

	tables := make(map[season.Endpoint]*season.Table, len(season.Endpoints))
	for _, endpoint := range season.Endpoints {
		tbl, err := source.FetchEndpoint(ctx, req.SeasonRequest, endpoint)
		if err != nil {
			return season.Record{}, &AssemblyFailure{Season: req.Season, Endpoint: endpoint, Cause: err}
		}
		if tbl == nil {
			tbl = season.NewTable()
		}
		tables[endpoint] = tbl
	}

	ejectionsID, platformHasEjections := source.EjectionsCategory()
	categories := leagueCategories(tables[season.EndpointSettings])
	withEjections := platformHasEjections && containsID(categories, ejectionsID)

	rated := ratePlayers(tables[season.EndpointPlayers], categories, ejectionsID, withEjections)
	draft := tables[season.EndpointDraft]

	recapColumns := []string{season.ColPickNumber, season.ColRound, season.ColPlayerName, season.ColTeamID, season.ColRatingSeason, season.ColRankingSeason}
	playerColumns := []string{
		season.ColPlayerID, season.ColPlayerName, season.ColProTeamID, season.ColPositionID,
		season.ColOnTeamID, season.ColPercentOwned, season.ColRatingSeason, season.ColRankingSeason,
	}
	if withEjections {
		recapColumns = append(recapColumns, season.ColRatingEjsSeason, season.ColRankingEjsSeason)
		playerColumns = append(playerColumns, season.ColRatingEjsSeason, season.ColRankingEjsSeason)
	}

	recap := draft.LeftJoin(rated, season.ColPlayerID).Select(recapColumns...)
	players := truncatePlayers(rated, draft).Select(playerColumns...)

	record := season.Record{
		LeagueID:   req.LeagueID,
		Platform:   source.Platform(),
		Season:     req.Season,
		Settings:   tables[season.EndpointSettings],
		Teams:      tables[season.EndpointTeams],
		Scoreboard: tables[season.EndpointScoreboard],
		Players:    players,
		DraftRecap: recap,
		AllSeasons: append([]int(nil), req.AllSeasons...),
	}
	if len(record.AllSeasons) == 0 {
		record.AllSeasons = nil
	}
	if err := record.Validate(); err != nil {
		return season.Record{}, &AssemblyFailure{Season: req.Season, Cause: err}
	}

	a.logger.DebugContext(ctx, "season assembled",
		"league_id", req.LeagueID,
		"season", req.Season,
		"players", players.Len(),
		"draft_picks", recap.Len(),
		"ejections", withEjections,
	)
	return record, nil
}

// leagueCategories reads the scored stat ids from the first settings row.
func leagueCategories(settings *season.Table) []int64 {
	if settings.Len() == 0 {
		return nil
	}
	raw := settings.Rows[0][season.ColCategoryIDs]
	out := make([]int64, 0)
	switch ids := raw.(type) {
	case []int64:
		for _, id := range ids {
			if id >= 0 {
				out = append(out, id)
			}
		}
	case []any:
		for _, v := range ids {
			if n, ok := season.Number(v); ok && n >= 0 {
				out = append(out, int64(n))
			}
		}
	}
	return out
}

// ratePlayers derives the season rating summaries and their rankings.
func ratePlayers(players *season.Table, categories []int64, ejectionsID int64, withEjections bool) *season.Table {
	columns := append([]string(nil), players.Columns...)
	columns = append(columns, season.ColRatingSeason)
	if withEjections {
		columns = append(columns, season.ColRatingEjsSeason)
	}
	withoutEjections := make([]int64, 0, len(categories))
	for _, id := range categories {
		if id != ejectionsID {
			withoutEjections = append(withoutEjections, id)
		}
	}

	out := season.NewTable(columns...)
	out.Rows = make([]season.Row, 0, players.Len())
	for _, row := range players.Rows {
		derived := make(season.Row, len(columns)+2)
		for k, v := range row {
			derived[k] = v
		}
		derived[season.ColRatingSeason] = nil
		if withEjections {
			derived[season.ColRatingEjsSeason] = nil
		}
		if ratings, ok := row[season.ColStatRatingsSeason].(season.StatRatings); ok && ratings != nil {
			derived[season.ColRatingSeason] = ratings.Sum(withoutEjections)
			if withEjections {
				derived[season.ColRatingEjsSeason] = ratings.Sum(categories)
			}
		}
		out.Rows = append(out.Rows, derived)
	}

	out.RankMinDescending(season.ColRatingSeason, season.ColRankingSeason)
	if withEjections {
		out.RankMinDescending(season.ColRatingEjsSeason, season.ColRankingEjsSeason)
	}
	return out
}

// truncatePlayers keeps rostered or drafted players, once each.
func truncatePlayers(players, draft *season.Table) *season.Table {
	drafted := make(map[string]struct{}, draft.Len())
	for _, v := range draft.Column(season.ColPlayerID) {
		if key, ok := season.JoinKey(v); ok {
			drafted[key] = struct{}{}
		}
	}

	return players.Filter(func(row season.Row) bool {
		if team, ok := season.Number(row[season.ColOnTeamID]); ok && team != 0 {
			return true
		}
		key, ok := season.JoinKey(row[season.ColPlayerID])
		if !ok {
			return false
		}
		_, isDrafted := drafted[key]
		return isDrafted
	}).DedupBy(season.ColPlayerID)
}

func containsID(ids []int64, target int64) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
