package espn

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/rawdata"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
)

// PlayersFilter caps the players view and sorts it by ownership.
const PlayersFilter = `{"players":{"limit":1000,"sortPercOwned":{"sortAsc":false,"sortPriority":1},"sortDraftRanks":{"sortPriority":100,"sortAsc":true,"value":"STANDARD"}}}`

type endpointView struct {
	views   []string
	headers map[string]string
}

var endpointViews = map[season.Endpoint]endpointView{
	season.EndpointSettings:   {views: []string{"mSettings"}},
	season.EndpointTeams:      {views: []string{"mTeam"}},
	season.EndpointScoreboard: {views: []string{"mScoreboard"}},
	season.EndpointDraft:      {views: []string{"mDraftDetail"}},
	season.EndpointPlayers: {
		views:   []string{"kona_player_info", "mStatRatings"},
		headers: map[string]string{"x-fantasy-filter": PlayersFilter},
	},
}

type SourceConfig struct {
	Archive  rawdata.Archive
	Logger   *logging.Logger
	Recorder usecase.Recorder
	Now      func() time.Time
}

// Source adapts Client to usecase.PlatformSource.
type Source struct {
	client   *Client
	archive  rawdata.Archive
	logger   *logging.Logger
	recorder usecase.Recorder
	now      func() time.Time
}

func NewSource(client *Client, cfg SourceConfig) *Source {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = usecase.NopRecorder{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Source{
		client:   client,
		archive:  cfg.Archive,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
		now:      cfg.Now,
	}
}

func (s *Source) Platform() league.Platform {
	return league.PlatformESPN
}

func (s *Source) EjectionsCategory() (int64, bool) {
	return season.ESPNEjectionsStatID, true
}

func (s *Source) Probe(ctx context.Context, req usecase.SeasonRequest) error {
	err := s.client.Probe(ctx, req.LeagueID, req.Season, req.Credential)
	s.recorder.ObserveFetch(string(league.PlatformESPN), "probe", fetchLabel(err))
	return err
}

func (s *Source) FetchEndpoint(ctx context.Context, req usecase.SeasonRequest, endpoint season.Endpoint) (*season.Table, error) {
	view, ok := endpointViews[endpoint]
	if !ok {
		return nil, &usecase.FetchFailure{Reason: usecase.ReasonUnknown, Cause: fmt.Errorf("unknown endpoint %q", endpoint)}
	}

	raw, err := s.client.FetchView(ctx, ViewRequest{
		LeagueID:   req.LeagueID,
		Season:     req.Season,
		Views:      view.views,
		Credential: req.Credential,
		Headers:    view.headers,
	})
	s.recorder.ObserveFetch(string(league.PlatformESPN), string(endpoint), fetchLabel(err))
	if err != nil {
		return nil, err
	}

	s.archivePayload(ctx, req, endpoint, raw)

	table, err := normalize(endpoint, raw)
	if err != nil {
		return nil, fmt.Errorf("normalize espn %s: %w", endpoint, err)
	}
	return table, nil
}

func (s *Source) archivePayload(ctx context.Context, req usecase.SeasonRequest, endpoint season.Endpoint, raw []byte) {
	if s.archive == nil {
		return
	}
	item := rawdata.Payload{
		Source:      string(league.PlatformESPN),
		EntityType:  string(endpoint),
		EntityKey:   req.LeagueID + "/" + strconv.Itoa(req.Season) + "/" + string(endpoint),
		LeagueID:    req.LeagueID,
		Season:      req.Season,
		PayloadJSON: raw,
		PayloadHash: rawdata.HashPayload(raw),
		FetchedAt:   s.now().UTC(),
	}
	if err := s.archive.UpsertMany(ctx, []rawdata.Payload{item}); err != nil {
		s.logger.WarnContext(ctx, "archive espn payload failed", "entity_key", item.EntityKey, "error", err)
	}
}

func fetchLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(usecase.FetchReasonOf(err))
}
