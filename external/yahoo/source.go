package yahoo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/rawdata"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
)

const defaultGameCode = "nba"

var endpointPaths = map[season.Endpoint]string{
	season.EndpointSettings:   "/settings",
	season.EndpointTeams:      "/standings",
	season.EndpointScoreboard: "/scoreboard",
	season.EndpointDraft:      "/draftresults",
	season.EndpointPlayers:    "/teams/roster",
}

type SourceConfig struct {
	GameCode string
	Archive  rawdata.Archive
	Logger   *logging.Logger
	Recorder usecase.Recorder
	Now      func() time.Time
}

// Source adapts Client to usecase.PlatformSource. Requests must carry an
// access token obtained through TokenExchanger.
type Source struct {
	client   *Client
	gameCode string
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
	gameCode := strings.TrimSpace(cfg.GameCode)
	if gameCode == "" {
		gameCode = defaultGameCode
	}
	return &Source{
		client:   client,
		gameCode: gameCode,
		archive:  cfg.Archive,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
		now:      cfg.Now,
	}
}

func (s *Source) Platform() league.Platform {
	return league.PlatformYahoo
}

func (s *Source) EjectionsCategory() (int64, bool) {
	return 0, false
}

func (s *Source) Probe(ctx context.Context, req usecase.SeasonRequest) error {
	leagueKey, err := s.leagueKey(ctx, req)
	if err == nil {
		_, _, err = s.client.Get(ctx, req.Credential.AccessToken, "/league/"+leagueKey)
	}
	s.recorder.ObserveFetch(string(league.PlatformYahoo), "probe", fetchLabel(err))
	return err
}

func (s *Source) FetchEndpoint(ctx context.Context, req usecase.SeasonRequest, endpoint season.Endpoint) (*season.Table, error) {
	suffix, ok := endpointPaths[endpoint]
	if !ok {
		return nil, &usecase.FetchFailure{Reason: usecase.ReasonUnknown, Cause: fmt.Errorf("unknown endpoint %q", endpoint)}
	}

	leagueKey, err := s.leagueKey(ctx, req)
	var (
		content *fantasyContent
		raw     []byte
	)
	if err == nil {
		content, raw, err = s.client.Get(ctx, req.Credential.AccessToken, "/league/"+leagueKey+suffix)
	}
	s.recorder.ObserveFetch(string(league.PlatformYahoo), string(endpoint), fetchLabel(err))
	if err != nil {
		return nil, err
	}

	s.archivePayload(ctx, req, endpoint, raw)

	table, err := normalize(endpoint, content)
	if err != nil {
		return nil, fmt.Errorf("normalize yahoo %s: %w", endpoint, err)
	}
	return table, nil
}

func (s *Source) leagueKey(ctx context.Context, req usecase.SeasonRequest) (string, error) {
	leagueID := strings.TrimSpace(req.LeagueID)
	if leagueID == "" || req.Season <= 0 {
		return "", &usecase.FetchFailure{Reason: usecase.ReasonUnknown, Cause: fmt.Errorf("%w: league id and season are required", usecase.ErrInvalidInput)}
	}
	gameKey, err := s.client.GameKey(ctx, req.Credential.AccessToken, s.gameCode, req.Season)
	if err != nil {
		return "", err
	}
	return gameKey + ".l." + leagueID, nil
}

func (s *Source) archivePayload(ctx context.Context, req usecase.SeasonRequest, endpoint season.Endpoint, raw []byte) {
	if s.archive == nil {
		return
	}
	// The archive stores JSON documents; Yahoo answers in XML.
	wrapped, err := sonic.Marshal(map[string]string{"format": "xml", "body": string(raw)})
	if err != nil {
		s.logger.WarnContext(ctx, "wrap yahoo payload failed", "error", err)
		return
	}
	item := rawdata.Payload{
		Source:      string(league.PlatformYahoo),
		EntityType:  string(endpoint),
		EntityKey:   req.LeagueID + "/" + strconv.Itoa(req.Season) + "/" + string(endpoint),
		LeagueID:    req.LeagueID,
		Season:      req.Season,
		PayloadJSON: wrapped,
		PayloadHash: rawdata.HashPayload(raw),
		FetchedAt:   s.now().UTC(),
	}
	if err := s.archive.UpsertMany(ctx, []rawdata.Payload{item}); err != nil {
		s.logger.WarnContext(ctx, "archive yahoo payload failed", "entity_key", item.EntityKey, "error", err)
	}
}

func fetchLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(usecase.FetchReasonOf(err))
}
