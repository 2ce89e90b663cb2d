package lambdaapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
)

const (
	pathActivate = "/league-id"
	pathViews    = "/league-info"
)

type LeagueActivator interface {
	Activate(ctx context.Context, req usecase.ActivationRequest) usecase.ActivationResult
}

type ViewTracker interface {
	Track(ctx context.Context, req usecase.ViewUpdateRequest) error
}

// Handler serves the API Gateway proxy surface. Parameters arrive as query
// string values.
type Handler struct {
	activation LeagueActivator
	views      ViewTracker
	logger     *logging.Logger
	validator  *validator.Validate
}

func NewHandler(activation LeagueActivator, views ViewTracker, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		activation: activation,
		views:      views,
		logger:     logger,
		validator:  validator.New(),
	}
}

type activateQuery struct {
	LeagueID          string `validate:"required,max=64"`
	Platform          string `validate:"required,oneof=espn yahoo"`
	EspnS2            string
	SWID              string
	YahooAuthCode     string
	YahooRefreshToken string
	LeagueYear        string `validate:"omitempty,number"`
}

type viewQuery struct {
	LeagueID string `validate:"required,max=64"`
	Method   string `validate:"required,oneof=lastViewed lastUpdated"`
	Platform string `validate:"omitempty,oneof=espn yahoo"`
}

type activationBody struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Seasons []int  `json:"seasons,omitempty"`
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := strings.TrimRight(req.Path, "/")
	switch path {
	case pathActivate:
		return h.activate(ctx, req.QueryStringParameters)
	case pathViews:
		return h.trackView(ctx, req.QueryStringParameters)
	default:
		return respond(http.StatusNotFound, map[string]string{"failure": "unknown path " + req.Path})
	}
}

func (h *Handler) activate(ctx context.Context, params map[string]string) (events.APIGatewayProxyResponse, error) {
	query := activateQuery{
		LeagueID:          strings.TrimSpace(params["leagueId"]),
		Platform:          strings.ToLower(strings.TrimSpace(params["platform"])),
		EspnS2:            params["cookieEspnS2"],
		SWID:              params["cookieSwid"],
		YahooAuthCode:     params["yahooAuthCode"],
		YahooRefreshToken: params["yahooRefreshToken"],
		LeagueYear:        strings.TrimSpace(params["leagueYear"]),
	}
	if query.Platform == "" {
		query.Platform = string(league.PlatformESPN)
	}
	if err := h.validator.StructCtx(ctx, query); err != nil {
		outcome := usecase.Failed(fmt.Sprintf("%s: validation failed: %v", usecase.ErrInvalidInput, err))
		return respond(http.StatusOK, activationBody{Status: outcome.Label(), Error: outcome.Detail})
	}

	seasonYear, err := season.ParseYear(query.LeagueYear)
	if err != nil {
		outcome := usecase.Failed(fmt.Sprintf("%s: leagueYear: %v", usecase.ErrInvalidInput, err))
		return respond(http.StatusOK, activationBody{Status: outcome.Label(), Error: outcome.Detail})
	}

	result := h.activation.Activate(ctx, usecase.ActivationRequest{
		LeagueID: query.LeagueID,
		Platform: league.Platform(query.Platform),
		Credential: league.Credential{
			EspnS2:       query.EspnS2,
			SWID:         query.SWID,
			AuthCode:     query.YahooAuthCode,
			RefreshToken: query.YahooRefreshToken,
		},
		Season: seasonYear,
	})
	return respond(http.StatusOK, activationBody{
		Status:  result.Outcome.Label(),
		Error:   result.Outcome.Detail,
		Seasons: result.Seasons,
	})
}

func (h *Handler) trackView(ctx context.Context, params map[string]string) (events.APIGatewayProxyResponse, error) {
	query := viewQuery{
		LeagueID: strings.TrimSpace(params["leagueId"]),
		Method:   strings.TrimSpace(params["method"]),
		Platform: strings.ToLower(strings.TrimSpace(params["platform"])),
	}
	if err := h.validator.StructCtx(ctx, query); err != nil {
		return respond(http.StatusBadRequest, map[string]string{"failure": err.Error()})
	}

	err := h.views.Track(ctx, usecase.ViewUpdateRequest{
		LeagueID: query.LeagueID,
		Method:   usecase.ViewMethod(query.Method),
		Platform: league.Platform(query.Platform),
	})
	switch {
	case err == nil:
		return respond(http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, usecase.ErrNotFound):
		return respond(http.StatusNotFound, map[string]string{"failure": "update failed"})
	default:
		h.logger.ErrorContext(ctx, "track league view failed", "league_id", query.LeagueID, "method", query.Method, "error", err)
		return respond(http.StatusInternalServerError, map[string]string{"failure": "update failed"})
	}
}

func respond(status int, body any) (events.APIGatewayProxyResponse, error) {
	encoded, err := sonic.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("encode response: %w", err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(encoded),
	}, nil
}
