package espn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/fba"
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 16 << 20
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	RateLimit      float64
	RateBurst      int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads league views from the ESPN fantasy API. It never retries;
// every failure comes back as *usecase.FetchFailure.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

// ViewRequest selects one or more views of a league season.
type ViewRequest struct {
	LeagueID   string
	Season     int
	Views      []string
	Credential league.Credential
	Headers    map[string]string
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	breakerCfg := cfg.CircuitBreaker
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("espn circuit breaker state changed", "from", string(from), "to", string(to))
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(breakerCfg),
	}
}

// FetchView returns the raw JSON body for the requested views.
func (c *Client) FetchView(ctx context.Context, req ViewRequest) ([]byte, error) {
	if len(req.Views) == 0 {
		return nil, &usecase.FetchFailure{Reason: usecase.ReasonUnknown, Cause: fmt.Errorf("%w: at least one view is required", usecase.ErrInvalidInput)}
	}
	return c.do(ctx, req)
}

// Probe issues a view-less request; nil means the season exists and the
// credential can read it.
func (c *Client) Probe(ctx context.Context, leagueID string, season int, cred league.Credential) error {
	_, err := c.do(ctx, ViewRequest{LeagueID: leagueID, Season: season, Credential: cred})
	return err
}

func (c *Client) do(ctx context.Context, req ViewRequest) ([]byte, error) {
	req.LeagueID = strings.TrimSpace(req.LeagueID)
	if req.LeagueID == "" || req.Season <= 0 {
		return nil, &usecase.FetchFailure{Reason: usecase.ReasonUnknown, Cause: fmt.Errorf("%w: league id and season are required", usecase.ErrInvalidInput)}
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", string(c.breaker.State()))
		return nil, &usecase.FetchFailure{Reason: usecase.ReasonTransient, Cause: fmt.Errorf("%w: espn is temporarily unavailable", usecase.ErrDependencyUnavailable)}
	}

	raw, err := c.execute(ctx, req)
	c.breaker.Record(usecase.FetchReasonOf(err) == usecase.ReasonTransient)
	if err != nil {
		c.logger.DebugContext(ctx, "espn request failed",
			"league_id", req.LeagueID,
			"season", req.Season,
			"views", strings.Join(req.Views, ","),
			"error", err,
		)
		return nil, err
	}
	return raw, nil
}

func (c *Client) execute(ctx context.Context, req ViewRequest) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &usecase.FetchFailure{Reason: usecase.ReasonTransient, Cause: fmt.Errorf("rate limit wait: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.leagueURL(req), nil)
	if err != nil {
		return nil, &usecase.FetchFailure{Reason: usecase.ReasonUnknown, Cause: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if s2 := strings.TrimSpace(req.Credential.EspnS2); s2 != "" {
		httpReq.AddCookie(&http.Cookie{Name: "espn_s2", Value: s2})
	}
	if swid := strings.TrimSpace(req.Credential.SWID); swid != "" {
		httpReq.AddCookie(&http.Cookie{Name: "SWID", Value: swid})
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &usecase.FetchFailure{Reason: classifyTransportError(err), Cause: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &usecase.FetchFailure{Reason: usecase.ReasonTransient, StatusCode: resp.StatusCode, Cause: fmt.Errorf("read response body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &usecase.FetchFailure{
			Reason:     usecase.ClassifyHTTPStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("espn status=%d body=%s", resp.StatusCode, abbreviate(raw)),
		}
	}

	return raw, nil
}

func (c *Client) leagueURL(req ViewRequest) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/seasons/")
	b.WriteString(strconv.Itoa(req.Season))
	b.WriteString("/segments/0/leagues/")
	b.WriteString(url.PathEscape(req.LeagueID))

	if len(req.Views) > 0 {
		values := url.Values{}
		for _, view := range req.Views {
			values.Add("view", view)
		}
		b.WriteString("?")
		b.WriteString(values.Encode())
	}
	return b.String()
}

func classifyTransportError(err error) usecase.FetchReason {
	if errors.Is(err, context.Canceled) {
		return usecase.ReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return usecase.ReasonTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return usecase.ReasonTransient
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return usecase.ReasonTransient
	}
	return usecase.ReasonUnknown
}

func abbreviate(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
