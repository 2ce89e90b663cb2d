package yahoo

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-league-activation/internal/platform/cache"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL    = "https://fantasysports.yahooapis.com/fantasy/v2"
	defaultTimeout    = 15 * time.Second
	defaultGameKeyTTL = 24 * time.Hour
	maxBodyBytes      = 16 << 20
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	RateLimit      float64
	RateBurst      int
	GameKeyTTL     time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the Yahoo Fantasy Sports XML API with a bearer access token.
// Every failure comes back as *usecase.FetchFailure.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	gameKeys   *cache.Store[string]
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
	ttl := cfg.GameKeyTTL
	if ttl <= 0 {
		ttl = defaultGameKeyTTL
	}

	breakerCfg := cfg.CircuitBreaker
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("yahoo circuit breaker state changed", "from", string(from), "to", string(to))
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(breakerCfg),
		gameKeys:   cache.NewStore[string](ttl),
	}
}

// GameKey resolves the game key of a game code for one season. Keys are
// shared by every league of that season and cached.
func (c *Client) GameKey(ctx context.Context, accessToken, gameCode string, season int) (string, error) {
	key := gameCode + ":" + strconv.Itoa(season)
	return c.gameKeys.GetOrLoad(ctx, key, func(ctx context.Context) (string, error) {
		content, _, err := c.Get(ctx, accessToken, fmt.Sprintf("/games;game_codes=%s;seasons=%d", gameCode, season))
		if err != nil {
			return "", err
		}
		for _, game := range content.Games {
			if k := strings.TrimSpace(game.GameKey); k != "" {
				return k, nil
			}
		}
		return "", &usecase.FetchFailure{Reason: usecase.ReasonNotFound, Cause: fmt.Errorf("no %s game for season %d", gameCode, season)}
	})
}

// Get fetches one resource path and returns both the decoded document and
// the raw body.
func (c *Client) Get(ctx context.Context, accessToken, path string) (*fantasyContent, []byte, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, nil, &usecase.FetchFailure{Reason: usecase.ReasonUnauthorized, Cause: errors.New("yahoo access token is required")}
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "yahoo circuit breaker rejected request", "state", string(c.breaker.State()))
		return nil, nil, &usecase.FetchFailure{Reason: usecase.ReasonTransient, Cause: fmt.Errorf("%w: yahoo is temporarily unavailable", usecase.ErrDependencyUnavailable)}
	}

	raw, err := c.execute(ctx, token, path)
	c.breaker.Record(usecase.FetchReasonOf(err) == usecase.ReasonTransient)
	if err != nil {
		c.logger.DebugContext(ctx, "yahoo request failed", "path", path, "error", err)
		return nil, nil, err
	}

	var content fantasyContent
	if err := xml.Unmarshal(raw, &content); err != nil {
		return nil, nil, &usecase.FetchFailure{Reason: usecase.ReasonUnknown, StatusCode: http.StatusOK, Cause: fmt.Errorf("decode yahoo response: %w", err)}
	}
	return &content, raw, nil
}

func (c *Client) execute(ctx context.Context, token, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &usecase.FetchFailure{Reason: usecase.ReasonTransient, Cause: fmt.Errorf("rate limit wait: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &usecase.FetchFailure{Reason: usecase.ReasonUnknown, Cause: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
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
			Reason:     classifyStatus(resp.StatusCode, raw),
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("yahoo status=%d body=%s", resp.StatusCode, abbreviate(raw)),
		}
	}
	return raw, nil
}

// classifyStatus maps Yahoo's 400 for unknown leagues and seasons to not_found.
func classifyStatus(status int, body []byte) usecase.FetchReason {
	if status == http.StatusBadRequest && bytes.Contains(bytes.ToLower(body), []byte("does not exist")) {
		return usecase.ReasonNotFound
	}
	return usecase.ClassifyHTTPStatus(status)
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
