package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const (
	defaultTokenURL    = "https://api.login.yahoo.com/oauth2/get_token"
	defaultRedirectURL = "oob"
)

type TokenConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	RedirectURL  string
	HTTPClient   *http.Client
	Logger       *logging.Logger
}

// TokenExchanger implements usecase.TokenExchanger against the Yahoo OAuth2
// token endpoint. Access tokens are returned to the caller and never stored.
type TokenExchanger struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	logger     *logging.Logger
	refreshes  resilience.SingleFlight[*oauth2.Token]
}

func NewTokenExchanger(cfg TokenConfig) *TokenExchanger {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	redirectURL := strings.TrimSpace(cfg.RedirectURL)
	if redirectURL == "" {
		redirectURL = defaultRedirectURL
	}

	return &TokenExchanger{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		logger:     logger,
	}
}

// Exchange redeems a one-time authorization code.
func (e *TokenExchanger) Exchange(ctx context.Context, authCode string) (league.Credential, error) {
	code := strings.TrimSpace(authCode)
	if code == "" {
		return league.Credential{}, fmt.Errorf("%w: auth code is required", usecase.ErrInvalidInput)
	}

	token, err := e.oauth.Exchange(e.clientContext(ctx), code)
	if err != nil {
		return league.Credential{}, e.translate(ctx, "authorization_code", err)
	}
	return credentialFromToken(token, ""), nil
}

// Refresh trades a refresh token for a new access token. Concurrent refreshes
// of the same token share one request.
func (e *TokenExchanger) Refresh(ctx context.Context, refreshToken string) (league.Credential, error) {
	refresh := strings.TrimSpace(refreshToken)
	if refresh == "" {
		return league.Credential{}, fmt.Errorf("%w: refresh token is required", usecase.ErrInvalidInput)
	}

	token, err, shared := e.refreshes.Do(refresh, func() (*oauth2.Token, error) {
		return e.oauth.TokenSource(e.clientContext(ctx), &oauth2.Token{RefreshToken: refresh}).Token()
	})
	if err != nil {
		return league.Credential{}, e.translate(ctx, "refresh_token", err)
	}
	if shared {
		e.logger.DebugContext(ctx, "yahoo refresh shared with in-flight request")
	}
	return credentialFromToken(token, refresh), nil
}

func (e *TokenExchanger) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
}

func (e *TokenExchanger) translate(ctx context.Context, grant string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		code := strings.TrimSpace(retrieveErr.ErrorCode)
		if code == "" && retrieveErr.Response != nil {
			code = fmt.Sprintf("http_%d", retrieveErr.Response.StatusCode)
		}
		if code == "" {
			code = "token_error"
		}
		e.logger.WarnContext(ctx, "yahoo token endpoint rejected grant", "grant_type", grant, "error_code", code)
		return &usecase.TokenError{Code: code, Description: retrieveErr.ErrorDescription}
	}
	return fmt.Errorf("%w: yahoo token endpoint: %v", usecase.ErrDependencyUnavailable, err)
}

func credentialFromToken(token *oauth2.Token, previousRefresh string) league.Credential {
	if token == nil {
		return league.Credential{RefreshToken: previousRefresh}
	}
	refresh := strings.TrimSpace(token.RefreshToken)
	if refresh == "" {
		refresh = previousRefresh
	}
	return league.Credential{AccessToken: token.AccessToken, RefreshToken: refresh}
}
