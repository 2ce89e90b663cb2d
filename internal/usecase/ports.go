package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
)

// SeasonRequest addresses one league season on a platform.
type SeasonRequest struct {
	LeagueID   string
	Season     int
	Credential league.Credential
}

// PlatformSource fetches and normalizes league data from one platform.
// Errors are *FetchFailure values.
type PlatformSource interface {
	Platform() league.Platform
	// Probe issues a view-less request for the season.
	Probe(ctx context.Context, req SeasonRequest) error
	FetchEndpoint(ctx context.Context, req SeasonRequest, endpoint season.Endpoint) (*season.Table, error)
	// EjectionsCategory reports the platform stat id for ejections, if any.
	EjectionsCategory() (int64, bool)
}

// TokenExchanger trades a Yahoo auth code or refresh token for fresh tokens.
// Endpoint rejections are returned as *TokenError.
type TokenExchanger interface {
	Exchange(ctx context.Context, authCode string) (league.Credential, error)
	Refresh(ctx context.Context, refreshToken string) (league.Credential, error)
}

type IDGenerator interface {
	NewID() (string, error)
}

// Recorder receives engine metrics.
type Recorder interface {
	ObserveActivation(platform, status string, elapsed time.Duration)
	ObserveProbe(platform string, hit bool)
	ObserveSeasonWrite(mode string, err error)
	ObserveRefresh(processed, failed int)
	ObserveFetch(platform, endpoint, reason string)
}

// NopRecorder discards every observation.
type NopRecorder struct{}

func (NopRecorder) ObserveActivation(string, string, time.Duration) {}
func (NopRecorder) ObserveProbe(string, bool)                       {}
func (NopRecorder) ObserveSeasonWrite(string, error)                {}
func (NopRecorder) ObserveRefresh(int, int)                         {}
func (NopRecorder) ObserveFetch(string, string, string)             {}
