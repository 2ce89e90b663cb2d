package league

import (
	"context"
	"time"
)

// Repository describes league activation persistence needs from use cases.
// An empty platform in the touch methods matches every platform.
type Repository interface {
	Get(ctx context.Context, leagueID string, platform Platform) (League, bool, error)
	CommitActivation(ctx context.Context, activation Activation) error
	TouchViewed(ctx context.Context, leagueID string, platform Platform) (int64, error)
	TouchUpdated(ctx context.Context, leagueID string, platform Platform) (int64, error)
	ListActive(ctx context.Context, platform Platform) ([]League, error)
	ExpireUpdated(ctx context.Context, before time.Time) (int64, error)
}
