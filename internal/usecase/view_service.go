package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
)

type ViewMethod string

const (
	ViewMethodLastViewed  ViewMethod = "lastViewed"
	ViewMethodLastUpdated ViewMethod = "lastUpdated"
)

// ViewUpdateRequest touches league usage timestamps. An empty Platform
// matches the league id on every platform.
type ViewUpdateRequest struct {
	LeagueID string
	Method   ViewMethod
	Platform league.Platform
}

type ViewService struct {
	leagues league.Repository
}

func NewViewService(leagues league.Repository) *ViewService {
	return &ViewService{leagues: leagues}
}

// Track fails with ErrNotFound when no league row matched.
func (s *ViewService) Track(ctx context.Context, req ViewUpdateRequest) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ViewService.Track")
	defer span.End()

	req.LeagueID = strings.TrimSpace(req.LeagueID)
	if req.LeagueID == "" {
		return fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if req.Platform != "" {
		platform, err := league.ParsePlatform(string(req.Platform))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		req.Platform = platform
	}

	var (
		rows int64
		err  error
	)
	switch req.Method {
	case ViewMethodLastViewed:
		rows, err = s.leagues.TouchViewed(ctx, req.LeagueID, req.Platform)
	case ViewMethodLastUpdated:
		rows, err = s.leagues.TouchUpdated(ctx, req.LeagueID, req.Platform)
	default:
		return fmt.Errorf("%w: method must be %s or %s", ErrInvalidInput, ViewMethodLastViewed, ViewMethodLastUpdated)
	}
	if err != nil {
		return fmt.Errorf("touch league %s: %w", req.Method, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: update failed", ErrNotFound)
	}

	return nil
}
