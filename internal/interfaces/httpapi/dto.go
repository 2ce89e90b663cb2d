package httpapi

import (
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
)

type activateLeagueRequest struct {
	LeagueID          string `json:"leagueId" validate:"required,max=64"`
	Platform          string `json:"platform" validate:"required,oneof=espn yahoo"`
	EspnS2            string `json:"espnS2"`
	SWID              string `json:"swid"`
	YahooAuthCode     string `json:"yahooAuthCode"`
	YahooRefreshToken string `json:"yahooRefreshToken"`
	Season            string `json:"season" validate:"omitempty,number"`
}

type activationDTO struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Seasons []int  `json:"seasons,omitempty"`
	RunID   string `json:"runId,omitempty"`
}

func activationToDTO(result usecase.ActivationResult) activationDTO {
	return activationDTO{
		Status:  result.Outcome.Label(),
		Error:   result.Outcome.Detail,
		Seasons: result.Seasons,
		RunID:   result.RunID,
	}
}

type trackViewRequest struct {
	Method   string `json:"method" validate:"required,oneof=lastViewed lastUpdated"`
	Platform string `json:"platform" validate:"omitempty,oneof=espn yahoo"`
}

type refreshLeaguesRequest struct {
	Platform         string `json:"platform" validate:"omitempty,oneof=espn yahoo"`
	Season           int    `json:"season" validate:"omitempty,gte=2000"`
	ExpireStaleAfter string `json:"expireStaleAfter"`
}

type refreshFailureDTO struct {
	LeagueID string `json:"leagueId"`
	Platform string `json:"platform"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

type refreshSummaryDTO struct {
	Season    int                 `json:"season"`
	Processed int                 `json:"processed"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Expired   int64               `json:"expired"`
	Failures  []refreshFailureDTO `json:"failures,omitempty"`
}

func refreshSummaryToDTO(summary usecase.RefreshSummary, expired int64) refreshSummaryDTO {
	out := refreshSummaryDTO{
		Season:    summary.Season,
		Processed: summary.Processed,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Expired:   expired,
	}
	for _, item := range summary.Failures {
		out.Failures = append(out.Failures, refreshFailureDTO{
			LeagueID: item.LeagueID,
			Platform: string(item.Platform),
			Status:   item.Outcome.Label(),
			Error:    item.Outcome.Detail,
		})
	}
	return out
}
