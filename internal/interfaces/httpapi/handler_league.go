package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
)

// ActivateLeague always answers 200; callers read the status in the body.
func (h *Handler) ActivateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ActivateLeague")
	defer span.End()

	var req activateLeagueRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		outcome := usecase.Failed(fmt.Sprintf("%s: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		writeSuccess(ctx, w, http.StatusOK, activationToDTO(usecase.ActivationResult{Outcome: outcome}))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeSuccess(ctx, w, http.StatusOK, activationToDTO(usecase.ActivationResult{Outcome: usecase.Failed(err.Error())}))
		return
	}

	seasonYear, err := season.ParseYear(req.Season)
	if err != nil {
		outcome := usecase.Failed(fmt.Sprintf("%s: %v", usecase.ErrInvalidInput, err))
		writeSuccess(ctx, w, http.StatusOK, activationToDTO(usecase.ActivationResult{Outcome: outcome}))
		return
	}

	result := h.activation.Activate(ctx, usecase.ActivationRequest{
		LeagueID: req.LeagueID,
		Platform: league.Platform(req.Platform),
		Credential: league.Credential{
			EspnS2:       req.EspnS2,
			SWID:         req.SWID,
			AuthCode:     req.YahooAuthCode,
			RefreshToken: req.YahooRefreshToken,
		},
		Season: seasonYear,
	})
	writeSuccess(ctx, w, http.StatusOK, activationToDTO(result))
}

func (h *Handler) TrackLeagueView(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TrackLeagueView")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))

	var req trackViewRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	err := h.views.Track(ctx, usecase.ViewUpdateRequest{
		LeagueID: leagueID,
		Method:   usecase.ViewMethod(req.Method),
		Platform: league.Platform(req.Platform),
	})
	if errors.Is(err, usecase.ErrNotFound) {
		writeErrorMessage(ctx, w, err, "update failed")
		return
	}
	if err != nil {
		h.logger.WarnContext(ctx, "track league view failed", "league_id", leagueID, "method", req.Method, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"success": true})
}
