package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
)

func (h *Handler) RefreshActiveLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshActiveLeagues")
	defer span.End()

	if h.refresh == nil {
		writeError(ctx, w, fmt.Errorf("%w: refresh service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req refreshLeaguesRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var expired int64
	if raw := strings.TrimSpace(req.ExpireStaleAfter); raw != "" {
		staleAfter, err := time.ParseDuration(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: expireStaleAfter: %v", usecase.ErrInvalidInput, err))
			return
		}
		expired, err = h.refresh.ExpireStale(ctx, staleAfter)
		if err != nil {
			h.logger.WarnContext(ctx, "expire stale leagues failed", "error", err)
			writeError(ctx, w, err)
			return
		}
	}

	summary, err := h.refresh.RefreshActive(ctx, usecase.RefreshRequest{
		Platform: league.Platform(req.Platform),
		Season:   req.Season,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "refresh active leagues failed", "platform", req.Platform, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, refreshSummaryToDTO(summary, expired))
}
