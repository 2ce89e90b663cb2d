package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
)

type LeagueActivator interface {
	Activate(ctx context.Context, req usecase.ActivationRequest) usecase.ActivationResult
}

type ViewTracker interface {
	Track(ctx context.Context, req usecase.ViewUpdateRequest) error
}

type LeagueRefresher interface {
	RefreshActive(ctx context.Context, req usecase.RefreshRequest) (usecase.RefreshSummary, error)
	ExpireStale(ctx context.Context, staleAfter time.Duration) (int64, error)
}

type Handler struct {
	activation LeagueActivator
	views      ViewTracker
	refresh    LeagueRefresher
	logger     *logging.Logger
	validator  *validator.Validate
}

func NewHandler(activation LeagueActivator, views ViewTracker, refresh LeagueRefresher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		activation: activation,
		views:      views,
		refresh:    refresh,
		logger:     logger,
		validator:  validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
