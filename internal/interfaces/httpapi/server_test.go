package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
)

type activatorFunc func(ctx context.Context, req usecase.ActivationRequest) usecase.ActivationResult

func (f activatorFunc) Activate(ctx context.Context, req usecase.ActivationRequest) usecase.ActivationResult {
	return f(ctx, req)
}

type viewTrackerFunc func(ctx context.Context, req usecase.ViewUpdateRequest) error

func (f viewTrackerFunc) Track(ctx context.Context, req usecase.ViewUpdateRequest) error {
	return f(ctx, req)
}

type fakeRefresher struct {
	refreshReq usecase.RefreshRequest
	staleAfter time.Duration
	summary    usecase.RefreshSummary
}

func (f *fakeRefresher) RefreshActive(_ context.Context, req usecase.RefreshRequest) (usecase.RefreshSummary, error) {
	f.refreshReq = req
	return f.summary, nil
}

func (f *fakeRefresher) ExpireStale(_ context.Context, staleAfter time.Duration) (int64, error) {
	f.staleAfter = staleAfter
	return 2, nil
}

type envelope[T any] struct {
	APIVersion string `json:"apiVersion"`
	Data       T      `json:"data"`
	Error      *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var out envelope[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response: %v (%s)", err, rec.Body.String())
	}
	return out
}

func newTestRouter(activator LeagueActivator, views ViewTracker, refresher LeagueRefresher) http.Handler {
	handler := NewHandler(activator, views, refresher, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), RouterConfig{
		CORSAllowedOrigins: []string{"*"},
		InternalJobToken:   "job-secret",
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	})
}

func serve(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestActivateLeague_MapsRequestAndAnswersOK(t *testing.T) {
	t.Parallel()

	var got usecase.ActivationRequest
	router := newTestRouter(activatorFunc(func(_ context.Context, req usecase.ActivationRequest) usecase.ActivationResult {
		got = req
		return usecase.ActivationResult{Outcome: usecase.Active(), Seasons: []int{2021, 2022}, RunID: "run-1"}
	}), nil, nil)

	rec := serve(router, http.MethodPost, "/v1/leagues/activate",
		`{"leagueId":"48375511","platform":"espn","espnS2":"s2","swid":"{ABC}","season":"2022"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeEnvelope[activationDTO](t, rec)
	if body.Data.Status != "ACTIVE" || body.Data.RunID != "run-1" || len(body.Data.Seasons) != 2 {
		t.Fatalf("unexpected body: %+v", body.Data)
	}
	if got.LeagueID != "48375511" || got.Platform != league.PlatformESPN || got.Season != 2022 {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.Credential.EspnS2 != "s2" || got.Credential.SWID != "{ABC}" {
		t.Fatalf("unexpected credential: %+v", got.Credential)
	}
}

func TestActivateLeague_InvalidInputIsErrorOutcomeWith200(t *testing.T) {
	t.Parallel()

	called := false
	router := newTestRouter(activatorFunc(func(context.Context, usecase.ActivationRequest) usecase.ActivationResult {
		called = true
		return usecase.ActivationResult{}
	}), nil, nil)

	payloads := []string{
		`{"leagueId":"1","platform":"sleeper"}`,
		`not json`,
		`{"leagueId":"1","platform":"espn","season":"2022.5"}`,
		`{"leagueId":"1","platform":"espn","season":"99999999999999999999"}`,
		`{"leagueId":"1","platform":"espn","season":"0000"}`,
	}
	for _, payload := range payloads {
		rec := serve(router, http.MethodPost, "/v1/leagues/activate", payload, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d for %s", rec.Code, payload)
		}
		body := decodeEnvelope[activationDTO](t, rec)
		if body.Data.Status != "ERROR" || !strings.Contains(body.Data.Error, "invalid input") {
			t.Fatalf("unexpected body for %s: %+v", payload, body.Data)
		}
	}
	if called {
		t.Fatalf("activation must not run for invalid input")
	}
}

func TestActivateLeague_CarriesAuthRequiredDetail(t *testing.T) {
	t.Parallel()

	router := newTestRouter(activatorFunc(func(context.Context, usecase.ActivationRequest) usecase.ActivationResult {
		return usecase.ActivationResult{Outcome: usecase.AuthRequired("invalid_grant")}
	}), nil, nil)

	rec := serve(router, http.MethodPost, "/v1/leagues/activate", `{"leagueId":"7788","platform":"yahoo","yahooAuthCode":"bad"}`, nil)
	body := decodeEnvelope[activationDTO](t, rec)
	if rec.Code != http.StatusOK || body.Data.Status != "AUTH_REQUIRED" || body.Data.Error != "invalid_grant" {
		t.Fatalf("unexpected response %d %+v", rec.Code, body.Data)
	}
}

func TestTrackLeagueView(t *testing.T) {
	t.Parallel()

	var got usecase.ViewUpdateRequest
	router := newTestRouter(nil, viewTrackerFunc(func(_ context.Context, req usecase.ViewUpdateRequest) error {
		got = req
		if req.LeagueID == "missing" {
			return fmt.Errorf("%w: update failed", usecase.ErrNotFound)
		}
		return nil
	}), nil)

	rec := serve(router, http.MethodPost, "/v1/leagues/48375511/views", `{"method":"lastViewed"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	ok := decodeEnvelope[map[string]bool](t, rec)
	if !ok.Data["success"] || got.LeagueID != "48375511" || got.Method != usecase.ViewMethodLastViewed {
		t.Fatalf("unexpected result %+v request %+v", ok.Data, got)
	}

	rec = serve(router, http.MethodPost, "/v1/leagues/missing/views", `{"method":"lastUpdated"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	failed := decodeEnvelope[map[string]bool](t, rec)
	if failed.Error == nil || failed.Error.Message != "update failed" {
		t.Fatalf("unexpected error envelope: %s", rec.Body.String())
	}

	rec = serve(router, http.MethodPost, "/v1/leagues/1/views", `{"method":"lastClicked"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown method, got %d", rec.Code)
	}
}

func TestRefreshActiveLeagues_RequiresJobToken(t *testing.T) {
	t.Parallel()

	refresher := &fakeRefresher{}
	router := newTestRouter(nil, nil, refresher)

	rec := serve(router, http.MethodPost, "/v1/internal/leagues/refresh", `{}`, map[string]string{"X-Internal-Job-Token": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRefreshActiveLeagues_ReturnsSummary(t *testing.T) {
	t.Parallel()

	refresher := &fakeRefresher{summary: usecase.RefreshSummary{
		Season:    2022,
		Processed: 2,
		Succeeded: 1,
		Failed:    1,
		Failures: []usecase.RefreshItem{
			{LeagueID: "9", Platform: league.PlatformESPN, Outcome: usecase.AuthRequired("cookies expired")},
		},
	}}
	router := newTestRouter(nil, nil, refresher)

	rec := serve(router, http.MethodPost, "/v1/internal/leagues/refresh",
		`{"platform":"espn","season":2022,"expireStaleAfter":"24h"}`, map[string]string{"X-Internal-Job-Token": "job-secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope[refreshSummaryDTO](t, rec)
	if body.Data.Processed != 2 || body.Data.Expired != 2 || len(body.Data.Failures) != 1 {
		t.Fatalf("unexpected summary: %+v", body.Data)
	}
	if body.Data.Failures[0].Status != "AUTH_REQUIRED" {
		t.Fatalf("unexpected failure: %+v", body.Data.Failures[0])
	}
	if refresher.refreshReq.Platform != league.PlatformESPN || refresher.refreshReq.Season != 2022 || refresher.staleAfter != 24*time.Hour {
		t.Fatalf("unexpected refresh inputs: %+v %s", refresher.refreshReq, refresher.staleAfter)
	}
}

func TestSystemRoutes(t *testing.T) {
	t.Parallel()

	router := newTestRouter(nil, nil, nil)

	rec := serve(router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	rec = serve(router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "# metrics" {
		t.Fatalf("metrics response %d %q", rec.Code, rec.Body.String())
	}
}

func TestRecoverPanic_WritesInternalError(t *testing.T) {
	t.Parallel()

	router := newTestRouter(activatorFunc(func(context.Context, usecase.ActivationRequest) usecase.ActivationResult {
		panic("boom")
	}), nil, nil)

	rec := serve(router, http.MethodPost, "/v1/leagues/activate", `{"leagueId":"1","platform":"espn"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}
