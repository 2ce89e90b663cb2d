package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/leagues/activate", handler.ActivateLeague)
	mux.HandleFunc("POST /v1/leagues/{leagueID}/views", handler.TrackLeagueView)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/leagues/refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RefreshActiveLeagues)))
}
