// Package fakeyahoo serves a small Yahoo fantasy basketball league and the
// OAuth2 token endpoint over httptest.
package fakeyahoo

import (
	"embed"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	sonic "github.com/bytedance/sonic"
)

//go:embed yahoodata
var yahoodata embed.FS

// GameKey returns the fake game key of an nba season, e.g. 2022 -> 418.
func GameKey(season int) string {
	return strconv.Itoa(season - 1604)
}

type Config struct {
	LeagueID     string
	Seasons      []int
	ClientID     string
	ClientSecret string
	// AuthCode redeems once per request; RefreshToken is issued and accepted.
	AuthCode     string
	RefreshToken string
	AccessToken  string
}

type Server struct {
	*httptest.Server

	cfg     Config
	seasons map[int]bool

	mu     sync.Mutex
	paths  []string
	grants []string
}

func New(cfg Config) *Server {
	s := &Server{cfg: cfg, seasons: make(map[int]bool, len(cfg.Seasons))}
	for _, year := range cfg.Seasons {
		s.seasons[year] = true
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/get_token", s.handleToken)
	mux.HandleFunc("/fantasy/v2/", s.handleAPI)
	s.Server = httptest.NewServer(mux)
	return s
}

func (s *Server) TokenURL() string {
	return s.URL + "/oauth2/get_token"
}

func (s *Server) APIBaseURL() string {
	return s.URL + "/fantasy/v2"
}

// Paths lists the API resource paths requested so far.
func (s *Server) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

// Grants lists the grant types posted to the token endpoint.
func (s *Server) Grants() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.grants...)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	grant := r.PostForm.Get("grant_type")
	s.mu.Lock()
	s.grants = append(s.grants, grant)
	s.mu.Unlock()

	if r.PostForm.Get("client_id") != s.cfg.ClientID || r.PostForm.Get("client_secret") != s.cfg.ClientSecret {
		writeTokenError(w, http.StatusUnauthorized, "invalid_client")
		return
	}

	switch grant {
	case "authorization_code":
		if r.PostForm.Get("code") != s.cfg.AuthCode || r.PostForm.Get("redirect_uri") != "oob" {
			writeTokenError(w, http.StatusBadRequest, "invalid_grant")
			return
		}
	case "refresh_token":
		if r.PostForm.Get("refresh_token") != s.cfg.RefreshToken {
			writeTokenError(w, http.StatusBadRequest, "invalid_grant")
			return
		}
	default:
		writeTokenError(w, http.StatusBadRequest, "unsupported_grant_type")
		return
	}

	raw, _ := sonic.Marshal(map[string]any{
		"access_token":  s.cfg.AccessToken,
		"refresh_token": s.cfg.RefreshToken,
		"token_type":    "bearer",
		"expires_in":    3600,
	})
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func writeTokenError(w http.ResponseWriter, status int, code string) {
	raw, _ := sonic.Marshal(map[string]string{"error": code, "error_description": "fake token endpoint rejected the request"})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/fantasy/v2")
	s.mu.Lock()
	s.paths = append(s.paths, path)
	s.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+s.cfg.AccessToken {
		writeXMLError(w, http.StatusUnauthorized, "Please provide valid credentials.")
		return
	}

	if strings.HasPrefix(path, "/games;") {
		season := 0
		for _, part := range strings.Split(path, ";") {
			if v, ok := strings.CutPrefix(part, "seasons="); ok {
				season, _ = strconv.Atoi(v)
			}
		}
		s.serve(w, "games.xml", "", season)
		return
	}

	rest, ok := strings.CutPrefix(path, "/league/")
	if !ok {
		writeXMLError(w, http.StatusNotFound, "Unknown resource.")
		return
	}
	leagueKey, sub, _ := strings.Cut(rest, "/")
	gameKey, leagueID, ok := strings.Cut(leagueKey, ".l.")
	gameNumber, err := strconv.Atoi(gameKey)
	if !ok || err != nil || leagueID != s.cfg.LeagueID || !s.seasons[gameNumber+1604] {
		writeXMLError(w, http.StatusBadRequest, "League key "+leagueKey+" does not exist.")
		return
	}
	season := gameNumber + 1604

	files := map[string]string{
		"":             "league.xml",
		"settings":     "settings.xml",
		"standings":    "standings.xml",
		"scoreboard":   "scoreboard.xml",
		"draftresults": "draftresults.xml",
		"teams/roster": "roster.xml",
	}
	name, ok := files[sub]
	if !ok {
		writeXMLError(w, http.StatusNotFound, "Unknown league resource.")
		return
	}
	s.serve(w, name, leagueKey, season)
}

func (s *Server) serve(w http.ResponseWriter, name, leagueKey string, season int) {
	raw, err := yahoodata.ReadFile("yahoodata/" + name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	body := strings.NewReplacer(
		"{{LEAGUE_KEY}}", leagueKey,
		"{{LEAGUE_ID}}", s.cfg.LeagueID,
		"{{GAME_KEY}}", GameKey(season),
		"{{SEASON}}", strconv.Itoa(season),
	).Replace(string(raw))
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(body))
}

func writeXMLError(w http.ResponseWriter, status int, description string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><error xml:lang="en-us"><description>` + description + `</description></error>`))
}
