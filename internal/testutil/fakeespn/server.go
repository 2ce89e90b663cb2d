// Package fakeespn serves a small ESPN fantasy basketball league over
// httptest for client and end-to-end tests.
package fakeespn

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	sonic "github.com/bytedance/sonic"
)

type Config struct {
	LeagueID string
	Seasons  []int
	// EspnS2 and SWID, when set, must be sent as cookies or the server
	// answers 401.
	EspnS2 string
	SWID   string
	// Ejections adds stat 7 to the league categories.
	Ejections bool
}

type Server struct {
	*httptest.Server

	cfg     Config
	seasons map[int]bool

	mu       sync.Mutex
	requests []Request
}

// Request is one observed call.
type Request struct {
	Season  int
	Views   []string
	Filter  string
	Cookies map[string]string
}

func New(cfg Config) *Server {
	s := &Server{cfg: cfg, seasons: make(map[int]bool, len(cfg.Seasons))}
	for _, year := range cfg.Seasons {
		s.seasons[year] = true
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// BaseURL is the games root, e.g. {url}/apis/v3/games/fba.
func (s *Server) BaseURL() string {
	return s.URL + "/apis/v3/games/fba"
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	// /apis/v3/games/fba/seasons/{year}/segments/0/leagues/{id}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 10 || parts[4] != "seasons" || parts[8] != "leagues" {
		http.NotFound(w, r)
		return
	}
	year, err := strconv.Atoi(parts[5])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}
	views := r.URL.Query()["view"]
	s.mu.Lock()
	s.requests = append(s.requests, Request{Season: year, Views: views, Filter: r.Header.Get("x-fantasy-filter"), Cookies: cookies})
	s.mu.Unlock()

	if s.cfg.EspnS2 != "" && (cookies["espn_s2"] != s.cfg.EspnS2 || cookies["SWID"] != s.cfg.SWID) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"messages":["You are not authorized to view this League."]}`))
		return
	}
	if parts[9] != s.cfg.LeagueID || !s.seasons[year] {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"messages":["Not Found"]}`))
		return
	}

	leagueNumber, _ := strconv.ParseInt(s.cfg.LeagueID, 10, 64)
	body := map[string]any{"id": leagueNumber, "seasonId": year}
	for _, view := range views {
		for k, v := range s.view(view, year) {
			body[k] = v
		}
	}

	raw, err := sonic.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func (s *Server) view(name string, year int) map[string]any {
	switch name {
	case "mSettings":
		items := []map[string]any{{"statId": 0}, {"statId": 1}, {"statId": 2}}
		if s.cfg.Ejections {
			items = append(items, map[string]any{"statId": 7})
		}
		return map[string]any{
			"settings": map[string]any{
				"name":             "Fake League " + strconv.Itoa(year),
				"size":             2,
				"scoringSettings":  map[string]any{"scoringType": "H2H_CATEGORY", "scoringItems": items},
				"scheduleSettings": map[string]any{"matchupPeriodCount": 1},
				"draftSettings":    map[string]any{"type": "SNAKE"},
			},
			"status": map[string]any{"currentMatchupPeriod": 1, "isActive": false},
		}
	case "mTeam":
		return map[string]any{
			"teams": []map[string]any{
				{"id": 1, "abbrev": "AAA", "location": "Alpha", "nickname": "Aces", "owners": []string{"{O1}"},
					"record":      map[string]any{"overall": map[string]any{"wins": 1, "losses": 0, "ties": 0, "percentage": 1.0, "pointsFor": 6, "pointsAgainst": 3}},
					"playoffSeed": 1, "rankCalculatedFinal": 1},
				{"id": 2, "abbrev": "BBB", "name": "Beta Bears", "owners": []string{"{O2}"},
					"record":      map[string]any{"overall": map[string]any{"wins": 0, "losses": 1, "ties": 0, "percentage": 0.0, "pointsFor": 3, "pointsAgainst": 6}},
					"playoffSeed": 2, "rankCalculatedFinal": 2},
			},
			"members": []map[string]any{
				{"id": "{O1}", "displayName": "alpha", "firstName": "Ada", "lastName": "Lovelace"},
				{"id": "{O2}", "displayName": "beta"},
			},
		}
	case "mScoreboard":
		return map[string]any{
			"schedule": []map[string]any{{
				"id": 1, "matchupPeriodId": 1, "winner": "HOME",
				"home": map[string]any{"teamId": 1, "cumulativeScore": map[string]any{"wins": 6, "losses": 3, "ties": 0,
					"scoreByStat": map[string]any{"0": map[string]any{"score": 110.0}}}},
				"away": map[string]any{"teamId": 2, "cumulativeScore": map[string]any{"wins": 3, "losses": 6, "ties": 0}},
			}},
		}
	case "mDraftDetail":
		return map[string]any{
			"draftDetail": map[string]any{"picks": []map[string]any{
				{"overallPickNumber": 1, "roundId": 1, "roundPickNumber": 1, "teamId": 1, "playerId": 100, "keeper": false},
				{"overallPickNumber": 2, "roundId": 1, "roundPickNumber": 2, "teamId": 2, "playerId": 200, "keeper": false},
				{"overallPickNumber": 3, "roundId": 2, "roundPickNumber": 1, "teamId": 2, "playerId": 999, "keeper": true},
			}},
		}
	case "kona_player_info", "mStatRatings":
		return map[string]any{
			"players": []map[string]any{
				fakePlayer(100, 1, "Alpha Center", 80.5, map[int]float64{0: 3, 1: 2, 7: -0.5}),
				fakePlayer(200, 0, "Beta Guard", 60, map[int]float64{0: 1, 1: 1}),
				fakePlayer(300, 2, "Gamma Forward", 50, map[int]float64{0: 2}),
				fakePlayer(400, 0, "Free Agent", 1, map[int]float64{0: 9}),
			},
		}
	default:
		return nil
	}
}

func fakePlayer(id, onTeam int, name string, owned float64, seasonRatings map[int]float64) map[string]any {
	rankings := make([]map[string]any, 0, len(seasonRatings))
	for stat, rating := range seasonRatings {
		rankings = append(rankings, map[string]any{"forStat": stat, "rating": rating})
	}
	return map[string]any{
		"id":       id,
		"onTeamId": onTeam,
		"player": map[string]any{
			"fullName":          name,
			"defaultPositionId": 1,
			"proTeamId":         10,
			"ownership":         map[string]any{"percentOwned": owned},
		},
		"ratings": map[string]any{
			"0": map[string]any{"totalRating": 0, "totalRanking": 0, "statRankings": rankings},
		},
	}
}
