package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
)

// LeagueRepository keeps activation records in process, keyed by
// (league id, platform).
type LeagueRepository struct {
	mu    sync.RWMutex
	items map[string]league.League
	now   func() time.Time
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	for _, l := range leagues {
		items[leagueKey(l.LeagueID, l.Platform)] = l
	}

	return &LeagueRepository{
		items: items,
		now:   time.Now,
	}
}

// WithClock replaces the time source used for timestamps.
func (r *LeagueRepository) WithClock(now func() time.Time) *LeagueRepository {
	if now != nil {
		r.now = now
	}
	return r
}

func (r *LeagueRepository) Get(_ context.Context, leagueID string, platform league.Platform) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[leagueKey(leagueID, platform)]
	if !ok {
		return league.League{}, false, nil
	}
	return l, true, nil
}

func (r *LeagueRepository) CommitActivation(_ context.Context, activation league.Activation) error {
	if err := activation.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := leagueKey(activation.LeagueID, activation.Platform)
	l, ok := r.items[key]
	if !ok {
		l = league.League{LeagueID: activation.LeagueID, Platform: activation.Platform}
	}
	if v := strings.TrimSpace(activation.Credential); v != "" {
		l.Credential = v
	}
	if v := strings.TrimSpace(activation.SWID); v != "" {
		l.SWID = v
	}
	now := r.now().UTC()
	l.Active = true
	l.Updated = true
	l.LastUpdated = &now
	r.items[key] = l
	return nil
}

func (r *LeagueRepository) TouchViewed(_ context.Context, leagueID string, platform league.Platform) (int64, error) {
	return r.touch(leagueID, platform, func(l *league.League, now time.Time) {
		l.LastViewed = &now
		l.ViewCount++
	}), nil
}

func (r *LeagueRepository) TouchUpdated(_ context.Context, leagueID string, platform league.Platform) (int64, error) {
	return r.touch(leagueID, platform, func(l *league.League, now time.Time) {
		l.LastUpdated = &now
	}), nil
}

func (r *LeagueRepository) touch(leagueID string, platform league.Platform, apply func(*league.League, time.Time)) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	var affected int64
	for key, l := range r.items {
		if l.LeagueID != leagueID || (platform != "" && l.Platform != platform) {
			continue
		}
		apply(&l, now)
		r.items[key] = l
		affected++
	}
	return affected
}

func (r *LeagueRepository) ListActive(_ context.Context, platform league.Platform) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.items))
	for _, l := range r.items {
		if !l.Active || (platform != "" && l.Platform != platform) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Platform != out[j].Platform {
			return out[i].Platform < out[j].Platform
		}
		return out[i].LeagueID < out[j].LeagueID
	})
	return out, nil
}

func (r *LeagueRepository) ExpireUpdated(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for key, l := range r.items {
		if !l.Updated || (l.LastUpdated != nil && !l.LastUpdated.Before(before)) {
			continue
		}
		l.Updated = false
		r.items[key] = l
		affected++
	}
	return affected, nil
}

func leagueKey(leagueID string, platform league.Platform) string {
	return string(platform) + "::" + leagueID
}
