package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	qb "github.com/riskibarqy/fantasy-league-activation/internal/platform/querybuilder"
)

const leagueTable = "leagueids"

var leagueColumns = []string{
	"league_id", "platform", "credential", "swid", "is_active", "is_updated",
	"last_updated", "last_viewed", "view_count", "created_at", "updated_at",
}

type leagueTableModel struct {
	LeagueID    string         `db:"league_id"`
	Platform    string         `db:"platform"`
	Credential  sql.NullString `db:"credential"`
	SWID        sql.NullString `db:"swid"`
	IsActive    bool           `db:"is_active"`
	IsUpdated   bool           `db:"is_updated"`
	LastUpdated *time.Time     `db:"last_updated"`
	LastViewed  *time.Time     `db:"last_viewed"`
	ViewCount   int64          `db:"view_count"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (m leagueTableModel) toDomain() league.League {
	return league.League{
		LeagueID:    m.LeagueID,
		Platform:    league.Platform(m.Platform),
		Credential:  m.Credential.String,
		SWID:        m.SWID.String,
		Active:      m.IsActive,
		Updated:     m.IsUpdated,
		LastUpdated: m.LastUpdated,
		LastViewed:  m.LastViewed,
		ViewCount:   m.ViewCount,
	}
}

type leagueActivationInsertModel struct {
	LeagueID    string  `db:"league_id"`
	Platform    string  `db:"platform"`
	Credential  *string `db:"credential"`
	SWID        *string `db:"swid"`
	IsActive    bool    `db:"is_active"`
	IsUpdated   bool    `db:"is_updated"`
	LastUpdated qb.Raw  `db:"last_updated"`
	UpdatedAt   qb.Raw  `db:"updated_at"`
}

func newLeagueActivationInsertModel(activation league.Activation) leagueActivationInsertModel {
	return leagueActivationInsertModel{
		LeagueID:    activation.LeagueID,
		Platform:    string(activation.Platform),
		Credential:  nullableString(activation.Credential),
		SWID:        nullableString(activation.SWID),
		IsActive:    true,
		IsUpdated:   true,
		LastUpdated: qb.Raw("NOW()"),
		UpdatedAt:   qb.Raw("NOW()"),
	}
}

// Blank credentials arrive as NULL and never replace a stored value.
const commitActivationSuffix = `ON CONFLICT (league_id, platform)
DO UPDATE SET
    credential = COALESCE(EXCLUDED.credential, leagueids.credential),
    swid = COALESCE(EXCLUDED.swid, leagueids.swid),
    is_active = TRUE,
    is_updated = TRUE,
    last_updated = NOW(),
    updated_at = NOW()`
