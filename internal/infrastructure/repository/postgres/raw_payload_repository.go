package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/rawdata"
	qb "github.com/riskibarqy/fantasy-league-activation/internal/platform/querybuilder"
)

// RawPayloadRepository archives platform responses in raw_platform_payloads.
type RawPayloadRepository struct {
	db *sqlx.DB
}

func NewRawPayloadRepository(db *sqlx.DB) *RawPayloadRepository {
	return &RawPayloadRepository{db: db}
}

func (r *RawPayloadRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	return withConn(ctx, r.db, func(conn *sqlx.Conn) error {
		tx, err := conn.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx upsert raw payloads: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		for _, item := range items {
			insertModel := rawPayloadInsertModel{
				Source:      item.Source,
				EntityType:  item.EntityType,
				EntityKey:   item.EntityKey,
				LeagueID:    item.LeagueID,
				Season:      item.Season,
				Payload:     string(item.PayloadJSON),
				PayloadHash: item.PayloadHash,
				FetchedAt:   item.FetchedAt,
			}

			query, args, err := qb.InsertModel("raw_platform_payloads", insertModel, `ON CONFLICT (source, entity_type, entity_key)
DO UPDATE SET
    league_id = EXCLUDED.league_id,
    season = EXCLUDED.season,
    payload = EXCLUDED.payload,
    payload_hash = EXCLUDED.payload_hash,
    fetched_at = EXCLUDED.fetched_at,
    ingested_at = NOW()
WHERE raw_platform_payloads.payload_hash IS DISTINCT FROM EXCLUDED.payload_hash`)
			if err != nil {
				return fmt.Errorf("build upsert raw payload query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert raw payload entity=%s key=%s: %w", item.EntityType, item.EntityKey, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit upsert raw payloads tx: %w", err)
		}
		return nil
	})
}

type rawPayloadInsertModel struct {
	Source      string    `db:"source"`
	EntityType  string    `db:"entity_type"`
	EntityKey   string    `db:"entity_key"`
	LeagueID    string    `db:"league_id"`
	Season      int       `db:"season"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}
