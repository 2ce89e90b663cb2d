package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	qb "github.com/riskibarqy/fantasy-league-activation/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) Get(ctx context.Context, leagueID string, platform league.Platform) (league.League, bool, error) {
	query, args, err := qb.Select(leagueColumns...).From(leagueTable).
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("platform", string(platform)),
		).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var (
		row   leagueTableModel
		found = true
	)
	err = withConn(ctx, r.db, func(conn *sqlx.Conn) error {
		if err := conn.GetContext(ctx, &row, query, args...); err != nil {
			if isNotFound(err) {
				found = false
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return league.League{}, false, fmt.Errorf("get league id=%s platform=%s: %w", leagueID, platform, err)
	}
	if !found {
		return league.League{}, false, nil
	}

	return row.toDomain(), true, nil
}

func (r *LeagueRepository) CommitActivation(ctx context.Context, activation league.Activation) error {
	if err := activation.Validate(); err != nil {
		return fmt.Errorf("validate activation: %w", err)
	}

	query, args, err := qb.InsertModel(leagueTable, newLeagueActivationInsertModel(activation), commitActivationSuffix)
	if err != nil {
		return fmt.Errorf("build commit activation query: %w", err)
	}

	return withConn(ctx, r.db, func(conn *sqlx.Conn) error {
		tx, err := conn.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx commit activation: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("commit activation id=%s platform=%s: %w", activation.LeagueID, activation.Platform, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit activation tx: %w", err)
		}
		return nil
	})
}

func (r *LeagueRepository) TouchViewed(ctx context.Context, leagueID string, platform league.Platform) (int64, error) {
	builder := qb.Update(leagueTable).
		SetExpr("last_viewed", "NOW()").
		SetExpr("view_count", "view_count + 1").
		SetExpr("updated_at", "NOW()")
	return r.touch(ctx, builder, leagueID, platform)
}

func (r *LeagueRepository) TouchUpdated(ctx context.Context, leagueID string, platform league.Platform) (int64, error) {
	builder := qb.Update(leagueTable).
		SetExpr("last_updated", "NOW()").
		SetExpr("updated_at", "NOW()")
	return r.touch(ctx, builder, leagueID, platform)
}

func (r *LeagueRepository) touch(ctx context.Context, builder *qb.UpdateBuilder, leagueID string, platform league.Platform) (int64, error) {
	builder = builder.Where(qb.Eq("league_id", leagueID))
	if platform != "" {
		builder = builder.Where(qb.Eq("platform", string(platform)))
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build touch league query: %w", err)
	}

	return r.exec(ctx, query, args)
}

func (r *LeagueRepository) ListActive(ctx context.Context, platform league.Platform) ([]league.League, error) {
	conditions := []qb.Condition{qb.Eq("is_active", true)}
	if platform != "" {
		conditions = append(conditions, qb.Eq("platform", string(platform)))
	}
	query, args, err := qb.Select(leagueColumns...).From(leagueTable).
		Where(conditions...).
		OrderBy("platform", "league_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active leagues query: %w", err)
	}

	var rows []leagueTableModel
	err = withConn(ctx, r.db, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("list active leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LeagueRepository) ExpireUpdated(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := qb.Update(leagueTable).
		Set("is_updated", false).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("is_updated", true),
			qb.Or(qb.IsNull("last_updated"), qb.Lt("last_updated", before.UTC())),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build expire updated query: %w", err)
	}

	return r.exec(ctx, query, args)
}

func (r *LeagueRepository) exec(ctx context.Context, query string, args []any) (int64, error) {
	var affected int64
	err := withConn(ctx, r.db, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("exec league update: %w", err)
	}
	return affected, nil
}
