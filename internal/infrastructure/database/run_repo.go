package database

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/ports/output"
)

var _ output.RunRepository = (*RunRepository)(nil)

const runTable = "tournament_runs"

var runColumns = []string{"id", "guild_id", "kind", "capacity", "accepted", "close_reason", "opened_at", "closed_at"}

// RunRepository keeps the history of opened windows.
type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

func (r *RunRepository) Create(ctx context.Context, run *entities.Run) error {
	q := psql.Insert(runTable).
		Columns("id", "guild_id", "kind", "capacity", "opened_at").
		Values(uuidToPgtype(run.ID), run.GuildID, string(run.Kind), run.Capacity, timeToPgtypeTimestamptz(run.OpenedAt))
	if _, err := qExec(ctx, r.pool, q); err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (r *RunRepository) Finish(ctx context.Context, run *entities.Run) error {
	q := psql.Update(runTable).
		Set("accepted", run.Accepted).
		Set("close_reason", run.CloseReason).
		Set("closed_at", timeToPgtypeTimestamptz(run.ClosedAt)).
		Where(sq.Eq{"id": uuidToPgtype(run.ID)})
	if _, err := qExec(ctx, r.pool, q); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Latest returns the most recently opened run of kind, nil when there is none.
func (r *RunRepository) Latest(ctx context.Context, guildID string, kind entities.RunKind) (*entities.Run, error) {
	q := psql.Select(runColumns...).
		From(runTable).
		Where(sq.Eq{"guild_id": guildID, "kind": string(kind)}).
		OrderBy("opened_at DESC").
		Limit(1)
	var row runRow
	if err := qRow(ctx, r.pool, q).Scan(row.targets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest run: %w", err)
	}
	run := row.toDomain()
	return &run, nil
}
