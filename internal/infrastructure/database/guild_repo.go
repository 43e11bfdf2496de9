package database

import (
	"context"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/ports/output"
)

var _ output.GuildRepository = (*GuildRepository)(nil)

const guildTable = "guild_settings"

var (
	roleColumns = map[entities.RoleKind]string{
		entities.RoleParticipant: "participant_role_id",
		entities.RoleTournament:  "tournament_role_id",
		entities.RoleCheckIn:     "checkin_role_id",
	}
	channelColumns = map[entities.ChannelKind]string{
		entities.ChannelInscription: "inscription_channel_id",
		entities.ChannelCheckIn:     "checkin_channel_id",
	}
	listColumns = map[entities.ListKind]string{
		entities.ListBlacklisted:     "blacklisted",
		entities.ListCurrent:         "current_participants",
		entities.ListNextToBlacklist: "next_to_blacklist",
	}
	guildColumns = []string{
		"guild_id",
		"participant_role_id",
		"tournament_role_id",
		"checkin_role_id",
		"inscription_channel_id",
		"checkin_channel_id",
		"check_time_seconds",
		"blacklisted",
		"current_participants",
		"next_to_blacklist",
		"updated_at",
	}
)

// GuildRepository implements output.GuildRepository on PostgreSQL.
// Lists are text[] columns mutated in place.
type GuildRepository struct {
	pool *pgxpool.Pool
}

func NewGuildRepository(pool *pgxpool.Pool) *GuildRepository {
	return &GuildRepository{pool: pool}
}

func column[K comparable](columns map[K]string, kind K) (string, error) {
	col, ok := columns[kind]
	if !ok {
		return "", fmt.Errorf("unknown kind %v", kind)
	}
	return col, nil
}

// upsertQuery writes value into col, creating the guild row if needed.
func upsertQuery(guildID, col string, value any) sq.InsertBuilder {
	return psql.Insert(guildTable).
		Columns("guild_id", col).
		Values(guildID, value).
		Suffix(fmt.Sprintf("ON CONFLICT (guild_id) DO UPDATE SET %s = EXCLUDED.%s, updated_at = now()", col, col))
}

func ensureQuery(guildID string) sq.InsertBuilder {
	return psql.Insert(guildTable).
		Columns("guild_id").
		Values(guildID).
		Suffix("ON CONFLICT (guild_id) DO NOTHING")
}

// appendQuery appends id to col unless already present.
func appendQuery(guildID, col, id string) sq.UpdateBuilder {
	return psql.Update(guildTable).
		Set(col, sq.Expr(fmt.Sprintf("array_append(%s, ?::text)", col), id)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"guild_id": guildID}).
		Where(sq.Expr(fmt.Sprintf("NOT (?::text = ANY(%s))", col), id))
}

func (r *GuildRepository) ensure(ctx context.Context, db querier, guildID string) error {
	if _, err := qExec(ctx, db, ensureQuery(guildID)); err != nil {
		return fmt.Errorf("ensure guild settings: %w", err)
	}
	return nil
}

func (r *GuildRepository) Get(ctx context.Context, guildID string) (*entities.GuildSettings, error) {
	if err := r.ensure(ctx, r.pool, guildID); err != nil {
		return nil, err
	}
	q := psql.Select(guildColumns...).From(guildTable).Where(sq.Eq{"guild_id": guildID})
	var row guildRow
	if err := qRow(ctx, r.pool, q).Scan(row.targets()...); err != nil {
		return nil, fmt.Errorf("get guild settings: %w", err)
	}
	g := row.toDomain()
	return &g, nil
}

func (r *GuildRepository) SetRole(ctx context.Context, guildID string, kind entities.RoleKind, roleID string) error {
	col, err := column(roleColumns, kind)
	if err != nil {
		return err
	}
	if _, err := qExec(ctx, r.pool, upsertQuery(guildID, col, roleID)); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}

func (r *GuildRepository) SetChannel(ctx context.Context, guildID string, kind entities.ChannelKind, channelID string) error {
	col, err := column(channelColumns, kind)
	if err != nil {
		return err
	}
	if _, err := qExec(ctx, r.pool, upsertQuery(guildID, col, channelID)); err != nil {
		return fmt.Errorf("set channel: %w", err)
	}
	return nil
}

func (r *GuildRepository) SetCheckInDuration(ctx context.Context, guildID string, d time.Duration) error {
	if _, err := qExec(ctx, r.pool, upsertQuery(guildID, "check_time_seconds", int64(d/time.Second))); err != nil {
		return fmt.Errorf("set check time: %w", err)
	}
	return nil
}

func (r *GuildRepository) SetList(ctx context.Context, guildID string, kind entities.ListKind, ids []string) error {
	col, err := column(listColumns, kind)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []string{}
	}
	if _, err := qExec(ctx, r.pool, upsertQuery(guildID, col, ids)); err != nil {
		return fmt.Errorf("set %s: %w", col, err)
	}
	return nil
}

func (r *GuildRepository) AppendToList(ctx context.Context, guildID string, kind entities.ListKind, id string) (bool, error) {
	col, err := column(listColumns, kind)
	if err != nil {
		return false, err
	}
	if err := r.ensure(ctx, r.pool, guildID); err != nil {
		return false, err
	}
	tag, err := qExec(ctx, r.pool, appendQuery(guildID, col, id))
	if err != nil {
		return false, fmt.Errorf("append to %s: %w", col, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *GuildRepository) RemoveFromList(ctx context.Context, guildID string, kind entities.ListKind, ids ...string) (int, error) {
	col, err := column(listColumns, kind)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.ensure(ctx, tx, guildID); err != nil {
		return 0, err
	}
	var current []string
	q := psql.Select(col).From(guildTable).Where(sq.Eq{"guild_id": guildID}).Suffix("FOR UPDATE")
	if err := qRow(ctx, tx, q).Scan(&current); err != nil {
		return 0, fmt.Errorf("read %s: %w", col, err)
	}
	kept := slices.DeleteFunc(slices.Clone(current), func(id string) bool {
		return slices.Contains(ids, id)
	})
	removed := len(current) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	update := psql.Update(guildTable).
		Set(col, kept).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"guild_id": guildID})
	if _, err := qExec(ctx, tx, update); err != nil {
		return 0, fmt.Errorf("update %s: %w", col, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return removed, nil
}
