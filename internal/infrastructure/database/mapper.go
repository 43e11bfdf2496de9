package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"tournamentbot/internal/domain/entities"
)

// pgtypeTimestamptzToTime returns t.Time when Valid, else zero time.
func pgtypeTimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

// timeToPgtypeTimestamptz maps the zero time to NULL.
func timeToPgtypeTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func uuidToPgtype(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// guildRow mirrors guildColumns.
type guildRow struct {
	GuildID              string
	ParticipantRoleID    string
	TournamentRoleID     string
	CheckInRoleID        string
	InscriptionChannelID string
	CheckInChannelID     string
	CheckTimeSeconds     int64
	Blacklisted          []string
	Current              []string
	NextToBlacklist      []string
	UpdatedAt            pgtype.Timestamptz
}

func (r *guildRow) targets() []any {
	return []any{
		&r.GuildID,
		&r.ParticipantRoleID,
		&r.TournamentRoleID,
		&r.CheckInRoleID,
		&r.InscriptionChannelID,
		&r.CheckInChannelID,
		&r.CheckTimeSeconds,
		&r.Blacklisted,
		&r.Current,
		&r.NextToBlacklist,
		&r.UpdatedAt,
	}
}

func (r guildRow) toDomain() entities.GuildSettings {
	return entities.GuildSettings{
		GuildID:              r.GuildID,
		ParticipantRoleID:    r.ParticipantRoleID,
		TournamentRoleID:     r.TournamentRoleID,
		CheckInRoleID:        r.CheckInRoleID,
		InscriptionChannelID: r.InscriptionChannelID,
		CheckInChannelID:     r.CheckInChannelID,
		CheckInDuration:      time.Duration(r.CheckTimeSeconds) * time.Second,
		Blacklisted:          r.Blacklisted,
		Current:              r.Current,
		NextToBlacklist:      r.NextToBlacklist,
		UpdatedAt:            pgtypeTimestamptzToTime(r.UpdatedAt),
	}
}

// runRow mirrors runColumns.
type runRow struct {
	ID          pgtype.UUID
	GuildID     string
	Kind        string
	Capacity    int32
	Accepted    int32
	CloseReason string
	OpenedAt    pgtype.Timestamptz
	ClosedAt    pgtype.Timestamptz
}

func (r *runRow) targets() []any {
	return []any{&r.ID, &r.GuildID, &r.Kind, &r.Capacity, &r.Accepted, &r.CloseReason, &r.OpenedAt, &r.ClosedAt}
}

func (r runRow) toDomain() entities.Run {
	return entities.Run{
		ID:          uuid.UUID(r.ID.Bytes),
		GuildID:     r.GuildID,
		Kind:        entities.RunKind(r.Kind),
		Capacity:    int(r.Capacity),
		Accepted:    int(r.Accepted),
		CloseReason: r.CloseReason,
		OpenedAt:    pgtypeTimestamptzToTime(r.OpenedAt),
		ClosedAt:    pgtypeTimestamptzToTime(r.ClosedAt),
	}
}
