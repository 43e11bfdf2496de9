package output

import (
	"context"
	"time"

	"tournamentbot/internal/domain/entities"
)

// GuildRepository persists the tournament state of each guild.
// List mutations are atomic read-modify-write operations.
type GuildRepository interface {
	// Get returns the settings of guildID, creating defaults on first access.
	Get(ctx context.Context, guildID string) (*entities.GuildSettings, error)
	SetRole(ctx context.Context, guildID string, kind entities.RoleKind, roleID string) error
	SetChannel(ctx context.Context, guildID string, kind entities.ChannelKind, channelID string) error
	SetCheckInDuration(ctx context.Context, guildID string, d time.Duration) error
	SetList(ctx context.Context, guildID string, kind entities.ListKind, ids []string) error
	// AppendToList adds id unless already present and reports whether it was added.
	AppendToList(ctx context.Context, guildID string, kind entities.ListKind, id string) (bool, error)
	// RemoveFromList removes ids and reports how many were present.
	RemoveFromList(ctx context.Context, guildID string, kind entities.ListKind, ids ...string) (int, error)
}
