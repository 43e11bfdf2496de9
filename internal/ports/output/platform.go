package output

import (
	"context"

	"tournamentbot/internal/domain/entities"
)

// Platform is the subset of the chat platform the tournament flow needs.
type Platform interface {
	// Role resolves roleID to its name; ok is false when the role was deleted.
	Role(ctx context.Context, guildID, roleID string) (name string, ok bool, err error)
	// ChannelExists reports whether channelID still resolves in the guild.
	ChannelExists(ctx context.Context, guildID, channelID string) (bool, error)
	// CanAssignRole reports whether the bot sits above roleID in the hierarchy.
	CanAssignRole(ctx context.Context, guildID, roleID string) (bool, error)
	// CanManageChannel reports whether the bot can read and edit channelID.
	CanManageChannel(ctx context.Context, guildID, channelID string) (bool, error)
	// CanReadHistory reports whether the bot can read channelID history.
	CanReadHistory(ctx context.Context, guildID, channelID string) (bool, error)

	RoleMembers(ctx context.Context, guildID, roleID string) ([]entities.Participant, error)
	// Member returns the member, with ok=false when they left the guild.
	Member(ctx context.Context, guildID, userID string) (p entities.Participant, ok bool, err error)
	MemberHasRole(ctx context.Context, guildID, userID, roleID string) (bool, error)
	AddRole(ctx context.Context, guildID, userID, roleID, reason string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error
	// ResetNickname clears the member's guild nickname.
	ResetNickname(ctx context.Context, guildID, userID, reason string) error

	// SetChannelSend allows or denies roleID sending messages in channelID;
	// reading stays allowed.
	SetChannelSend(ctx context.Context, channelID, roleID string, allow bool, reason string) error
	// History returns up to limit channel messages oldest first, after afterID
	// when set. next is the id to resume after, empty once the channel is exhausted.
	History(ctx context.Context, channelID, afterID string, limit int) (msgs []entities.Message, next string, err error)
}
