package entities

import (
	"slices"
	"time"
)

const (
	DefaultCheckInDuration = 30 * time.Minute
	MaxCheckInDuration     = 7 * 24 * time.Hour
)

// RoleKind names one of the configurable roles.
type RoleKind string

const (
	RoleParticipant RoleKind = "participant"
	RoleTournament  RoleKind = "tournament"
	RoleCheckIn     RoleKind = "check"
)

// ChannelKind names one of the configurable channels.
type ChannelKind string

const (
	ChannelInscription ChannelKind = "inscription"
	ChannelCheckIn     ChannelKind = "check"
)

// ListKind names one of the persisted member lists.
type ListKind string

const (
	ListBlacklisted     ListKind = "blacklisted"
	ListCurrent         ListKind = "current"
	ListNextToBlacklist ListKind = "next_to_blacklist"
)

// GuildSettings is the persisted tournament state of one guild.
type GuildSettings struct {
	GuildID              string
	ParticipantRoleID    string
	TournamentRoleID     string
	CheckInRoleID        string
	InscriptionChannelID string
	CheckInChannelID     string
	CheckInDuration      time.Duration
	Blacklisted          []string
	Current              []string
	NextToBlacklist      []string
	UpdatedAt            time.Time
}

// Role returns the configured id for kind, "" when unset.
func (g *GuildSettings) Role(kind RoleKind) string {
	switch kind {
	case RoleParticipant:
		return g.ParticipantRoleID
	case RoleTournament:
		return g.TournamentRoleID
	case RoleCheckIn:
		return g.CheckInRoleID
	}
	return ""
}

// Channel returns the configured id for kind, "" when unset.
func (g *GuildSettings) Channel(kind ChannelKind) string {
	switch kind {
	case ChannelInscription:
		return g.InscriptionChannelID
	case ChannelCheckIn:
		return g.CheckInChannelID
	}
	return ""
}

// List returns a copy of the list for kind.
func (g *GuildSettings) List(kind ListKind) []string {
	switch kind {
	case ListBlacklisted:
		return slices.Clone(g.Blacklisted)
	case ListCurrent:
		return slices.Clone(g.Current)
	case ListNextToBlacklist:
		return slices.Clone(g.NextToBlacklist)
	}
	return nil
}

// EffectiveCheckInDuration falls back to DefaultCheckInDuration when unset.
func (g *GuildSettings) EffectiveCheckInDuration() time.Duration {
	if g.CheckInDuration <= 0 {
		return DefaultCheckInDuration
	}
	return g.CheckInDuration
}
