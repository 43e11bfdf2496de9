package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"tournamentbot/internal/domain"
	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/domain/window"
)

// RoleInfo is a configured role; Lost is set when the id no longer resolves.
type RoleInfo struct {
	ID   string
	Name string
	Lost bool
}

// WindowInfo describes an active window.
type WindowInfo struct {
	RunID    string
	Snapshot window.Snapshot
	Deadline time.Time
}

// TournamentInfo is the state shown by tinfo and the status endpoint.
type TournamentInfo struct {
	GuildID              string
	ParticipantRole      RoleInfo
	TournamentRole       RoleInfo
	CheckInRole          RoleInfo
	InscriptionChannelID string
	CheckInChannelID     string
	CheckInDuration      time.Duration
	Registered           int
	Blacklisted          int
	Staged               int
	Registration         *WindowInfo
	CheckIn              *WindowInfo
	LastRegistration     *entities.Run
	LastCheckIn          *entities.Run
}

func (s *TournamentService) roleInfo(ctx context.Context, guildID, roleID string) (RoleInfo, error) {
	info := RoleInfo{ID: roleID}
	if roleID == "" {
		return info, nil
	}
	name, ok, err := s.platform.Role(ctx, guildID, roleID)
	if err != nil {
		return info, err
	}
	info.Name, info.Lost = name, !ok
	return info, nil
}

// Info gathers configuration, list sizes and active windows of guildID.
func (s *TournamentService) Info(ctx context.Context, guildID string) (*TournamentInfo, error) {
	g, err := s.freshSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	info := &TournamentInfo{
		GuildID:              guildID,
		InscriptionChannelID: g.InscriptionChannelID,
		CheckInChannelID:     g.CheckInChannelID,
		CheckInDuration:      g.EffectiveCheckInDuration(),
		Registered:           len(g.Current),
		Blacklisted:          len(g.Blacklisted),
		Staged:               len(g.NextToBlacklist),
	}
	for _, r := range []struct {
		dst *RoleInfo
		id  string
	}{
		{&info.ParticipantRole, g.ParticipantRoleID},
		{&info.TournamentRole, g.TournamentRoleID},
		{&info.CheckInRole, g.CheckInRoleID},
	} {
		if *r.dst, err = s.roleInfo(ctx, guildID, r.id); err != nil {
			return nil, fmt.Errorf("resolve role: %w", err)
		}
	}

	if run := s.activeRegistration(guildID); run != nil {
		info.Registration = &WindowInfo{RunID: run.record.ID.String(), Snapshot: run.window.Snapshot()}
	}
	if run := s.activeCheckIn(guildID); run != nil {
		info.CheckIn = &WindowInfo{
			RunID:    run.record.ID.String(),
			Snapshot: run.window.Snapshot(),
			Deadline: run.window.Deadline(),
		}
	}

	// history is informative only
	if info.LastRegistration, err = s.runRepo.Latest(ctx, guildID, entities.RunRegistration); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Historique indisponible")
	}
	if info.LastCheckIn, err = s.runRepo.Latest(ctx, guildID, entities.RunCheckIn); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Historique indisponible")
	}
	return info, nil
}

// List returns the accepted registrants as participants.txt.
func (s *TournamentService) List(ctx context.Context, guildID string) (entities.Artifact, int, error) {
	g, err := s.freshSettings(ctx, guildID)
	if err != nil {
		return entities.Artifact{}, 0, err
	}
	if len(g.Current) == 0 {
		return entities.Artifact{}, 0, domain.ErrNoParticipants
	}
	ps, err := s.hydrate(ctx, guildID, g.Current)
	if err != nil {
		return entities.Artifact{}, 0, err
	}
	return participantsFile(ps), len(ps), nil
}

// hydrate resolves ids to participants, dropping members who left.
func (s *TournamentService) hydrate(ctx context.Context, guildID string, ids []string) ([]entities.Participant, error) {
	out := make([]entities.Participant, 0, len(ids))
	for _, id := range ids {
		p, ok, err := s.platform.Member(ctx, guildID, id)
		if err != nil {
			return nil, fmt.Errorf("resolve member %s: %w", id, err)
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}
