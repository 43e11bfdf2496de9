package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"tournamentbot/internal/domain"
	"tournamentbot/internal/domain/entities"
)

// BanResult tells what tournamentban add changed.
type BanResult struct {
	Added       bool // false when the member was already denied
	RoleRemoved bool
}

// DenyEntry is one deny-list id, hydrated when the member is still in the guild.
type DenyEntry struct {
	Participant entities.Participant
	Present     bool
}

// Ban adds userID to the deny-list and strips the participant role if held.
// Open windows stop accepting the member immediately; a check-in
// confirmation already given is withdrawn with its role.
func (s *TournamentService) Ban(ctx context.Context, guildID, userID string) (BanResult, error) {
	var res BanResult
	added, err := s.guildRepo.AppendToList(ctx, guildID, entities.ListBlacklisted, userID)
	if err != nil {
		return res, fmt.Errorf("add to deny-list: %w", err)
	}
	res.Added = added
	s.invalidate(guildID)

	if run := s.activeRegistration(guildID); run != nil {
		run.window.Deny(userID)
	}
	if run := s.activeCheckIn(guildID); run != nil && run.window.Deny(userID) {
		if err := s.platform.RemoveRole(ctx, guildID, userID, run.checkInRole.ID, "Membre blacklisté"); err != nil {
			log.Warn().Err(err).Str("guild", guildID).Str("member", userID).Msg("⚠️ Rôle de check-in non retiré")
		}
	}

	g, err := s.settings(ctx, guildID)
	if err != nil {
		return res, err
	}
	role, err := s.requireRole(ctx, g, entities.RoleParticipant)
	if domain.IsKind(err, domain.KindConfiguration) {
		// no participant role configured: nothing to strip
		return res, nil
	}
	if err != nil {
		return res, err
	}
	has, err := s.platform.MemberHasRole(ctx, guildID, userID, role.ID)
	if err != nil {
		return res, fmt.Errorf("check participant role: %w", err)
	}
	if has {
		if err := s.platform.RemoveRole(ctx, guildID, userID, role.ID, "Membre blacklisté"); err != nil {
			return res, fmt.Errorf("remove participant role: %w", err)
		}
		res.RoleRemoved = true
	}
	log.Info().Str("guild", guildID).Str("member", userID).Bool("role_removed", res.RoleRemoved).Msg("🚫 Membre blacklisté")
	return res, nil
}

// Unban removes userID from the deny-list.
func (s *TournamentService) Unban(ctx context.Context, guildID, userID string) error {
	removed, err := s.guildRepo.RemoveFromList(ctx, guildID, entities.ListBlacklisted, userID)
	if err != nil {
		return fmt.Errorf("remove from deny-list: %w", err)
	}
	s.invalidate(guildID)
	if removed == 0 {
		return domain.ErrNotDenied
	}
	log.Info().Str("guild", guildID).Str("member", userID).Msg("✅ Membre débanni")
	return nil
}

// DenyList returns the deny-list in insertion order. Members who left the
// guild are kept with Present=false.
func (s *TournamentService) DenyList(ctx context.Context, guildID string) ([]DenyEntry, error) {
	g, err := s.freshSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	entries := make([]DenyEntry, 0, len(g.Blacklisted))
	for _, id := range g.Blacklisted {
		p, ok, err := s.platform.Member(ctx, guildID, id)
		if err != nil {
			return nil, fmt.Errorf("resolve member %s: %w", id, err)
		}
		if !ok {
			p = entities.Participant{UserID: id}
		}
		entries = append(entries, DenyEntry{Participant: p, Present: ok})
	}
	return entries, nil
}

// ClearDenyList empties the deny-list and returns how many ids it held.
func (s *TournamentService) ClearDenyList(ctx context.Context, guildID string) (int, error) {
	g, err := s.freshSettings(ctx, guildID)
	if err != nil {
		return 0, err
	}
	if err := s.guildRepo.SetList(ctx, guildID, entities.ListBlacklisted, nil); err != nil {
		return 0, fmt.Errorf("clear deny-list: %w", err)
	}
	s.invalidate(guildID)
	log.Info().Str("guild", guildID).Int("count", len(g.Blacklisted)).Msg("🧹 Blacklist vidée")
	return len(g.Blacklisted), nil
}
