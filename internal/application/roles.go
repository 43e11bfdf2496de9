package application

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"tournamentbot/internal/domain"
	"tournamentbot/internal/domain/entities"
)

// RoleUpdate describes one bulk role change. Every role in RoleIDs is added
// to (or removed from) every member, in order.
//
// ResetNickname also clears each member's nickname once its roles are added;
// a failed reset counts as a failure for that member.
type RoleUpdate struct {
	GuildID       string
	RoleIDs       []string
	Add           bool
	ResetNickname bool
	Reason        string
	Members       []entities.Participant
}

// BulkResult is the tally of a bulk role update.
type BulkResult struct {
	Total       int
	Succeeded   []entities.Participant
	Failures    []entities.Failure
	Interrupted bool // the context ended before the last member
}

// Tracker exposes the progress of a running bulk update to readers on other goroutines.
type Tracker struct {
	total  atomic.Int64
	done   atomic.Int64
	failed atomic.Int64
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Progress returns processed (successes + failures), failures and total.
func (t *Tracker) Progress() (processed, failed, total int) {
	return int(t.done.Load() + t.failed.Load()), int(t.failed.Load()), int(t.total.Load())
}

// UpdateRoles applies u sequentially. Per-member failures are collected and
// never stop the batch; only ctx cancellation does.
func (s *TournamentService) UpdateRoles(ctx context.Context, u RoleUpdate, tracker *Tracker) BulkResult {
	result := BulkResult{Total: len(u.Members)}
	if tracker != nil {
		tracker.total.Store(int64(len(u.Members)))
	}

	for _, member := range u.Members {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		var err error
		for _, roleID := range u.RoleIDs {
			if u.Add {
				err = s.platform.AddRole(ctx, u.GuildID, member.UserID, roleID, u.Reason)
			} else {
				err = s.platform.RemoveRole(ctx, u.GuildID, member.UserID, roleID, u.Reason)
			}
			if err != nil {
				break
			}
		}
		if err == nil && u.Add && u.ResetNickname {
			err = s.platform.ResetNickname(ctx, u.GuildID, member.UserID, u.Reason)
		}
		if err != nil {
			result.Failures = append(result.Failures, entities.Failure{Participant: member, Err: err})
			if tracker != nil {
				tracker.failed.Add(1)
			}
			log.Debug().Err(err).Str("guild", u.GuildID).Str("member", member.UserID).Msg("⚠️ Mise à jour de rôle échouée")
			continue
		}
		result.Succeeded = append(result.Succeeded, member)
		if tracker != nil {
			tracker.done.Add(1)
		}
	}

	logger := log.Info()
	if result.Interrupted {
		logger = log.Warn()
	}
	logger.
		Str("guild", u.GuildID).
		Bool("add", u.Add).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failures)).
		Int("total", result.Total).
		Bool("interrupted", result.Interrupted).
		Msg("👥 Mise à jour des rôles terminée")
	return result
}

func (s *TournamentService) reportBulk(ctx context.Context, channelID, key string, result BulkResult) {
	var files []entities.Artifact
	if len(result.Failures) > 0 {
		files = append(files, failuresFile("erreurs.txt", result.Failures))
	}
	content := s.t(key, map[string]any{"Done": len(result.Succeeded), "Total": result.Total})
	if err := s.notifier.Report(ctx, channelID, content, files...); err != nil {
		log.Warn().Err(err).Msg("⚠️ Rapport de mise à jour des rôles non envoyé")
	}
}

// ValidationPlan is the list of registrants that valid grants the participant role to.
type ValidationPlan struct {
	GuildID    string
	RoleID     string
	RoleName   string
	Registered []entities.Participant // accepted registrants still in the guild
	Members    []entities.Participant // the first n of Registered
}

// PrepareValidation selects the first n accepted registrants.
func (s *TournamentService) PrepareValidation(ctx context.Context, guildID string, n int) (*ValidationPlan, error) {
	if n <= 0 {
		return nil, domain.ErrInvalidCapacity
	}
	if s.activeRegistration(guildID) != nil {
		return nil, domain.ErrWindowActive
	}
	g, err := s.freshSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	registered, err := s.hydrate(ctx, guildID, g.Current)
	if err != nil {
		return nil, err
	}
	if n > len(registered) {
		return nil, domain.ErrTooManyToValidate.With(map[string]any{"Total": len(registered)})
	}
	role, err := s.requireRole(ctx, g, entities.RoleParticipant)
	if err != nil {
		return nil, err
	}
	return &ValidationPlan{
		GuildID:    guildID,
		RoleID:     role.ID,
		RoleName:   role.Name,
		Registered: registered,
		Members:    registered[:n],
	}, nil
}

// Validate grants the participant role to plan.Members, reporting the
// registrant list before and the tally after.
func (s *TournamentService) Validate(ctx context.Context, plan *ValidationPlan, reportChannelID string, tracker *Tracker) (BulkResult, error) {
	g, err := s.settings(ctx, plan.GuildID)
	if err != nil {
		return BulkResult{}, err
	}
	// the role may have changed while the prompt was open
	role, err := s.requireRole(ctx, g, entities.RoleParticipant)
	if err != nil {
		return BulkResult{}, err
	}

	list, err := inscriptionsFile(plan.Registered)
	if err != nil {
		return BulkResult{}, fmt.Errorf("encode inscriptions: %w", err)
	}
	if err := s.notifier.Report(ctx, reportChannelID, s.t("validation.list", nil), list); err != nil {
		log.Warn().Err(err).Str("guild", plan.GuildID).Msg("⚠️ Liste des inscriptions non envoyée")
	}

	result := s.UpdateRoles(ctx, RoleUpdate{
		GuildID:       plan.GuildID,
		RoleIDs:       []string{role.ID},
		Add:           true,
		ResetNickname: true,
		Reason:        "Participation au tournoi.",
		Members:       plan.Members,
	}, tracker)

	files := []entities.Artifact{participantsFile(result.Succeeded)}
	if len(result.Failures) > 0 {
		files = append(files, failuresFile("echecs.txt", result.Failures))
	}
	content := s.t("validation.report", map[string]any{"Done": len(result.Succeeded), "Total": result.Total})
	if err := s.notifier.Report(ctx, reportChannelID, content, files...); err != nil {
		log.Warn().Err(err).Str("guild", plan.GuildID).Msg("⚠️ Rapport de validation non envoyé")
	}
	return result, nil
}

// EndPlan is what endtournament will revoke and rotate.
type EndPlan struct {
	GuildID         string
	ParticipantRole string
	CheckInRole     string
	Members         []entities.Participant // union of both roles' members
	Staged          int                    // size of the next deny-list

	roleIDs []string
}

// PrepareEnd collects the members holding the participant or check-in role.
func (s *TournamentService) PrepareEnd(ctx context.Context, guildID string) (*EndPlan, error) {
	if s.activeRegistration(guildID) != nil || s.activeCheckIn(guildID) != nil {
		return nil, domain.ErrWindowActive
	}
	g, err := s.freshSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	participant, err := s.requireRole(ctx, g, entities.RoleParticipant)
	if err != nil {
		return nil, err
	}
	checkIn, err := s.requireRole(ctx, g, entities.RoleCheckIn)
	if err != nil {
		return nil, err
	}
	var union []entities.Participant
	seen := make(map[string]struct{})
	for _, roleID := range []string{participant.ID, checkIn.ID} {
		members, err := s.platform.RoleMembers(ctx, guildID, roleID)
		if err != nil {
			return nil, fmt.Errorf("list role members: %w", err)
		}
		for _, m := range members {
			if _, ok := seen[m.UserID]; ok {
				continue
			}
			seen[m.UserID] = struct{}{}
			union = append(union, m)
		}
	}
	return &EndPlan{
		GuildID:         guildID,
		ParticipantRole: participant.Name,
		CheckInRole:     checkIn.Name,
		Members:         union,
		Staged:          len(g.NextToBlacklist),
		roleIDs:         []string{participant.ID, checkIn.ID},
	}, nil
}

// EndTournament revokes both roles, replaces the deny-list with the staged
// no-shows and clears the staging and accepted lists.
func (s *TournamentService) EndTournament(ctx context.Context, plan *EndPlan, reportChannelID string, tracker *Tracker) (BulkResult, error) {
	if s.activeRegistration(plan.GuildID) != nil || s.activeCheckIn(plan.GuildID) != nil {
		return BulkResult{}, domain.ErrWindowActive
	}

	result := s.UpdateRoles(ctx, RoleUpdate{
		GuildID: plan.GuildID,
		RoleIDs: plan.roleIDs,
		Reason:  "Fin du tournoi",
		Members: plan.Members,
	}, tracker)
	if result.Interrupted {
		return result, ctx.Err()
	}

	g, err := s.freshSettings(ctx, plan.GuildID)
	if err != nil {
		return result, err
	}
	staged := g.List(entities.ListNextToBlacklist)
	if err := s.guildRepo.SetList(ctx, plan.GuildID, entities.ListBlacklisted, staged); err != nil {
		return result, fmt.Errorf("rotate deny-list: %w", err)
	}
	if err := s.guildRepo.SetList(ctx, plan.GuildID, entities.ListNextToBlacklist, nil); err != nil {
		return result, fmt.Errorf("clear staged no-shows: %w", err)
	}
	if err := s.guildRepo.SetList(ctx, plan.GuildID, entities.ListCurrent, nil); err != nil {
		return result, fmt.Errorf("clear registrants: %w", err)
	}
	s.invalidate(plan.GuildID)

	var files []entities.Artifact
	if len(result.Failures) > 0 {
		files = append(files, failuresFile("erreurs.txt", result.Failures))
	}
	content := s.t("end.report", map[string]any{
		"Done":   len(result.Succeeded),
		"Total":  result.Total,
		"Banned": len(staged),
	})
	if err := s.notifier.Report(ctx, reportChannelID, content, files...); err != nil {
		log.Warn().Err(err).Str("guild", plan.GuildID).Msg("⚠️ Rapport de fin de tournoi non envoyé")
	}
	log.Info().Str("guild", plan.GuildID).Int("blacklisted", len(staged)).Msg("🏁 Tournoi terminé")
	return result, nil
}
