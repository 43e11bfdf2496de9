package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"tournamentbot/internal/domain"
	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/domain/window"
)

// historyBatch is the number of messages manualregister reads per call; it
// keeps reading until the window fills or the channel is exhausted.
const historyBatch = 500

// HandleMessage routes an inbound message to the open window of its channel.
// Rejections are silent; accepted submissions are acknowledged only after the
// durable write or role grant succeeded.
func (s *TournamentService) HandleMessage(ctx context.Context, msg entities.Message) {
	if reg := s.activeRegistration(msg.GuildID); reg != nil && reg.channelID == msg.ChannelID {
		s.submitRegistration(ctx, reg, msg)
		return
	}
	if chk := s.activeCheckIn(msg.GuildID); chk != nil && chk.channelID == msg.ChannelID {
		s.submitCheckIn(ctx, chk, msg)
	}
}

func (s *TournamentService) submitRegistration(ctx context.Context, run *registrationRun, msg entities.Message) {
	sub := window.Submission{
		Participant: msg.Author(),
		Content:     msg.Content,
		HasRole:     msg.HasRole(run.participantRole),
	}
	out, err := run.window.Submit(ctx, sub, func(ctx context.Context, id string) (bool, error) {
		return s.guildRepo.AppendToList(ctx, msg.GuildID, entities.ListCurrent, id)
	})
	if err != nil {
		log.Error().Err(err).Str("guild", msg.GuildID).Str("member", msg.AuthorID).Msg("❌ Inscription non enregistrée")
		return
	}
	s.acknowledge(ctx, msg, out)
}

func (s *TournamentService) submitCheckIn(ctx context.Context, run *checkInRun, msg entities.Message) {
	sub := window.Submission{Participant: msg.Author(), Content: msg.Content}
	out, err := run.window.Submit(ctx, sub, func(ctx context.Context, p entities.Participant) error {
		return s.platform.AddRole(ctx, msg.GuildID, p.UserID, run.checkInRole.ID, "Check-in tournoi")
	})
	if err != nil {
		log.Warn().Err(err).Str("guild", msg.GuildID).Str("member", msg.AuthorID).Msg("⚠️ Rôle de check-in non attribué")
		return
	}
	s.acknowledge(ctx, msg, out)
}

func (s *TournamentService) acknowledge(ctx context.Context, msg entities.Message, out window.Outcome) {
	if !out.Accepted() {
		log.Debug().Str("guild", msg.GuildID).Str("member", msg.AuthorID).Stringer("rejection", out.Rejection).Msg("Message ignoré")
		return
	}
	if err := s.notifier.Acknowledge(ctx, msg.ChannelID, msg.MessageID); err != nil {
		log.Debug().Err(err).Str("guild", msg.GuildID).Msg("Réaction impossible")
	}
}

// ManualRegister rebuilds the accepted list from channelID history, oldest
// first and after afterID when set, with the registration filters applied.
// Authors whose account name breaks the naming rule are skipped.
func (s *TournamentService) ManualRegister(ctx context.Context, guildID, channelID string, limit int, afterID, reportChannelID string) ([]entities.Participant, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidCapacity
	}
	if s.activeRegistration(guildID) != nil {
		return nil, domain.ErrWindowActive
	}
	ok, err := s.platform.CanReadHistory(ctx, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("check history permission: %w", err)
	}
	if !ok {
		return nil, domain.ErrHistoryPermission
	}
	g, err := s.freshSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}

	w, err := window.NewRegistration(limit, g.Blacklisted)
	if err != nil {
		return nil, err
	}
	w.Open()

	scanned := 0
	for after, full := afterID, false; !full; {
		messages, next, err := s.platform.History(ctx, channelID, after, historyBatch)
		if err != nil {
			return nil, fmt.Errorf("read channel history: %w", err)
		}
		scanned += len(messages)
		for _, m := range messages {
			if !window.ValidName(m.AuthorUsername) {
				continue
			}
			out, _ := w.Submit(ctx, window.Submission{Participant: m.Author(), Content: m.Content}, nil)
			if out.Closed {
				full = true
				break
			}
		}
		if next == "" {
			break
		}
		after = next
	}
	log.Debug().Str("guild", guildID).Str("channel", channelID).Int("scanned", scanned).Msg("Historique parcouru")

	accepted := w.Accepted()
	if len(accepted) < limit {
		return nil, domain.ErrNotEnoughParticipants.With(map[string]any{"Found": len(accepted), "Limit": limit})
	}
	if err := s.guildRepo.SetList(ctx, guildID, entities.ListCurrent, participantIDs(accepted)); err != nil {
		return nil, fmt.Errorf("store registrants: %w", err)
	}
	s.invalidate(guildID)

	if err := s.notifier.Report(ctx, reportChannelID,
		s.t("registration.report", map[string]any{"Count": len(accepted)}),
		participantsFile(accepted),
	); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Rapport d'inscription non envoyé")
	}
	log.Info().Str("guild", guildID).Str("channel", channelID).Int("count", len(accepted)).Msg("📝 Inscription manuelle terminée")
	return accepted, nil
}
