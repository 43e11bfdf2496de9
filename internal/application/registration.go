package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tournamentbot/internal/domain"
	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/domain/window"
)

// RegistrationPlan is what the moderator confirms before a registration starts.
type RegistrationPlan struct {
	GuildID        string
	ChannelID      string
	TournamentRole string
	Limit          int
}

type registrationRun struct {
	handle          *RunHandle
	record          *entities.Run
	window          *window.Registration
	channelID       string
	reportChannelID string
	tournamentRole  resolvedRole
	participantRole string
}

// PrepareRegistration validates that a registration of limit places can start.
func (s *TournamentService) PrepareRegistration(ctx context.Context, guildID string, limit int) (*RegistrationPlan, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidCapacity
	}
	if s.activeRegistration(guildID) != nil {
		return nil, domain.ErrWindowActive
	}
	g, err := s.settings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	role, err := s.requireRole(ctx, g, entities.RoleTournament)
	if err != nil {
		return nil, err
	}
	channelID, err := s.requireChannel(ctx, g, entities.ChannelInscription)
	if err != nil {
		return nil, err
	}
	return &RegistrationPlan{GuildID: guildID, ChannelID: channelID, TournamentRole: role.Name, Limit: limit}, nil
}

// StartRegistration resets the accepted list, announces the registration and
// opens the window after the configured delay. Reports go to reportChannelID.
func (s *TournamentService) StartRegistration(ctx context.Context, guildID string, limit int, reportChannelID string) (*RunHandle, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidCapacity
	}
	g, err := s.freshSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	role, err := s.requireRole(ctx, g, entities.RoleTournament)
	if err != nil {
		return nil, err
	}
	channelID, err := s.requireChannel(ctx, g, entities.ChannelInscription)
	if err != nil {
		return nil, err
	}
	w, err := window.NewRegistration(limit, g.Blacklisted)
	if err != nil {
		return nil, err
	}

	sess := s.session(guildID)
	sess.mu.Lock()
	if sess.registration != nil {
		sess.mu.Unlock()
		return nil, domain.ErrWindowActive
	}
	now := s.opts.Now()
	run := &registrationRun{
		record: &entities.Run{
			ID:       uuid.New(),
			GuildID:  guildID,
			Kind:     entities.RunRegistration,
			Capacity: limit,
			OpenedAt: now,
		},
		window:          w,
		channelID:       channelID,
		reportChannelID: reportChannelID,
		tournamentRole:  role,
		participantRole: g.ParticipantRoleID,
	}
	run.handle = &RunHandle{
		ID:        run.record.ID,
		GuildID:   guildID,
		Kind:      entities.RunRegistration,
		ChannelID: channelID,
		OpensAt:   now.Add(s.opts.OpenDelay),
		snapshot:  w.Snapshot,
		done:      w.Done(),
		finished:  make(chan struct{}),
	}
	sess.registration = run
	sess.mu.Unlock()

	if err := s.guildRepo.SetList(ctx, guildID, entities.ListCurrent, nil); err != nil {
		s.dropRegistration(sess, run)
		return nil, fmt.Errorf("reset current list: %w", err)
	}
	s.invalidate(guildID)
	if err := s.runRepo.Create(ctx, run.record); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Historique de l'inscription non enregistré")
	}
	if err := s.notifier.Announce(ctx, channelID, s.t("registration.announcement", map[string]any{
		"Delay": int(s.opts.OpenDelay.Seconds()),
	})); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Annonce d'inscription non envoyée")
	}

	log.Info().Str("guild", guildID).Str("run", run.record.ID.String()).Int("limit", limit).Msg("📝 Inscription lancée")
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.driveRegistration(ctx, sess, run)
	}()
	return run.handle, nil
}

// driveRegistration opens the window after the delay, then runs the close
// sequence exactly once whatever ended the window.
func (s *TournamentService) driveRegistration(ctx context.Context, sess *session, run *registrationRun) {
	if wait(ctx, s.opts.OpenDelay, run.window.Done()) {
		if err := s.platform.SetChannelSend(ctx, run.channelID, run.tournamentRole.ID, true, "Ouverture des inscriptions"); err != nil {
			log.Error().Err(err).Str("guild", sess.guildID).Msg("❌ Impossible d'ouvrir le channel d'inscription")
		}
		if run.window.Open() {
			log.Info().Str("guild", sess.guildID).Msg("🟢 Inscriptions ouvertes")
		}
	}

	select {
	case <-run.window.Done():
	case <-ctx.Done():
		run.window.Close(window.ReasonCancelled)
	}

	tctx, cancel := teardownContext(ctx)
	defer cancel()
	s.closeRegistration(tctx, sess, run)
}

func (s *TournamentService) closeRegistration(ctx context.Context, sess *session, run *registrationRun) {
	defer close(run.handle.finished)
	defer s.dropRegistration(sess, run)

	guildID := sess.guildID
	snap := run.window.Snapshot()
	accepted := run.window.Accepted()

	if err := s.platform.SetChannelSend(ctx, run.channelID, run.tournamentRole.ID, false, "Fermeture des inscriptions"); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("❌ Impossible de fermer le channel d'inscription")
	}
	if err := s.notifier.Announce(ctx, run.channelID, s.t("registration.closed", nil)); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Message de fermeture non envoyé")
	}

	if len(accepted) > 0 {
		if _, err := s.guildRepo.RemoveFromList(ctx, guildID, entities.ListNextToBlacklist, participantIDs(accepted)...); err != nil {
			log.Error().Err(err).Str("guild", guildID).Msg("❌ Impossible de mettre à jour la liste des absents")
		}
	}
	s.invalidate(guildID)

	if err := s.notifier.Report(ctx, run.reportChannelID,
		s.t("registration.report", map[string]any{"Count": len(accepted)}),
		participantsFile(accepted),
	); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Rapport d'inscription non envoyé")
	}

	run.record.Accepted = len(accepted)
	run.record.CloseReason = string(snap.Reason)
	run.record.ClosedAt = s.opts.Now()
	if err := s.runRepo.Finish(ctx, run.record); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Historique de l'inscription non clôturé")
	}

	log.Info().
		Str("guild", guildID).
		Str("run", run.record.ID.String()).
		Str("reason", string(snap.Reason)).
		Int("accepted", len(accepted)).
		Msg("🔴 Inscription terminée")
}

func (s *TournamentService) activeRegistration(guildID string) *registrationRun {
	sess := s.session(guildID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.registration
}

func (s *TournamentService) dropRegistration(sess *session, run *registrationRun) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.registration == run {
		sess.registration = nil
	}
}

// CancelRun closes the active window identified by runID.
func (s *TournamentService) CancelRun(ctx context.Context, guildID string, runID uuid.UUID) error {
	sess := s.session(guildID)
	sess.mu.Lock()
	reg, chk := sess.registration, sess.checkIn
	sess.mu.Unlock()

	switch {
	case reg != nil && reg.record.ID == runID:
		if !reg.window.Close(window.ReasonCancelled) {
			return domain.ErrNoActiveWindow
		}
	case chk != nil && chk.record.ID == runID:
		if !chk.window.Close(window.ReasonCancelled) {
			return domain.ErrNoActiveWindow
		}
	default:
		return domain.ErrNoActiveWindow
	}
	log.Info().Str("guild", guildID).Str("run", runID.String()).Msg("🛑 Phase annulée")
	return nil
}
