package application

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tournamentbot/internal/domain"
	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/domain/window"
	"tournamentbot/pkg/timer"
)

// CheckInPlan is what the moderator confirms before a check-in starts.
type CheckInPlan struct {
	GuildID     string
	ChannelID   string
	CheckInRole string
	Eligible    int
	Duration    time.Duration
}

type checkInRun struct {
	handle          *RunHandle
	record          *entities.Run
	window          *window.CheckIn
	countdown       *timer.Countdown
	channelID       string
	reportChannelID string
	participantRole resolvedRole
	checkInRole     resolvedRole
	duration        time.Duration
}

type checkInConfig struct {
	participant resolvedRole
	checkIn     resolvedRole
	channelID   string
	eligible    []entities.Participant
	duration    time.Duration
}

func (s *TournamentService) checkInConfig(ctx context.Context, g *entities.GuildSettings) (*checkInConfig, error) {
	participant, err := s.requireRole(ctx, g, entities.RoleParticipant)
	if err != nil {
		return nil, err
	}
	checkIn, err := s.requireRole(ctx, g, entities.RoleCheckIn)
	if err != nil {
		return nil, err
	}
	channelID, err := s.requireChannel(ctx, g, entities.ChannelCheckIn)
	if err != nil {
		return nil, err
	}
	members, err := s.platform.RoleMembers(ctx, g.GuildID, participant.ID)
	if err != nil {
		return nil, fmt.Errorf("list participant role members: %w", err)
	}
	members = slices.DeleteFunc(members, func(p entities.Participant) bool {
		return slices.Contains(g.Blacklisted, p.UserID)
	})
	if len(members) == 0 {
		return nil, domain.ErrNoEligible
	}
	return &checkInConfig{
		participant: participant,
		checkIn:     checkIn,
		channelID:   channelID,
		eligible:    members,
		duration:    g.EffectiveCheckInDuration(),
	}, nil
}

// PrepareCheckIn validates that a check-in can start.
func (s *TournamentService) PrepareCheckIn(ctx context.Context, guildID string) (*CheckInPlan, error) {
	if s.activeCheckIn(guildID) != nil {
		return nil, domain.ErrWindowActive
	}
	g, err := s.settings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.checkInConfig(ctx, g)
	if err != nil {
		return nil, err
	}
	return &CheckInPlan{
		GuildID:     guildID,
		ChannelID:   cfg.channelID,
		CheckInRole: cfg.checkIn.Name,
		Eligible:    len(cfg.eligible),
		Duration:    cfg.duration,
	}, nil
}

// StartCheckIn snapshots the participant role members and opens a check-in
// over them after the configured delay.
func (s *TournamentService) StartCheckIn(ctx context.Context, guildID, reportChannelID string) (*RunHandle, error) {
	g, err := s.freshSettings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.checkInConfig(ctx, g)
	if err != nil {
		return nil, err
	}
	w, err := window.NewCheckIn(cfg.eligible)
	if err != nil {
		return nil, err
	}
	w.WithClock(s.opts.Now)

	sess := s.session(guildID)
	sess.mu.Lock()
	if sess.checkIn != nil {
		sess.mu.Unlock()
		return nil, domain.ErrWindowActive
	}
	now := s.opts.Now()
	run := &checkInRun{
		record: &entities.Run{
			ID:       uuid.New(),
			GuildID:  guildID,
			Kind:     entities.RunCheckIn,
			Capacity: len(w.Eligible()),
			OpenedAt: now,
		},
		window:          w,
		channelID:       cfg.channelID,
		reportChannelID: reportChannelID,
		participantRole: cfg.participant,
		checkInRole:     cfg.checkIn,
		duration:        cfg.duration,
	}
	run.handle = &RunHandle{
		ID:        run.record.ID,
		GuildID:   guildID,
		Kind:      entities.RunCheckIn,
		ChannelID: cfg.channelID,
		OpensAt:   now.Add(s.opts.OpenDelay),
		Duration:  cfg.duration,
		snapshot:  w.Snapshot,
		deadline:  w.Deadline,
		done:      w.Done(),
		finished:  make(chan struct{}),
	}
	sess.checkIn = run
	sess.mu.Unlock()

	if err := s.runRepo.Create(ctx, run.record); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Historique du check-in non enregistré")
	}
	if err := s.notifier.Announce(ctx, cfg.channelID, s.t("checkin.announcement", map[string]any{
		"Delay":   int(s.opts.OpenDelay.Seconds()),
		"Minutes": int(math.Ceil(cfg.duration.Minutes())),
	})); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Annonce du check-in non envoyée")
	}

	log.Info().Str("guild", guildID).Str("run", run.record.ID.String()).Int("eligible", run.record.Capacity).Msg("📝 Check-in lancé")
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.driveCheckIn(ctx, sess, run)
	}()
	return run.handle, nil
}

func (s *TournamentService) driveCheckIn(ctx context.Context, sess *session, run *checkInRun) {
	if wait(ctx, s.opts.OpenDelay, run.window.Done()) {
		if err := s.platform.SetChannelSend(ctx, run.channelID, run.participantRole.ID, true, "Ouverture du check-in"); err != nil {
			log.Error().Err(err).Str("guild", sess.guildID).Msg("❌ Impossible d'ouvrir le channel de check-in")
		}
		deadline := s.opts.Now().Add(run.duration)
		if run.window.Open(deadline) {
			run.countdown = timer.NewCountdown(deadline, s.opts.CheckInTick).WithClock(s.opts.Now)
			go run.countdown.Run(ctx, func() {
				run.window.Close(window.ReasonDeadline)
			})
			log.Info().Str("guild", sess.guildID).Time("deadline", deadline).Msg("🟢 Check-in ouvert")
		}
	}

	select {
	case <-run.window.Done():
	case <-ctx.Done():
		run.window.Close(window.ReasonCancelled)
	}
	if run.countdown != nil {
		run.countdown.Stop()
	}

	tctx, cancel := teardownContext(ctx)
	defer cancel()
	s.closeCheckIn(tctx, sess, run)
}

func (s *TournamentService) closeCheckIn(ctx context.Context, sess *session, run *checkInRun) {
	defer close(run.handle.finished)
	defer s.dropCheckIn(sess, run)

	guildID := sess.guildID
	snap := run.window.Snapshot()
	confirmed := run.window.Confirmed()
	failures := run.window.Failures()
	noShows := run.window.NoShows()

	if err := s.platform.SetChannelSend(ctx, run.channelID, run.participantRole.ID, false, "Fermeture du check-in"); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("❌ Impossible de fermer le channel de check-in")
	}
	if err := s.notifier.Announce(ctx, run.channelID, s.t("checkin.closed", nil)); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Message de fermeture non envoyé")
	}

	if err := s.guildRepo.SetList(ctx, guildID, entities.ListNextToBlacklist, participantIDs(noShows)); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("❌ Impossible d'enregistrer les absents")
	}
	s.invalidate(guildID)

	files := []entities.Artifact{participantsFile(confirmed)}
	if len(failures) > 0 {
		files = append(files, failuresFile("fails.txt", failures))
	}
	if err := s.notifier.Report(ctx, run.reportChannelID,
		s.t("checkin.report", map[string]any{"Count": len(confirmed), "NoShows": len(noShows)}),
		files...,
	); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Rapport du check-in non envoyé")
	}

	if snap.Reason.Natural() && len(noShows) > 0 {
		result := s.UpdateRoles(ctx, RoleUpdate{
			GuildID: guildID,
			RoleIDs: []string{run.participantRole.ID},
			Reason:  "Absent au check-in",
			Members: noShows,
		}, nil)
		s.reportBulk(ctx, run.reportChannelID, "noshow.report", result)
	}

	run.record.Accepted = len(confirmed)
	run.record.CloseReason = string(snap.Reason)
	run.record.ClosedAt = s.opts.Now()
	if err := s.runRepo.Finish(ctx, run.record); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("⚠️ Historique du check-in non clôturé")
	}

	log.Info().
		Str("guild", guildID).
		Str("run", run.record.ID.String()).
		Str("reason", string(snap.Reason)).
		Int("confirmed", len(confirmed)).
		Int("no_shows", len(noShows)).
		Int("failures", len(failures)).
		Msg("🔴 Check-in terminé")
}

func (s *TournamentService) activeCheckIn(guildID string) *checkInRun {
	sess := s.session(guildID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.checkIn
}

func (s *TournamentService) dropCheckIn(sess *session, run *checkInRun) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.checkIn == run {
		sess.checkIn = nil
	}
}
