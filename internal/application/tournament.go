package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tournamentbot/internal/domain"
	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/ports/output"
)

// Options tunes the tournament flow.
type Options struct {
	Locale      string
	OpenDelay   time.Duration // grace period between announcement and opening
	CheckInTick time.Duration
	Now         func() time.Time
}

func (o *Options) defaults() {
	if o.Locale == "" {
		o.Locale = "fr"
	}
	if o.OpenDelay < 0 {
		o.OpenDelay = 0
	}
	if o.CheckInTick <= 0 {
		o.CheckInTick = 2 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// TournamentService sequences registration, validation, check-in and teardown
// for every guild. It exclusively owns the active windows.
type TournamentService struct {
	guildRepo  output.GuildRepository
	runRepo    output.RunRepository
	platform   output.Platform
	notifier   output.Notifier
	translator output.T
	opts       Options

	mu       sync.Mutex
	sessions map[string]*session
	running  sync.WaitGroup
}

func NewTournamentService(
	guildRepo output.GuildRepository,
	runRepo output.RunRepository,
	platform output.Platform,
	notifier output.Notifier,
	translator output.T,
	opts Options,
) *TournamentService {
	opts.defaults()
	return &TournamentService{
		guildRepo:  guildRepo,
		runRepo:    runRepo,
		platform:   platform,
		notifier:   notifier,
		translator: translator,
		opts:       opts,
		sessions:   make(map[string]*session),
	}
}

// Wait blocks until every window started so far ran its close sequence.
func (s *TournamentService) Wait() {
	s.running.Wait()
}

// session is the per-guild context. settings caches the role and channel
// configuration and is dropped by every write.
type session struct {
	guildID string

	mu           sync.Mutex
	settings     *entities.GuildSettings
	registration *registrationRun
	checkIn      *checkInRun
}

func (s *TournamentService) session(guildID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[guildID]
	if !ok {
		sess = &session{guildID: guildID}
		s.sessions[guildID] = sess
	}
	return sess
}

func (s *TournamentService) t(key string, data map[string]any) string {
	return s.translator.T(s.opts.Locale, key, data)
}

// settings returns the cached configuration of guildID, loading it on miss.
func (s *TournamentService) settings(ctx context.Context, guildID string) (*entities.GuildSettings, error) {
	sess := s.session(guildID)
	sess.mu.Lock()
	cached := sess.settings
	sess.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	loaded, err := s.guildRepo.Get(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("load guild settings: %w", err)
	}
	sess.mu.Lock()
	sess.settings = loaded
	sess.mu.Unlock()
	return loaded, nil
}

// freshSettings bypasses the cache; used when list contents matter.
func (s *TournamentService) freshSettings(ctx context.Context, guildID string) (*entities.GuildSettings, error) {
	s.invalidate(guildID)
	return s.settings(ctx, guildID)
}

func (s *TournamentService) invalidate(guildID string) {
	sess := s.session(guildID)
	sess.mu.Lock()
	sess.settings = nil
	sess.mu.Unlock()
}

var roleErrors = map[entities.RoleKind][2]*domain.Error{
	entities.RoleParticipant: {domain.ErrParticipantRoleNotSet, domain.ErrParticipantRoleLost},
	entities.RoleTournament:  {domain.ErrTournamentRoleNotSet, domain.ErrTournamentRoleLost},
	entities.RoleCheckIn:     {domain.ErrCheckInRoleNotSet, domain.ErrCheckInRoleLost},
}

var channelErrors = map[entities.ChannelKind][2]*domain.Error{
	entities.ChannelInscription: {domain.ErrInscriptionChannelNotSet, domain.ErrInscriptionChannelLost},
	entities.ChannelCheckIn:     {domain.ErrCheckInChannelNotSet, domain.ErrCheckInChannelLost},
}

// resolvedRole is a configured role that still exists.
type resolvedRole struct {
	ID   string
	Name string
}

func (s *TournamentService) requireRole(ctx context.Context, g *entities.GuildSettings, kind entities.RoleKind) (resolvedRole, error) {
	errs := roleErrors[kind]
	id := g.Role(kind)
	if id == "" {
		return resolvedRole{}, errs[0]
	}
	name, ok, err := s.platform.Role(ctx, g.GuildID, id)
	if err != nil {
		return resolvedRole{}, fmt.Errorf("resolve %s role: %w", kind, err)
	}
	if !ok {
		return resolvedRole{}, errs[1]
	}
	return resolvedRole{ID: id, Name: name}, nil
}

func (s *TournamentService) requireChannel(ctx context.Context, g *entities.GuildSettings, kind entities.ChannelKind) (string, error) {
	errs := channelErrors[kind]
	id := g.Channel(kind)
	if id == "" {
		return "", errs[0]
	}
	ok, err := s.platform.ChannelExists(ctx, g.GuildID, id)
	if err != nil {
		return "", fmt.Errorf("resolve %s channel: %w", kind, err)
	}
	if !ok {
		return "", errs[1]
	}
	return id, nil
}

// Settings returns the stored configuration of guildID.
func (s *TournamentService) Settings(ctx context.Context, guildID string) (*entities.GuildSettings, error) {
	return s.freshSettings(ctx, guildID)
}

// SetRole configures one of the tournament roles. The bot must be able to assign it.
func (s *TournamentService) SetRole(ctx context.Context, guildID string, kind entities.RoleKind, roleID string) error {
	ok, err := s.platform.CanAssignRole(ctx, guildID, roleID)
	if err != nil {
		return fmt.Errorf("check role hierarchy: %w", err)
	}
	if !ok {
		return domain.ErrRoleAboveBot
	}
	if err := s.guildRepo.SetRole(ctx, guildID, kind, roleID); err != nil {
		return fmt.Errorf("set %s role: %w", kind, err)
	}
	s.invalidate(guildID)
	log.Info().Str("guild", guildID).Str("kind", string(kind)).Str("role", roleID).Msg("⚙️ Rôle configuré")
	return nil
}

// SetChannel configures one of the tournament channels. The bot must be able to manage it.
func (s *TournamentService) SetChannel(ctx context.Context, guildID string, kind entities.ChannelKind, channelID string) error {
	ok, err := s.platform.CanManageChannel(ctx, guildID, channelID)
	if err != nil {
		return fmt.Errorf("check channel permissions: %w", err)
	}
	if !ok {
		return domain.ErrChannelPermissions
	}
	if err := s.guildRepo.SetChannel(ctx, guildID, kind, channelID); err != nil {
		return fmt.Errorf("set %s channel: %w", kind, err)
	}
	s.invalidate(guildID)
	log.Info().Str("guild", guildID).Str("kind", string(kind)).Str("channel", channelID).Msg("⚙️ Channel configuré")
	return nil
}

// SetCheckInDuration configures the check-in length, capped at one week.
func (s *TournamentService) SetCheckInDuration(ctx context.Context, guildID string, d time.Duration) error {
	if d <= 0 {
		return domain.ErrInvalidDuration
	}
	if d > entities.MaxCheckInDuration {
		return domain.ErrDurationTooLong
	}
	if err := s.guildRepo.SetCheckInDuration(ctx, guildID, d); err != nil {
		return fmt.Errorf("set check-in duration: %w", err)
	}
	s.invalidate(guildID)
	return nil
}
