package input

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tournamentbot/internal/application"
	"tournamentbot/internal/domain/entities"
)

// TournamentUseCase is what the chat and HTTP adapters drive.
//
// Start* methods keep using ctx for the whole life of the window, so callers
// pass a context that lives as long as the bot.
type TournamentUseCase interface {
	Settings(ctx context.Context, guildID string) (*entities.GuildSettings, error)
	SetRole(ctx context.Context, guildID string, kind entities.RoleKind, roleID string) error
	SetChannel(ctx context.Context, guildID string, kind entities.ChannelKind, channelID string) error
	SetCheckInDuration(ctx context.Context, guildID string, d time.Duration) error

	Ban(ctx context.Context, guildID, userID string) (application.BanResult, error)
	Unban(ctx context.Context, guildID, userID string) error
	DenyList(ctx context.Context, guildID string) ([]application.DenyEntry, error)
	ClearDenyList(ctx context.Context, guildID string) (int, error)

	PrepareRegistration(ctx context.Context, guildID string, limit int) (*application.RegistrationPlan, error)
	StartRegistration(ctx context.Context, guildID string, limit int, reportChannelID string) (*application.RunHandle, error)
	ManualRegister(ctx context.Context, guildID, channelID string, limit int, afterID, reportChannelID string) ([]entities.Participant, error)

	PrepareValidation(ctx context.Context, guildID string, n int) (*application.ValidationPlan, error)
	Validate(ctx context.Context, plan *application.ValidationPlan, reportChannelID string, tracker *application.Tracker) (application.BulkResult, error)

	PrepareCheckIn(ctx context.Context, guildID string) (*application.CheckInPlan, error)
	StartCheckIn(ctx context.Context, guildID, reportChannelID string) (*application.RunHandle, error)

	PrepareEnd(ctx context.Context, guildID string) (*application.EndPlan, error)
	EndTournament(ctx context.Context, plan *application.EndPlan, reportChannelID string, tracker *application.Tracker) (application.BulkResult, error)

	CancelRun(ctx context.Context, guildID string, runID uuid.UUID) error
	HandleMessage(ctx context.Context, msg entities.Message)

	Info(ctx context.Context, guildID string) (*application.TournamentInfo, error)
	List(ctx context.Context, guildID string) (entities.Artifact, int, error)
}

var _ TournamentUseCase = (*application.TournamentService)(nil)
