package output

import (
	"context"

	"tournamentbot/internal/domain/entities"
)

type RunRepository interface {
	Create(ctx context.Context, run *entities.Run) error
	Finish(ctx context.Context, run *entities.Run) error
	Latest(ctx context.Context, guildID string, kind entities.RunKind) (*entities.Run, error)
}
