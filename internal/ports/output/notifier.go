package output

import (
	"context"

	"tournamentbot/internal/domain/entities"
)

// Notifier posts tournament messages.
type Notifier interface {
	Announce(ctx context.Context, channelID, content string) error
	// Acknowledge marks an accepted submission (a ✅ reaction on Discord).
	Acknowledge(ctx context.Context, channelID, messageID string) error
	Report(ctx context.Context, channelID, content string, files ...entities.Artifact) error
}
