package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/domain/window"
)

// teardownTimeout bounds the close sequence of a window once the owning
// context is gone.
const teardownTimeout = 30 * time.Second

// RunHandle lets the caller follow an active window without touching it.
type RunHandle struct {
	ID        uuid.UUID
	GuildID   string
	Kind      entities.RunKind
	ChannelID string
	OpensAt   time.Time
	// Duration is the check-in length; zero for registrations.
	Duration time.Duration

	snapshot func() window.Snapshot
	deadline func() time.Time
	done     <-chan struct{}
	finished chan struct{}
}

func (h *RunHandle) Snapshot() window.Snapshot {
	return h.snapshot()
}

// Deadline returns the check-in deadline, zero until the window is open.
func (h *RunHandle) Deadline() time.Time {
	if h.deadline == nil {
		return time.Time{}
	}
	return h.deadline()
}

// Done is closed as soon as the window stops accepting submissions.
func (h *RunHandle) Done() <-chan struct{} {
	return h.done
}

// Finished is closed after the close sequence ran.
func (h *RunHandle) Finished() <-chan struct{} {
	return h.finished
}

// wait sleeps for d unless ctx ends or stop closes first.
func wait(ctx context.Context, d time.Duration, stop <-chan struct{}) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		case <-stop:
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-stop:
		return false
	case <-t.C:
		return true
	}
}

func teardownContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
}
