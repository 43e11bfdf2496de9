package entities

import (
	"time"

	"github.com/google/uuid"
)

// RunKind is the phase a run belongs to.
type RunKind string

const (
	RunRegistration RunKind = "registration"
	RunCheckIn      RunKind = "checkin"
)

// Run is the persisted history of one opened window.
type Run struct {
	ID          uuid.UUID
	GuildID     string
	Kind        RunKind
	Capacity    int
	Accepted    int
	CloseReason string // empty while the window is open
	OpenedAt    time.Time
	ClosedAt    time.Time
}
