package window

import (
	"context"
	"slices"
	"sync"

	"tournamentbot/internal/domain"
	"tournamentbot/internal/domain/entities"
)

// Submission is an inbound message addressed to a window.
type Submission struct {
	Participant entities.Participant
	Content     string
	// HasRole is set when the author already holds the participant role.
	// Only registration looks at it.
	HasRole bool
}

// AppendFunc durably appends a participant id and reports whether it was
// added. It runs under the window lock.
type AppendFunc func(ctx context.Context, participantID string) (bool, error)

// Registration accepts join requests up to a capacity.
type Registration struct {
	mu       sync.Mutex
	limit    int
	state    State
	denied   map[string]struct{}
	seen     map[string]struct{}
	accepted []entities.Participant
	reason   CloseReason
	done     chan struct{}
}

// NewRegistration creates a pending registration window.
func NewRegistration(limit int, denied []string) (*Registration, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidCapacity
	}
	return &Registration{
		limit:  limit,
		denied: toSet(denied),
		seen:   make(map[string]struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Open starts accepting submissions. It reports false unless the window was pending.
func (r *Registration) Open() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Pending {
		return false
	}
	r.state = Open
	return true
}

// Deny adds id to the window's deny-list for the rest of its life.
func (r *Registration) Deny(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.denied[id] = struct{}{}
}

// Submit processes one join request. Rejections are silent; err is only set
// when the durable append failed.
func (r *Registration) Submit(ctx context.Context, sub Submission, store AppendFunc) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := sub.Participant.UserID
	switch {
	case r.state != Open:
		return Outcome{Rejection: RejectNotOpen}, nil
	case !MatchesJoin(sub.Content):
		return Outcome{Rejection: RejectPhrase}, nil
	case contains(r.denied, id):
		return Outcome{Rejection: RejectDenied}, nil
	case contains(r.seen, id):
		return Outcome{Rejection: RejectDuplicate}, nil
	case sub.HasRole:
		return Outcome{Rejection: RejectHasRole}, nil
	}

	if store != nil {
		added, err := store(ctx, id)
		if err != nil {
			return Outcome{Rejection: RejectStoreFailed}, err
		}
		if !added {
			r.seen[id] = struct{}{}
			return Outcome{Rejection: RejectDuplicate}, nil
		}
	}

	r.seen[id] = struct{}{}
	r.accepted = append(r.accepted, sub.Participant)
	if len(r.accepted) >= r.limit {
		r.closeLocked(ReasonFull)
		return Outcome{Rejection: Accepted, Closed: true}, nil
	}
	return Outcome{Rejection: Accepted}, nil
}

// Close ends the window. Only the first call returns true.
func (r *Registration) Close(reason CloseReason) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Closed {
		return false
	}
	r.closeLocked(reason)
	return true
}

func (r *Registration) closeLocked(reason CloseReason) {
	r.state = Closed
	r.reason = reason
	close(r.done)
}

// Done is closed when the window closes.
func (r *Registration) Done() <-chan struct{} {
	return r.done
}

// Accepted returns the accepted participants in join order.
func (r *Registration) Accepted() []entities.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.accepted)
}

// AcceptedIDs returns the accepted ids in join order.
func (r *Registration) AcceptedIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.accepted))
	for i, p := range r.accepted {
		ids[i] = p.UserID
	}
	return ids
}

func (r *Registration) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		State:   r.state,
		Current: len(r.accepted),
		Limit:   r.limit,
		Reason:  r.reason,
	}
}

func contains(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}
