package window

import (
	"context"
	"slices"
	"sync"
	"time"

	"tournamentbot/internal/domain"
	"tournamentbot/internal/domain/entities"
)

// GrantFunc applies the checked-in role to a participant. It runs under the
// window lock; an error leaves the participant unconfirmed.
type GrantFunc func(ctx context.Context, p entities.Participant) error

// CheckIn accepts confirmations from an eligible set fixed at creation.
// The set only shrinks, when a member is denied while the window runs.
type CheckIn struct {
	mu        sync.Mutex
	state     State
	eligible  []entities.Participant
	index     map[string]struct{}
	denied    map[string]struct{}
	confirmed []entities.Participant
	seen      map[string]struct{}
	failures  []entities.Failure
	deadline  time.Time
	reason    CloseReason
	done      chan struct{}
	now       func() time.Time
}

// NewCheckIn snapshots eligible; later role membership changes have no effect.
func NewCheckIn(eligible []entities.Participant) (*CheckIn, error) {
	if len(eligible) == 0 {
		return nil, domain.ErrNoEligible
	}
	snapshot := make([]entities.Participant, 0, len(eligible))
	index := make(map[string]struct{}, len(eligible))
	for _, p := range eligible {
		if _, dup := index[p.UserID]; dup {
			continue
		}
		index[p.UserID] = struct{}{}
		snapshot = append(snapshot, p)
	}
	return &CheckIn{
		eligible: snapshot,
		index:    index,
		denied:   make(map[string]struct{}),
		seen:     make(map[string]struct{}),
		done:     make(chan struct{}),
		now:      time.Now,
	}, nil
}

// WithClock replaces the clock Submit compares against the deadline.
func (c *CheckIn) WithClock(now func() time.Time) *CheckIn {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Open starts accepting confirmations until deadline.
func (c *CheckIn) Open(deadline time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Pending {
		return false
	}
	c.state = Open
	c.deadline = deadline
	return true
}

// Submit processes one confirmation.
func (c *CheckIn) Submit(ctx context.Context, sub Submission, grant GrantFunc) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Open && !c.now().Before(c.deadline) {
		c.closeLocked(ReasonDeadline)
	}

	id := sub.Participant.UserID
	switch {
	case c.state != Open:
		return Outcome{Rejection: RejectNotOpen}, nil
	case !MatchesCheck(sub.Content):
		return Outcome{Rejection: RejectPhrase}, nil
	case contains(c.denied, id):
		return Outcome{Rejection: RejectDenied}, nil
	case !contains(c.index, id):
		return Outcome{Rejection: RejectNotEligible}, nil
	case contains(c.seen, id):
		return Outcome{Rejection: RejectDuplicate}, nil
	}

	if grant != nil {
		if err := grant(ctx, sub.Participant); err != nil {
			c.failures = append(c.failures, entities.Failure{Participant: sub.Participant, Err: err})
			return Outcome{Rejection: RejectGrantFailed}, err
		}
	}

	c.seen[id] = struct{}{}
	c.confirmed = append(c.confirmed, sub.Participant)
	if len(c.confirmed) >= len(c.eligible) {
		c.closeLocked(ReasonFull)
		return Outcome{Rejection: Accepted, Closed: true}, nil
	}
	return Outcome{Rejection: Accepted}, nil
}

// Deny drops userID from the eligible set and refuses its later
// confirmations. It reports whether the member had already confirmed, in
// which case the confirmation is withdrawn. An open window whose remaining
// eligible members have all confirmed closes as full.
func (c *CheckIn) Deny(userID string) (wasConfirmed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.denied[userID] = struct{}{}
	if !contains(c.index, userID) {
		return false
	}
	delete(c.index, userID)
	c.eligible = slices.DeleteFunc(c.eligible, func(p entities.Participant) bool { return p.UserID == userID })
	if contains(c.seen, userID) {
		delete(c.seen, userID)
		c.confirmed = slices.DeleteFunc(c.confirmed, func(p entities.Participant) bool { return p.UserID == userID })
		wasConfirmed = true
	}
	if c.state == Open && len(c.confirmed) >= len(c.eligible) {
		c.closeLocked(ReasonFull)
	}
	return wasConfirmed
}

// Expire closes the window when now is at or past the deadline.
func (c *CheckIn) Expire(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Open || now.Before(c.deadline) {
		return false
	}
	c.closeLocked(ReasonDeadline)
	return true
}

// Close ends the window. Only the first call returns true.
func (c *CheckIn) Close(reason CloseReason) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Closed {
		return false
	}
	c.closeLocked(reason)
	return true
}

func (c *CheckIn) closeLocked(reason CloseReason) {
	c.state = Closed
	c.reason = reason
	close(c.done)
}

func (c *CheckIn) Done() <-chan struct{} {
	return c.done
}

func (c *CheckIn) Deadline() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deadline
}

func (c *CheckIn) Eligible() []entities.Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.eligible)
}

func (c *CheckIn) Confirmed() []entities.Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.confirmed)
}

func (c *CheckIn) Failures() []entities.Failure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.failures)
}

// NoShows returns eligible participants that did not confirm, in eligible order.
func (c *CheckIn) NoShows() []entities.Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entities.Participant, 0, len(c.eligible)-len(c.confirmed))
	for _, p := range c.eligible {
		if !contains(c.seen, p.UserID) {
			out = append(out, p)
		}
	}
	return out
}

func (c *CheckIn) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:    c.state,
		Current:  len(c.confirmed),
		Limit:    len(c.eligible),
		Failures: len(c.failures),
		Reason:   c.reason,
	}
}
