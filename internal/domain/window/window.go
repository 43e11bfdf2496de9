// Package window holds the registration and check-in state machines.
//
// Both windows are safe for concurrent use: every submission is serialized
// by the window lock, including the side effect (durable write or role grant)
// that decides whether the submission is accepted.
package window

import (
	"regexp"
	"strings"
)

// State of a window. Pending -> Open -> Closed; Closed is terminal.
type State int

const (
	Pending State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Open:
		return "open"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// CloseReason tells why a window closed.
type CloseReason string

const (
	ReasonFull      CloseReason = "full"
	ReasonDeadline  CloseReason = "deadline"
	ReasonCancelled CloseReason = "cancelled"
)

// Natural reports whether the window closed on its own.
func (r CloseReason) Natural() bool {
	return r == ReasonFull || r == ReasonDeadline
}

// Rejection explains why a submission was ignored. Submitters never see it.
type Rejection int

const (
	Accepted Rejection = iota
	RejectNotOpen
	RejectPhrase
	RejectDenied
	RejectDuplicate
	RejectHasRole
	RejectNotEligible
	RejectGrantFailed
	RejectStoreFailed
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectNotOpen:
		return "not_open"
	case RejectPhrase:
		return "phrase"
	case RejectDenied:
		return "denied"
	case RejectDuplicate:
		return "duplicate"
	case RejectHasRole:
		return "has_role"
	case RejectNotEligible:
		return "not_eligible"
	case RejectGrantFailed:
		return "grant_failed"
	case RejectStoreFailed:
		return "store_failed"
	}
	return "unknown"
}

// Outcome is the result of one submission.
type Outcome struct {
	Rejection Rejection
	// Closed is set on the submission that filled the window.
	Closed bool
}

func (o Outcome) Accepted() bool {
	return o.Rejection == Accepted
}

var (
	joinPhrase  = regexp.MustCompile(`(?i)^je participe\.?$`)
	checkPhrase = regexp.MustCompile(`(?i)^!?check\.?$`)
	// letters, digits, underscores and spaces, at most 32 of them
	nameRule = regexp.MustCompile(`^[\p{L}\p{N}_ ]{0,32}$`)
)

// MatchesJoin reports whether content is the registration phrase.
func MatchesJoin(content string) bool {
	return joinPhrase.MatchString(strings.TrimSpace(content))
}

// MatchesCheck reports whether content is the check-in phrase.
func MatchesCheck(content string) bool {
	return checkPhrase.MatchString(strings.TrimSpace(content))
}

// ValidName reports whether name follows the tournament naming rule.
func ValidName(name string) bool {
	return nameRule.MatchString(name)
}

// Snapshot is a read-only view of a window used for rendering.
type Snapshot struct {
	State    State
	Current  int
	Limit    int
	Failures int
	Reason   CloseReason
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
