package domain

import "errors"

// Kind groups domain errors by how the caller should react.
type Kind int

const (
	KindConfiguration Kind = iota + 1 // role/channel missing or lost
	KindValidation                    // bad input, rejected before any state change
	KindState                         // operation not allowed in the current phase
	KindNotFound
)

// Error is a domain error with a stable code used for translation.
type Error struct {
	Code    string
	Kind    Kind
	Message string
	Data    map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches domain errors by code so that errors carrying data still
// compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// With returns a copy of e carrying template data.
func (e *Error) With(data map[string]any) *Error {
	cp := *e
	cp.Data = data
	return &cp
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

// Domain errors.
var (
	ErrParticipantRoleNotSet    = newError(KindConfiguration, "participant_role_not_set", "le rôle de participant n'est pas réglé")
	ErrParticipantRoleLost      = newError(KindConfiguration, "participant_role_lost", "le rôle de participant a été perdu")
	ErrTournamentRoleNotSet     = newError(KindConfiguration, "tournament_role_not_set", "le rôle de tournois n'est pas réglé")
	ErrTournamentRoleLost       = newError(KindConfiguration, "tournament_role_lost", "le rôle de tournois a été perdu")
	ErrCheckInRoleNotSet        = newError(KindConfiguration, "checkin_role_not_set", "le rôle de check-in n'est pas réglé")
	ErrCheckInRoleLost          = newError(KindConfiguration, "checkin_role_lost", "le rôle de check-in a été perdu")
	ErrInscriptionChannelNotSet = newError(KindConfiguration, "inscription_channel_not_set", "le channel d'inscriptions n'est pas réglé")
	ErrInscriptionChannelLost   = newError(KindConfiguration, "inscription_channel_lost", "le channel d'inscriptions a été perdu")
	ErrCheckInChannelNotSet     = newError(KindConfiguration, "checkin_channel_not_set", "le channel de check-in n'est pas réglé")
	ErrCheckInChannelLost       = newError(KindConfiguration, "checkin_channel_lost", "le channel de check-in a été perdu")
	ErrRoleAboveBot             = newError(KindConfiguration, "role_above_bot", "ce rôle est au dessus du rôle du bot")
	ErrChannelPermissions       = newError(KindConfiguration, "channel_permissions", "le bot ne peut pas lire ou éditer ce channel")
	ErrHistoryPermission        = newError(KindConfiguration, "history_permission", "le bot ne peut pas lire l'historique de ce channel")

	ErrInvalidCapacity       = newError(KindValidation, "invalid_capacity", "la limite doit être strictement positive")
	ErrTooManyToValidate     = newError(KindValidation, "too_many_to_validate", "la limite dépasse le nombre de joueurs retenus")
	ErrInvalidDuration       = newError(KindValidation, "invalid_duration", "la durée doit être strictement positive")
	ErrDurationTooLong       = newError(KindValidation, "duration_too_long", "la durée ne peut pas dépasser une semaine")
	ErrNotEnoughParticipants = newError(KindValidation, "not_enough_participants", "pas assez de participants trouvés")

	ErrWindowActive   = newError(KindState, "window_active", "une phase est déjà en cours")
	ErrNoActiveWindow = newError(KindState, "no_active_window", "aucune phase en cours")
	ErrNoEligible     = newError(KindState, "no_eligible", "aucun membre n'a le rôle de participant")
	ErrNoParticipants = newError(KindState, "no_participants", "aucun participant enregistré")

	ErrNotDenied      = newError(KindNotFound, "not_denied", "le membre n'est pas dans la blacklist")
	ErrMemberNotFound = newError(KindNotFound, "member_not_found", "membre introuvable")
)

// Code returns the code of the domain error wrapped in err, or "".
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Data returns the template data of the domain error wrapped in err.
func Data(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Data
	}
	return nil
}

// IsKind reports whether err wraps a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
