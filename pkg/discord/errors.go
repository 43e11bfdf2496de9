package discord

import (
	"tournamentbot/internal/domain"
	"tournamentbot/internal/ports/output"
)

const genericErrorKey = "error.generic"

// ErrorKey maps an error to its translation key. Errors that carry no
// domain code get the generic message.
func ErrorKey(err error) string {
	if code := domain.Code(err); code != "" {
		return "error." + code
	}
	return genericErrorKey
}

// ErrorMessage resolves err to a user-facing message in locale.
func ErrorMessage(t output.T, locale string, err error) string {
	if err == nil {
		return ""
	}
	return t.T(locale, ErrorKey(err), domain.Data(err))
}
