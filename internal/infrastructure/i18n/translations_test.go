package i18n

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"tournamentbot/internal/domain"
)

func TestTranslate(t *testing.T) {
	tr := NewTranslator("fr")

	cases := []struct {
		locale string
		key    string
		data   map[string]any
		want   string
	}{
		{"fr", "registration.report", map[string]any{"Count": 3}, "3"},
		{"en", "registration.report", map[string]any{"Count": 3}, "3"},
		{"fr", "error.window_active", nil, "déjà"},
		{"de", "error.window_active", nil, "déjà"},
		{"fr", "no.such.key", nil, "no.such.key"},
		{"fr-CA", "namecheck.name_valid", nil, "pseudo"},
		{"en-GB", "namecheck.name_valid", nil, "username"},
		{"", "namecheck.text_invalid", nil, "texte"},
	}
	for _, tc := range cases {
		got := tr.T(tc.locale, tc.key, tc.data)
		if !strings.Contains(got, tc.want) {
			t.Errorf("T(%s, %s) = %q, want it to contain %q", tc.locale, tc.key, got, tc.want)
		}
	}
}

func TestEveryDomainErrorIsTranslated(t *testing.T) {
	tr := NewTranslator("fr")
	errs := []*domain.Error{
		domain.ErrParticipantRoleNotSet, domain.ErrParticipantRoleLost,
		domain.ErrTournamentRoleNotSet, domain.ErrTournamentRoleLost,
		domain.ErrCheckInRoleNotSet, domain.ErrCheckInRoleLost,
		domain.ErrInscriptionChannelNotSet, domain.ErrInscriptionChannelLost,
		domain.ErrCheckInChannelNotSet, domain.ErrCheckInChannelLost,
		domain.ErrRoleAboveBot, domain.ErrChannelPermissions, domain.ErrHistoryPermission,
		domain.ErrInvalidCapacity, domain.ErrTooManyToValidate, domain.ErrInvalidDuration,
		domain.ErrDurationTooLong, domain.ErrNotEnoughParticipants,
		domain.ErrWindowActive, domain.ErrNoActiveWindow, domain.ErrNoEligible, domain.ErrNoParticipants,
		domain.ErrNotDenied, domain.ErrMemberNotFound,
	}
	for _, locale := range []string{"fr", "en"} {
		for _, e := range errs {
			key := "error." + e.Code
			if got := tr.T(locale, key, map[string]any{"Total": 1, "Found": 1, "Limit": 2}); got == key {
				t.Errorf("%s: %s is not translated", locale, key)
			}
		}
	}
}

func TestLocaleFilesDefineTheSameKeys(t *testing.T) {
	bundle := i18n.NewBundle(language.French)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	ids := map[string][]string{}
	for _, file := range []string{"active.fr.toml", "active.en.toml"} {
		mf, err := bundle.LoadMessageFileFS(localeFS, file)
		if err != nil {
			t.Fatalf("load %s: %v", file, err)
		}
		ids[file] = messageIDs(mf.Messages)
	}
	for file, missing := range missingIDs(ids) {
		t.Errorf("%s lacks %v", file, missing)
	}
}

func TestMissingIDs(t *testing.T) {
	got := missingIDs(map[string][]string{
		"fr": {"a", "b", "c"},
		"en": {"a", "c"},
		"de": {"b"},
	})
	if fmt.Sprint(got["en"]) != "[b]" || fmt.Sprint(got["de"]) != "[a c]" || len(got["fr"]) != 0 {
		t.Fatalf("missing = %v", got)
	}
}
