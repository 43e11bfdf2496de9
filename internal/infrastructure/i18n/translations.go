package i18n

import (
	"embed"
	"io/fs"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"tournamentbot/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

var _ output.T = (*Translator)(nil)

// Translator renders messages from the embedded active.<lang>.toml files.
// Requested locales are matched to the closest loaded language, so "fr-CA"
// uses the French file.
type Translator struct {
	bundle   *i18n.Bundle
	fallback language.Tag
	matcher  language.Matcher

	mu         sync.Mutex
	localizers map[string]*i18n.Localizer
}

// NewTranslator loads every embedded locale file. An unparsable
// defaultLocale falls back to French.
func NewTranslator(defaultLocale string) *Translator {
	fallback, err := language.Parse(defaultLocale)
	if err != nil {
		log.Warn().Err(err).Str("locale", defaultLocale).Msg("⚠️ Langue inconnue, français utilisé")
		fallback = language.French
	}
	bundle := i18n.NewBundle(fallback)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, _ := fs.Glob(localeFS, "active.*.toml")
	ids := make(map[string][]string, len(files))
	for _, file := range files {
		mf, err := bundle.LoadMessageFileFS(localeFS, file)
		if err != nil {
			log.Error().Err(err).Str("file", file).Msg("❌ Traductions non chargées")
			continue
		}
		ids[mf.Tag.String()] = messageIDs(mf.Messages)
	}
	reportMissing(ids)

	return &Translator{
		bundle:     bundle,
		fallback:   fallback,
		matcher:    language.NewMatcher(bundle.LanguageTags()),
		localizers: make(map[string]*i18n.Localizer),
	}
}

func messageIDs(messages []*i18n.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.ID
	}
	slices.Sort(out)
	return out
}

// missingIDs returns, per locale, the ids that some other locale defines.
func missingIDs(ids map[string][]string) map[string][]string {
	all := map[string]struct{}{}
	for _, list := range ids {
		for _, id := range list {
			all[id] = struct{}{}
		}
	}
	sorted := slices.Sorted(maps.Keys(all))
	missing := map[string][]string{}
	for locale, list := range ids {
		for _, id := range sorted {
			if _, found := slices.BinarySearch(list, id); !found {
				missing[locale] = append(missing[locale], id)
			}
		}
	}
	return missing
}

func reportMissing(ids map[string][]string) {
	for locale, list := range missingIDs(ids) {
		log.Warn().Str("locale", locale).Str("keys", strings.Join(list, ", ")).Msg("⚠️ Traductions incomplètes")
	}
}

func (t *Translator) localizer(locale string) *i18n.Localizer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.localizers[locale]; ok {
		return l
	}
	tag := t.fallback
	if requested, err := language.Parse(locale); err == nil {
		_, idx, conf := t.matcher.Match(requested)
		if conf != language.No {
			tag = t.bundle.LanguageTags()[idx]
		}
	}
	l := i18n.NewLocalizer(t.bundle, tag.String(), t.fallback.String())
	t.localizers[locale] = l
	return l
}

// T renders key for locale. Unknown locales use the default one; a key
// missing everywhere renders as itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	msg, err := t.localizer(locale).Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		log.Debug().Err(err).Str("key", key).Str("locale", locale).Msg("Traduction manquante")
		return key
	}
	return msg
}
