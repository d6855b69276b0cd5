// Package locale resolves UI strings for the languages a user can pick.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	log "log/slog"
	"sort"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var catalogs embed.FS

// App-level locale codes. "ua" is what users pick; the catalog is filed
// under the BCP 47 tag "uk".
const (
	English   = "en"
	Ukrainian = "ua"
)

var tags = map[string]language.Tag{
	English:   language.English,
	Ukrainian: language.Ukrainian,
}

type Resolver struct {
	def        string
	localizers map[string]*i18n.Localizer
}

func New(defaultLocale string) (*Resolver, error) {
	if _, ok := tags[defaultLocale]; !ok {
		return nil, fmt.Errorf("unknown default locale %q", defaultLocale)
	}

	bundle := i18n.NewBundle(tags[defaultLocale])
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, tag := range tags {
		path := "locales/" + tag.String() + ".json"
		if _, err := bundle.LoadMessageFileFS(catalogs, path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	r := &Resolver{
		def:        defaultLocale,
		localizers: make(map[string]*i18n.Localizer, len(tags)),
	}
	for code, tag := range tags {
		r.localizers[code] = i18n.NewLocalizer(bundle, tag.String())
	}
	return r, nil
}

// Locales lists the supported app locale codes in a stable order.
func (r *Resolver) Locales() []string {
	out := make([]string, 0, len(r.localizers))
	for code := range r.localizers {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func (r *Resolver) Supported(code string) bool {
	_, ok := r.localizers[code]
	return ok
}

func (r *Resolver) Default() string {
	return r.def
}

// T resolves key for the locale. kv holds placeholder name/value pairs.
// An unknown locale falls back to the default one; an unresolved key
// comes back unchanged.
func (r *Resolver) T(locale, key string, kv ...any) string {
	loc, ok := r.localizers[locale]
	if !ok {
		loc = r.localizers[r.def]
	}

	var data map[string]any
	if len(kv) > 0 {
		data = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			data[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}

	msg, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if msg == "" {
		if err != nil {
			log.Debug("Unresolved locale key", "key", key, "locale", locale, "err", err)
		}
		return key
	}
	return msg
}
