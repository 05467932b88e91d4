package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"strings"
	"sync"
)

//go:embed messages/*.json
var messagesFS embed.FS

// Supported locales
const (
	LocaleEnglish   = "en"
	LocaleUkrainian = "uk"
	DefaultLocale   = LocaleEnglish
)

type localeKey struct{}

// catalogs maps locale -> dotted key ("errors.internal") -> message
var (
	catalogs     map[string]map[string]string
	catalogsOnce sync.Once
)

func loadCatalogs() {
	catalogsOnce.Do(func() {
		catalogs = make(map[string]map[string]string)
		for _, locale := range []string{LocaleEnglish, LocaleUkrainian} {
			data, err := messagesFS.ReadFile("messages/" + locale + ".json")
			if err != nil {
				continue
			}
			var tree map[string]interface{}
			if err := json.Unmarshal(data, &tree); err != nil {
				continue
			}
			flat := make(map[string]string)
			flatten("", tree, flat)
			catalogs[locale] = flat
		}
	})
}

func flatten(prefix string, tree map[string]interface{}, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := v.(type) {
		case string:
			out[key] = v
		case map[string]interface{}:
			flatten(key, v, out)
		}
	}
}

// Localizer resolves message keys for one locale
type Localizer struct {
	locale string
}

// NewLocalizer returns a localizer for locale, or for DefaultLocale when
// locale is not supported.
func NewLocalizer(locale string) *Localizer {
	loadCatalogs()
	if _, ok := catalogs[locale]; !ok {
		locale = DefaultLocale
	}
	return &Localizer{locale: locale}
}

// LocalizerFromContext creates a localizer for the request locale
func LocalizerFromContext(ctx context.Context) *Localizer {
	return NewLocalizer(GetLocaleFromContext(ctx))
}

// T translates key, substituting {name} placeholders from params. Missing
// keys fall back to English, then to the key itself.
func (l *Localizer) T(key string, params ...map[string]string) string {
	msg, ok := catalogs[l.locale][key]
	if !ok {
		msg, ok = catalogs[DefaultLocale][key]
	}
	if !ok {
		return key
	}

	if len(params) > 0 {
		for k, v := range params[0] {
			msg = strings.ReplaceAll(msg, "{"+k+"}", v)
		}
	}
	return msg
}

// WithLocale adds locale to context
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// GetLocaleFromContext retrieves locale from context
func GetLocaleFromContext(ctx context.Context) string {
	if locale, ok := ctx.Value(localeKey{}).(string); ok && locale != "" {
		return locale
	}
	return DefaultLocale
}

// ParseAcceptLanguage returns the first supported language tag in header
// order, ignoring q-values.
func ParseAcceptLanguage(header string) string {
	for _, part := range strings.Split(strings.ToLower(header), ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch strings.SplitN(tag, "-", 2)[0] {
		case LocaleUkrainian:
			return LocaleUkrainian
		case LocaleEnglish:
			return LocaleEnglish
		}
	}
	return DefaultLocale
}

// TWithLocale translates using the specified locale
func TWithLocale(locale, key string, params ...map[string]string) string {
	return NewLocalizer(locale).T(key, params...)
}

// TFromContext translates using the locale stored in ctx
func TFromContext(ctx context.Context, key string, params ...map[string]string) string {
	return LocalizerFromContext(ctx).T(key, params...)
}
