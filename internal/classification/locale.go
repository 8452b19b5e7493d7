package classification

import "golang.org/x/text/language"

// Locales supported by label texts; the first one is the fallback.
var supportedLocales = []string{"ko", "en", "zh"}

var localeMatcher = language.NewMatcher([]language.Tag{
	language.Korean,
	language.English,
	language.Chinese,
})

// LocalizedLabel is a label rendered for a single locale.
type LocalizedLabel struct {
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Behavior    BehaviorFlags `json:"behavior"`
}

// MatchLocale picks the supported locale for an Accept-Language value or a
// bare tag like "en". Unparseable or empty input yields the fallback.
func MatchLocale(accept string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return supportedLocales[0]
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return supportedLocales[0]
	}
	return supportedLocales[idx]
}

// Localize renders the labels of a scheme in the best matching locale.
func (r *Registry) Localize(schemeID, accept string) ([]LocalizedLabel, string, bool) {
	s, ok := r.schemes[schemeID]
	if !ok {
		return nil, "", false
	}
	locale := MatchLocale(accept)
	out := make([]LocalizedLabel, 0, len(s.Labels))
	for _, l := range s.Labels {
		out = append(out, LocalizedLabel{
			Code:        l.Code,
			Name:        l.Name.In(locale),
			Description: l.Description.In(locale),
			Icon:        l.Icon,
			Behavior:    l.Behavior,
		})
	}
	return out, locale, true
}

// In returns the text for locale, falling back to Korean.
func (t Text) In(locale string) string {
	if v, ok := t[locale]; ok && v != "" {
		return v
	}
	return t[supportedLocales[0]]
}
