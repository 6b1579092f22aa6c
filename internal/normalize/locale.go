package normalize

// Locale holds the platform chrome strings for one interface language.
// The entries are data, not behavior: adding a language means adding a
// table entry, not a new code path.
type Locale struct {
	// TimeUnits are the unit suffixes of relative timestamps such as
	// "5 h", "2 d", "13 min".
	TimeUnits []string

	// TimePhrases are standalone relative-time lines. Entries are regex
	// fragments, so a phrase may carry its own quantifier.
	TimePhrases []string

	// Reactions are the labels opening the engagement footer
	// ("All reactions: ...").
	Reactions []string

	// Like, Comment and Share label the action-button row under a post.
	Like    []string
	Comment []string
	Share   []string

	// SeeMore are the truncation affordance strings.
	SeeMore []string

	// LoginTitles are page-title fragments of the authentication wall.
	LoginTitles []string
}

// Locales maps a language tag to its chrome strings. English is the
// fallback for unknown tags and is always merged into the active locale,
// since the platform may render chrome in either language.
var Locales = map[string]Locale{
	"en": {
		TimeUnits:   []string{"h", "hr", "hrs", "d", "m", "s", "min"},
		TimePhrases: []string{"Just now", "Yesterday"},
		Reactions:   []string{"All reactions"},
		Like:        []string{"Like"},
		Comment:     []string{"Comment"},
		Share:       []string{"Share"},
		SeeMore:     []string{"See more"},
		LoginTitles: []string{"Log in", "Log Into", "Log into Facebook"},
	},
	"pt": {
		TimeUnits: []string{
			"hora", "horas", "dia", "dias", "sem", "semana", "semanas",
		},
		TimePhrases: []string{
			"Agora mesmo", "Agora", "Ontem", `Há\s+\d+\s+[^\n]+`,
		},
		Reactions:   []string{"Todas as reações"},
		Like:        []string{"Gosto", "Curtir"},
		Comment:     []string{"Comentar"},
		Share:       []string{"Partilhar", "Compartilhar"},
		SeeMore:     []string{"Ver mais"},
		LoginTitles: []string{"Iniciar sessão", "Entrar no Facebook"},
	},
}

// FallbackLanguage is used when the configured language has no table.
const FallbackLanguage = "en"

// Supported reports whether a language tag has a locale table.
func Supported(lang string) bool {
	_, ok := Locales[lang]
	return ok
}

// forLanguage returns the locale for lang merged with the fallback
// locale. The merge is duplicate-free so compiled alternations stay small.
func forLanguage(lang string) Locale {
	base := Locales[FallbackLanguage]
	loc, ok := Locales[lang]
	if !ok || lang == FallbackLanguage {
		return base
	}
	return Locale{
		TimeUnits:   mergeStrings(loc.TimeUnits, base.TimeUnits),
		TimePhrases: mergeStrings(loc.TimePhrases, base.TimePhrases),
		Reactions:   mergeStrings(loc.Reactions, base.Reactions),
		Like:        mergeStrings(loc.Like, base.Like),
		Comment:     mergeStrings(loc.Comment, base.Comment),
		Share:       mergeStrings(loc.Share, base.Share),
		SeeMore:     mergeStrings(loc.SeeMore, base.SeeMore),
		LoginTitles: mergeStrings(loc.LoginTitles, base.LoginTitles),
	}
}

func mergeStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
