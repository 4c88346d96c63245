package locale

import (
	"regexp"
	"strings"
)

type glossaryEntry struct {
	re      *regexp.Regexp
	english string
}

// glossary order is fixed; earlier replacements are visible to later ones.
var glossary = buildGlossary([][2]string{
	{"makan", "meal"},
	{"minum", "drink"},
	{"kopi", "coffee"},
	{"teh", "tea"},
	{"nasi", "rice"},
	{"ayam", "chicken"},
	{"ojek", "motorcycle taxi"},
	{"gojek", "gojek ride"},
	{"grab", "grab ride"},
	{"bensin", "gasoline"},
	{"parkir", "parking"},
	{"beli", "buy"},
	{"belanja", "shopping"},
	{"listrik", "electricity"},
	{"air", "water bill"},
	{"pulsa", "phone credit"},
	{"nonton", "watch movie"},
	{"bioskop", "cinema"},
})

func buildGlossary(pairs [][2]string) []glossaryEntry {
	entries := make([]glossaryEntry, 0, len(pairs))
	for _, p := range pairs {
		entries = append(entries, glossaryEntry{
			re:      regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p[0]) + `\b`),
			english: p[1],
		})
	}
	return entries
}

// TranslateToEnglish lowercases text and swaps common Indonesian expense
// words for their English gloss. Unknown words are left alone.
func TranslateToEnglish(text string) string {
	if text == "" {
		return text
	}
	out := strings.ToLower(text)
	for _, e := range glossary {
		out = e.re.ReplaceAllLiteralString(out, e.english)
	}
	return out
}
