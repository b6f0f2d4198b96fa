package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent folds an identifier for fuzzy matching: CamelCase and
// snake_case spellings of the same words normalize to the same string.
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// TokenizeIdent splits an identifier into lowercase words.
// Examples:
//   - "UserV1ToUserV2" -> ["user", "v1", "to", "user", "v2"]
//   - "price_cents" -> ["price", "cents"]
//   - "XMLParser" -> ["xml", "parser"]
func TokenizeIdent(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// startsToken reports whether a new word begins at runes[i].
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if isSeparator(prev) {
		return false
	}

	// "orderID" splits before 'I'
	if unicode.IsUpper(r) && !unicode.IsUpper(prev) {
		return true
	}

	// "XMLParser" splits before 'P'
	if unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return true
	}

	return false
}
