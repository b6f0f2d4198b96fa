package versioned

import "fmt"

//go:generate go tool stringer -type=Mode -trimprefix=Mode -output=mode_string.go

// Mode selects whether migration steps may fail.
type Mode int

const (
	_ Mode = iota // zero value is not a valid mode

	ModeInfallible
	ModeFallible
)

// Mode keywords accepted in definitions.
const (
	KeywordInfallible = "infallible"
	KeywordFallible   = "fallible"
)

// DefaultMode is used when a definition names no mode.
const DefaultMode = KeywordFallible

// ParseMode maps a mode keyword to a Mode. An empty keyword selects
// DefaultMode.
func ParseMode(keyword string) (Mode, error) {
	switch keyword {
	case "":
		return ParseMode(DefaultMode)
	case KeywordInfallible:
		return ModeInfallible, nil
	case KeywordFallible:
		return ModeFallible, nil
	default:
		return 0, fmt.Errorf("%w '%s', expected 'infallible' or 'fallible'", ErrInvalidMode, keyword)
	}
}

// Keyword returns the definition keyword of the mode.
func (m Mode) Keyword() string {
	switch m {
	case ModeInfallible:
		return KeywordInfallible
	case ModeFallible:
		return KeywordFallible
	default:
		return ""
	}
}
