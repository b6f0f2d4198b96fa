package common

// UnknownStr is returned by String methods for out of range enum values.
const UnknownStr = "unknown"

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// Last returns the last element of the slice and true, or the zero value and false if empty.
func Last[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[len(s)-1], true
}

// Unpack2 returns the first two elements of s, zero values fill the gaps.
func Unpack2[S ~[]E, E any](s S) (first, second E) {
	switch len(s) {
	default:
		return s[0], s[1]
	case 0:
		return
	case 1:
		first = s[0]
		return
	}
}

// Duplicates returns the values occurring more than once, in order of their
// second occurrence.
func Duplicates[S ~[]E, E comparable](s S) []E {
	seen := make(map[E]int, len(s))

	var dups []E
	for _, v := range s {
		seen[v]++
		if seen[v] == 2 {
			dups = append(dups, v)
		}
	}

	return dups
}
