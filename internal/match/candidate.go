package match

import (
	"go/types"
	"sort"

	"evolve-generator/internal/analyze"
)

// Suggestion thresholds.
const (
	// DefaultMinScore is the minimum combined score for a suggestion.
	DefaultMinScore = 0.5
	// DefaultMaxSuggestions caps the number of suggestions per diagnostic.
	DefaultMaxSuggestions = 3
)

// Candidate is a declared name ranked against a name that was not found.
type Candidate struct {
	Name      string
	NameScore float64      // normalized Levenshtein similarity (0-1)
	Fit       SignatureFit // how well a function candidate fits the wanted signature
	Score     float64      // combined score, higher is better
}

// CandidateList is a list of candidates sorted by score.
type CandidateList []Candidate

// Rank scores every name against target.
func Rank(target string, names []string) CandidateList {
	candidates := make(CandidateList, 0, len(names))
	for _, name := range names {
		score := NameScore(target, name)
		candidates = append(candidates, Candidate{Name: name, NameScore: score, Score: score})
	}

	sort.Sort(candidates)

	return candidates
}

// RankFuncs scores functions against target by name and by how well their
// signature fits a step from param to result. A nil result skips the
// result check.
func RankFuncs(target string, funcs []*analyze.FuncInfo, param, result types.Type) CandidateList {
	candidates := make(CandidateList, 0, len(funcs))
	for _, fn := range funcs {
		nameScore := NameScore(target, fn.ID.Name)
		fit := ScoreSignature(fn.Signature(), param, result)

		candidates = append(candidates, Candidate{
			Name:      fn.ID.Name,
			NameScore: nameScore,
			Fit:       fit,
			Score:     combinedScore(nameScore, fit),
		})
	}

	sort.Sort(candidates)

	return candidates
}

const (
	nameWeight = 0.7
	fitWeight  = 0.3
)

func combinedScore(nameScore float64, fit SignatureFit) float64 {
	return nameScore*nameWeight + float64(fit)/float64(FitExact)*fitWeight
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface: score descending, then name.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList
	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Names returns the candidate names in rank order.
func (c CandidateList) Names() []string {
	names := make([]string, 0, len(c))
	for _, cand := range c {
		names = append(names, cand.Name)
	}

	return names
}

// Suggest returns the default suggestions for target among names.
func Suggest(target string, names []string) []string {
	return Rank(target, names).AboveThreshold(DefaultMinScore).Top(DefaultMaxSuggestions).Names()
}
