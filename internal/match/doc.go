// Package match ranks declared names against names a definition file
// refers to but that do not exist, to build "did you mean" suggestions.
//
// Key functions:
//   - NormalizeIdent: folds identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - ScoreSignature: grades a function against a wanted step signature
//   - Rank, RankFuncs, Suggest: rank candidates
package match
