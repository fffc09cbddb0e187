// Package matching scores Tunebat search hits against a track title and selects the best one.
//
// # Scoring
//
// [Score] is the Sørensen–Dice coefficient over character bigrams, computed with go-edlib after lowercasing both
// titles and dropping whitespace. [NewScorer] returns alternative scorers (Jaro-Winkler, Levenshtein) by name.
//
// # Selection
//
// [Selector.Select] removes case-insensitive duplicate names (first occurrence wins), scores what is left and keeps
// the highest score using strict greater-than, so the earliest candidate wins a tie. The result is a match only
// when that score reaches the confidence floor ([DefaultThreshold], 0.8).
package matching
