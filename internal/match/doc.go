// Package match resolves rule column names against spreadsheet headers.
//
// Headers are authored by hand, so besides exact matches a column may be
// found through its normalized form ("Drop Rate", "drop_rate" and
// "DropRate" all normalize to "droprate"). When nothing matches, ranked
// Levenshtein candidates feed "did you mean" suggestions.
//
// Key functions:
//   - NormalizeHeader: normalizes a header cell for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - RankCandidates: ranks header columns against a wanted name
//   - NewColumns: indexes a header row for lookups
package match
