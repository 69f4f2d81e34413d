// Package diagnostic provides structured errors, warnings and infos
// accumulated while loading rules and converting rows.
//
// Failures at cell, field and row granularity never unwind; they are
// recorded here with the rule, field and spreadsheet row they concern, and
// surface in the run summary.
package diagnostic
