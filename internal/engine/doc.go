// Package engine converts the rows of one sheet into records according to
// a rule.
//
// For every row the engine seeds the record from the template column (a
// record converted earlier in the same run, or one already in the store),
// converts every bound column, writes plain fields in rule order, then
// remapped fields, and finally stamps the uid and key from the index
// column. An optional post-row hook may replace the record or add more.
//
// Problems with a cell, field or row are recorded as diagnostics on the
// Result and never stop the run. A rule whose index or template column is
// not in the header cannot run at all and yields a *RuleError.
package engine
