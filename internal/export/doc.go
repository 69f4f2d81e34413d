// Package export runs a batch: it loads the rules, converts each rule's
// sheet with the engine and writes the records to the store.
//
// Rules run one after another. A rule whose workbook or sheet cannot be
// read, or whose columns do not fit the header, is skipped and the batch
// goes on. Only a missing destination root ends the batch early.
package export
