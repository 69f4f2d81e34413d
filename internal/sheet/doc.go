// Package sheet reads spreadsheet workbooks for the importer.
//
// Open dispatches on the file extension: .xlsx/.xlsm/.xltx/.xltm
// workbooks are read with excelize, .csv and .tsv files are read with
// encoding/csv and expose a single sheet named after the file. Memory
// is an in-process workbook for tests and programmatic sources.
//
// Rows are produced lazily and in a single pass; iterating again reads
// the sheet again from its start.
package sheet
