// Package convert implements the typed cell converters used by import
// rules.
//
// A Converter turns a raw spreadsheet cell into a typed value (Input),
// supplies a default (Default) and renders a typed value back into its
// raw form (Output). Converters are plain values tagged with a Kind;
// composite kinds (List, Tuple, RatioInt, RatioFloat) wrap inner
// converters.
//
// Input reports "no value" with ok == false. The accompanying error, if
// any, explains why and is meant to be reported as a diagnostic; it never
// aborts the caller. An unknown Enum key is a silent no-value.
package convert
