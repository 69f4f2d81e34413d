package diagnostic

// Codes shared across the importer. Errors and warnings use the same code
// space; severity is carried separately.
const (
	CodeConversionFailure    = "conversion_failure"
	CodeRequiredFieldMissing = "required_field_missing"
	CodeRowRejected          = "row_rejected"
	CodeRowFiltered          = "row_filtered"
	CodeRuleStructureInvalid = "rule_structure_invalid"
	CodeSourceUnreadable     = "source_unreadable"
	CodeLoadFailure          = "load_failure"
	CodeWriteFailed          = "write_failed"

	CodeColumnMissing   = "column_missing"
	CodeTemplateMissing = "template_missing"
	CodeNonIntegralKey  = "non_integral_key"
	CodeNotARule        = "not_a_rule"
)
