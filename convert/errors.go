package convert

import "errors"

var (
	// ErrEmptyValue means the cell held nothing to convert.
	ErrEmptyValue = errors.New("empty value")
	// ErrTypeMismatch means the cell held a value of an unsupported type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnparsable means a string cell could not be parsed.
	ErrUnparsable = errors.New("unparsable value")
	// ErrNoDefault is returned by Default on converters that have none.
	ErrNoDefault = errors.New("converter has no default value")
	// ErrInvalidConverter is returned by Validate.
	ErrInvalidConverter = errors.New("invalid converter")
)
