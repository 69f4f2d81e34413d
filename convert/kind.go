package convert

import "strings"

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind tags the behaviour of a Converter.
type Kind int

const (
	_ Kind = iota // zero value is an invalid kind

	KindInt
	KindFloat
	KindStr
	KindBool
	KindList
	KindTuple
	KindEnum
	KindRatioInt
	KindRatioFloat
	KindTemplate

	// KindTotal is the number of defined kinds plus the invalid zero kind.
	KindTotal = int(iota)
)

// IsValid reports whether k is one of the defined kinds.
func (k Kind) IsValid() bool {
	return k > 0 && int(k) < KindTotal
}

var kindNames = map[string]Kind{
	"int":         KindInt,
	"integer":     KindInt,
	"float":       KindFloat,
	"number":      KindFloat,
	"str":         KindStr,
	"string":      KindStr,
	"bool":        KindBool,
	"boolean":     KindBool,
	"list":        KindList,
	"tuple":       KindTuple,
	"enum":        KindEnum,
	"ratio_int":   KindRatioInt,
	"ratioint":    KindRatioInt,
	"ratio_float": KindRatioFloat,
	"ratiofloat":  KindRatioFloat,
	"template":    KindTemplate,
}

// ParseKind resolves a kind name as written in rule files. Matching is
// case-insensitive; "-" and "_" are interchangeable.
func ParseKind(name string) (Kind, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	k, ok := kindNames[key]

	return k, ok
}
