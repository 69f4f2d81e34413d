package export

//go:generate go tool stringer -type=State -trimprefix=State -output=state_string.go

// State is the exporter's position in a batch.
type State int

const (
	StateIdle State = iota
	StateLoadingRules
	StateReading
	StateConverting
	StateWriting
)
