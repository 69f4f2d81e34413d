package rule

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML rule file from the given path.
func LoadFile(path string) (*RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	rf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for i := range rf.Rules {
		rf.Rules[i].Origin = path
	}

	return rf, nil
}

// Parse parses YAML data into a RuleFile. Unknown keys are rejected so
// that typos in rule files surface as load failures.
func Parse(data []byte) (*RuleFile, error) {
	var rf RuleFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&rf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse rule YAML: %w", err)
	}

	applyDefaults(&rf)

	return &rf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(rf *RuleFile) {
	if rf.Version == "" {
		rf.Version = "1"
	}
}
