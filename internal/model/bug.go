package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// UnmarshalJSON accepts any casing and surrounding whitespace but rejects
// values outside the four severities.
func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("severity must be a string: %w", err)
	}
	normalized := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if !normalized.Valid() {
		return fmt.Errorf("invalid severity %q", raw)
	}
	*s = normalized
	return nil
}

// BugAnalysis is the structured report extracted from a transcript.
type BugAnalysis struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	StepsToReproduce []string `json:"stepsToReproduce"`
	Severity         Severity `json:"severity" jsonschema:"enum=low,enum=medium,enum=high,enum=critical"`
}

// Issue identifies an issue created on the tracker.
type Issue struct {
	Number int64
	URL    string
	Title  string
}
