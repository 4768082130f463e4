package entities

import "fmt"

// WeekLabel is the display name of a plan week, e.g. "wk2"
type WeekLabel string

// WeekIndex is the ordered plan horizon. Position, not label, drives
// cumulative sums and lookahead.
type WeekIndex []WeekLabel

// NewWeekIndex creates a validated WeekIndex
func NewWeekIndex(labels ...string) (WeekIndex, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("week index cannot be empty")
	}

	seen := make(map[string]bool, len(labels))
	weeks := make(WeekIndex, 0, len(labels))
	for _, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("week label cannot be empty")
		}
		if seen[label] {
			return nil, fmt.Errorf("duplicate week label %q", label)
		}
		seen[label] = true
		weeks = append(weeks, WeekLabel(label))
	}

	return weeks, nil
}

// Len returns the number of weeks in the horizon
func (w WeekIndex) Len() int {
	return len(w)
}

// Last returns the position of the final week, or -1 for an empty index
func (w WeekIndex) Last() int {
	return len(w) - 1
}

// Position returns the zero-based position of a label
func (w WeekIndex) Position(label WeekLabel) (int, bool) {
	for i, l := range w {
		if l == label {
			return i, true
		}
	}
	return -1, false
}

// Equal reports whether both indexes hold the same labels in the same order
func (w WeekIndex) Equal(other WeekIndex) bool {
	if len(w) != len(other) {
		return false
	}
	for i := range w {
		if w[i] != other[i] {
			return false
		}
	}
	return true
}

// Strings returns the labels as plain strings
func (w WeekIndex) Strings() []string {
	out := make([]string, len(w))
	for i, l := range w {
		out[i] = string(l)
	}
	return out
}
