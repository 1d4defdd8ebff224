package models

import "fmt"

// Outcome is a canonical match result label
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeDraw Outcome = "draw"
	OutcomeAway Outcome = "away"
)

// CanonicalOutcomes is the fixed label order used for tie-breaks and model output
var CanonicalOutcomes = [3]Outcome{OutcomeHome, OutcomeDraw, OutcomeAway}

// Index returns the canonical position of the outcome, or -1
func (o Outcome) Index() int {
	switch o {
	case OutcomeHome:
		return 0
	case OutcomeDraw:
		return 1
	case OutcomeAway:
		return 2
	default:
		return -1
	}
}

// IsCanonical reports whether o is one of home, draw, away
func (o Outcome) IsCanonical() bool {
	return o.Index() >= 0
}

// Title returns the capitalised label used in CLI output
func (o Outcome) Title() string {
	switch o {
	case OutcomeHome:
		return "Home"
	case OutcomeDraw:
		return "Draw"
	case OutcomeAway:
		return "Away"
	default:
		return string(o)
	}
}

// ParseOutcome parses a canonical label
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	if !o.IsCanonical() {
		return "", fmt.Errorf("%w: %q", ErrUnknownOutcome, s)
	}
	return o, nil
}
