package strategy

import (
	"math"

	"github.com/yourusername/value-better/internal/models"
)

// Selection is the bet selector verdict for one match
type Selection struct {
	Decision models.Decision
	Outcome  models.Outcome
	Edge     float64
}

// SelectBest picks the outcome with the largest edge, in canonical home/draw/away
// order so that exact ties go to the earlier label. NaN edges mark unquoted outcomes
// and are ignored. A best edge at or below zero, or below minEdge, is a skip.
func SelectBest(edges [3]float64, minEdge float64) Selection {
	best := -1
	for i, edge := range edges {
		if math.IsNaN(edge) {
			continue
		}
		if best < 0 || edge > edges[best] {
			best = i
		}
	}

	if best < 0 || edges[best] <= 0 || edges[best] < minEdge {
		sel := Selection{Decision: models.DecisionSkip}
		if best >= 0 {
			sel.Edge = edges[best]
		}
		return sel
	}
	return Selection{
		Decision: models.DecisionBet,
		Outcome:  models.CanonicalOutcomes[best],
		Edge:     edges[best],
	}
}
