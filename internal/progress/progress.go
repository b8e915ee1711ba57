// Package progress derives completion percentages from resource commitments.
package progress

import (
	"math"

	"github.com/sponsorship-studio/engine/internal/models"
)

// Percent returns how much of goal is covered by raised, as an integer in
// [0, 100]. Commitments of different resource types never count toward each
// other, and a goal without a positive quantity reports 0.
func Percent(raised, goal *models.ResourceCommitment) int {
	if raised == nil || goal == nil {
		return 0
	}
	if raised.ResourceType != goal.ResourceType {
		return 0
	}
	if goal.Quantity <= 0 || math.IsNaN(raised.Quantity) {
		return 0
	}
	pct := math.Round(raised.Quantity / goal.Quantity * 100)
	switch {
	case pct > 100:
		return 100
	case pct < 0:
		return 0
	}
	return int(pct)
}

// Of is Percent applied to a project's raised and goal pair.
func Of(p *models.Project) int {
	if p == nil {
		return 0
	}
	return Percent(p.Raised, p.Goal)
}
