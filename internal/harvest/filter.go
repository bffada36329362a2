package harvest

import "github.com/UnknownOlympus/iris/internal/models"

// IsEligible reports whether a target should be harvested: nobody has
// contacted it and it holds exactly one household. Multi-household buildings
// are not supported by the submission workflow.
func IsEligible(target models.Target) bool {
	return target.NeedsApplication() && target.IsSingleHousehold()
}

// Eligible keeps the eligible targets in their original order.
func Eligible(targets []models.Target) []models.Target {
	eligible := make([]models.Target, 0, len(targets))
	for _, target := range targets {
		if IsEligible(target) {
			eligible = append(eligible, target)
		}
	}

	return eligible
}
