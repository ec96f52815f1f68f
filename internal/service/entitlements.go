package service

import "github.com/StudyOwl-Labs/flashdeck-back/internal/db"

const (
	PlanFree = "free"
	PlanPro  = "pro"

	FeatureUnlimitedDecks = "unlimited_decks"
	FeatureAIGeneration   = "ai_generation"

	freeDeckLimit = 3
)

var planFeatures = map[string]map[string]bool{
	PlanPro: {
		FeatureUnlimitedDecks: true,
		FeatureAIGeneration:   true,
	},
}

// HasFeature answers the plan-gating question the billing provider would
// normally be asked. The free plan carries no features.
func HasFeature(user *db.User, feature string) bool {
	return planFeatures[user.Plan][feature]
}
