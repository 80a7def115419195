package genai

import "github.com/vietddude/scribe/internal/core/domain"

// Tier-to-model mapping is a fixed table, not computed.
var tierModels = map[domain.ModelTier]string{
	domain.TierPro:   "gemini-2.5-pro",
	domain.TierFlash: "gemini-2.5-flash",
}

// fallbackFlashModel is the lower-cost model retried once when the
// default flash-tier model reports quota exhaustion. A degraded-service
// path distinct from key rotation.
const fallbackFlashModel = "gemini-2.0-flash"

// ModelForTier resolves a request tier to a concrete backend model
// identifier. Unknown tiers resolve to the flash model.
func ModelForTier(tier domain.ModelTier) string {
	if m, ok := tierModels[tier]; ok {
		return m
	}
	return tierModels[domain.TierFlash]
}
