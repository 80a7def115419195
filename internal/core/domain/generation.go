package domain

// ModelTier is the caller-facing request tier. The concrete backend model
// identifier is resolved from a fixed table in the genai package.
type ModelTier string

const (
	TierPro   ModelTier = "pro"
	TierFlash ModelTier = "flash"
)

// GenerationRequest describes one logical call against the text backend.
type GenerationRequest struct {
	Tier              ModelTier
	SystemInstruction string
	Prompt            string
	// ResponseMIMEType requests structured output (e.g. "application/json").
	// Empty means plain text.
	ResponseMIMEType string
	Temperature      float64
	MaxOutputTokens  int
}

// GenerationResult is the successful outcome of a logical call.
type GenerationResult struct {
	Text  string
	Model string // concrete model that answered, may be the fallback
}
