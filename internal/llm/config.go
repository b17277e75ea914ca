// Package llm wraps the generative model used as a secondary entity tagger.
package llm

// ModelTier selects a model by capability.
type ModelTier string

const (
	// TierLite is for labeling and short extraction tasks.
	TierLite ModelTier = "lite"
	// TierStandard is for structured output over longer documents.
	TierStandard ModelTier = "standard"
)

// Provider names an LLM provider.
type Provider string

// ProviderGemini is the only supported provider.
const ProviderGemini Provider = "gemini"

// Config maps tiers to provider model names.
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature: 0,
	}
}

// GetModel returns the model for tier, falling back to standard and then lite.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of c with tier bound to model.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string, len(c.Models)+1),
		Temperature: c.Temperature,
	}
	for k, v := range c.Models {
		out.Models[k] = v
	}
	out.Models[tier] = model
	return out
}
