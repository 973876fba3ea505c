package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const maxPromptLen = 1000

// Dimensions advertises the largest image a backend can produce. Purely
// advisory: requested sizes are not clamped against it.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Params is an open bag of generation options (size, quality, style, n,
// backend-specific keys). Missing or unknown keys are tolerated
// everywhere; backend defaults fill the gaps.
type Params map[string]any

// Merge layers p over defaults key-by-key. Caller values always win.
// Neither input map is modified.
func (p Params) Merge(defaults Params) Params {
	merged := make(Params, len(defaults)+len(p))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range p {
		merged[k] = v
	}
	return merged
}

// String returns the string value for key, or def when absent or not a string.
func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Size parses the "size" key as "<width>x<height>". A bare "<width>" means
// a square image. Falls back to 1024x1024 on absent or malformed values.
func (p Params) Size() (int, int) {
	s := p.String("size", "1024x1024")
	parts := strings.SplitN(s, "x", 2)
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || w <= 0 {
		return 1024, 1024
	}
	h := w
	if len(parts) == 2 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && v > 0 {
			h = v
		}
	}
	return w, h
}

// baseDefaults is the parameter set every backend starts from; backends
// extend it via Backend.Defaults.
func baseDefaults() Params {
	return Params{"size": "1024x1024", "quality": "standard", "n": 1}
}

// Provider is the image generation capability exposed to callers.
// Implementations are stateless per request and safe for concurrent use.
type Provider interface {
	// Generate produces raw image bytes for the prompt, or a *Failure.
	Generate(ctx context.Context, prompt string, params Params) ([]byte, error)
	// Available reports whether the provider can serve requests. Cheap:
	// a local credential check, or a short-timeout health probe at most.
	Available() bool
	// Name is the human-readable identifier used in logs and failures.
	Name() string
	// MaxDimensions advertises the largest supported image (advisory).
	MaxDimensions() Dimensions
}

// validatePrompt enforces the uniform prompt precondition shared by all
// providers, before any network activity.
func validatePrompt(name, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return NewFailure(name, KindInvalidParameters, "prompt cannot be empty")
	}
	if len([]rune(prompt)) > maxPromptLen {
		return NewFailure(name, KindInvalidParameters,
			fmt.Sprintf("prompt is too long (max %d characters)", maxPromptLen))
	}
	return nil
}
