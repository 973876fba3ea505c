package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Backend is the raw generation capability implemented by each concrete
// upstream. It performs one network call (or one synthetic render) and
// classifies its own upstream errors into *Failure values. Everything
// else - prompt validation, the availability gate, retries, backoff and
// final wrapping - lives in the wrapper returned by WithRetry, so a new
// backend is one type with one interesting method rather than a subclass.
type Backend interface {
	// Name identifies the backend in logs and failure messages.
	Name() string
	// Available reports whether the backend is configured and reachable.
	Available() bool
	// MaxDimensions advertises the largest supported image.
	MaxDimensions() Dimensions
	// Defaults returns backend-specific parameter defaults, layered over
	// the shared base set (size, quality, n).
	Defaults() Params
	// Hint is an actionable remediation line appended to the
	// missing-credential failure when the backend is unavailable.
	Hint() string
	// Generate performs the raw call with fully merged parameters.
	Generate(ctx context.Context, prompt string, params Params) ([]byte, error)
}

// Policy controls the retry behavior of a wrapped backend.
type Policy struct {
	// Attempts is the total number of raw calls made before giving up.
	Attempts int
	// BaseDelay scales the inter-attempt sleep: after attempt k the
	// wrapper sleeps BaseDelay*k (linear backoff).
	BaseDelay time.Duration
	// Sleep is injectable for tests; nil means a context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.Sleep == nil {
		p.Sleep = sleepCtx
	}
	return p
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WithRetry wraps a backend with the shared generation policy and returns
// it as a Provider.
func WithRetry(b Backend, pol Policy) Provider {
	return &retrying{b: b, pol: pol.withDefaults()}
}

type retrying struct {
	b   Backend
	pol Policy
}

func (r *retrying) Name() string              { return r.b.Name() }
func (r *retrying) Available() bool           { return r.b.Available() }
func (r *retrying) MaxDimensions() Dimensions { return r.b.MaxDimensions() }

func (r *retrying) Generate(ctx context.Context, prompt string, params Params) ([]byte, error) {
	name := r.b.Name()

	if err := validatePrompt(name, prompt); err != nil {
		return nil, err
	}

	if !r.b.Available() {
		msg := name + " is not available or not configured."
		if hint := r.b.Hint(); hint != "" {
			msg += " " + hint
		}
		log.Error().Str("provider", name).Msg(msg)
		return nil, NewFailure(name, KindMissingCredential, msg)
	}

	merged := params.Merge(r.b.Defaults().Merge(baseDefaults()))

	log.Info().
		Str("provider", name).
		Str("prompt", prompt).
		Interface("params", merged).
		Msg("generating image")

	var lastErr error
	for attempt := 1; attempt <= r.pol.Attempts; attempt++ {
		out, err := r.b.Generate(ctx, prompt, merged)
		if err == nil {
			log.Info().
				Str("provider", name).
				Int("attempt", attempt).
				Int("bytes", len(out)).
				Msg("image generated")
			return out, nil
		}
		lastErr = err
		log.Warn().
			Str("provider", name).
			Int("attempt", attempt).
			Err(err).
			Msg("generation attempt failed")

		if attempt < r.pol.Attempts {
			delay := r.pol.BaseDelay * time.Duration(attempt)
			if serr := r.pol.Sleep(ctx, delay); serr != nil {
				return nil, WrapFailure(name, KindUnknown, "generation interrupted", serr)
			}
		}
	}

	return nil, WrapFailure(name, KindUnknown,
		fmt.Sprintf("failed to generate image after %d attempts", r.pol.Attempts), lastErr)
}
