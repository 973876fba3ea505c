package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	name       string
	available  bool
	hint       string
	defaults   Params
	calls      int
	lastParams Params
	fn         func(attempt int) ([]byte, error)
}

func (s *stubBackend) Name() string              { return s.name }
func (s *stubBackend) Available() bool           { return s.available }
func (s *stubBackend) Hint() string              { return s.hint }
func (s *stubBackend) MaxDimensions() Dimensions { return Dimensions{Width: 1024, Height: 1024} }
func (s *stubBackend) Defaults() Params          { return s.defaults }

func (s *stubBackend) Generate(_ context.Context, _ string, params Params) ([]byte, error) {
	s.calls++
	s.lastParams = params
	return s.fn(s.calls)
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func newStub(available bool, fn func(int) ([]byte, error)) *stubBackend {
	return &stubBackend{name: "stub", available: available, fn: fn}
}

func TestGenerateRejectsBlankPrompt(t *testing.T) {
	b := newStub(true, func(int) ([]byte, error) { return []byte("img"), nil })
	p := WithRetry(b, Policy{Sleep: noSleep})

	for _, prompt := range []string{"", "   ", "\t\n"} {
		_, err := p.Generate(context.Background(), prompt, nil)
		require.Error(t, err)
		assert.Equal(t, KindInvalidParameters, KindOf(err))
	}
	assert.Zero(t, b.calls, "validation must happen before any backend call")
}

func TestGenerateRejectsOverlongPrompt(t *testing.T) {
	b := newStub(true, func(int) ([]byte, error) { return []byte("img"), nil })
	p := WithRetry(b, Policy{Sleep: noSleep})

	_, err := p.Generate(context.Background(), strings.Repeat("a", 1001), nil)
	require.Error(t, err)
	assert.Equal(t, KindInvalidParameters, KindOf(err))
	assert.Zero(t, b.calls)

	// Exactly 1000 characters is still fine.
	_, err = p.Generate(context.Background(), strings.Repeat("a", 1000), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, b.calls)
}

func TestGenerateUnavailableFailsWithoutCalls(t *testing.T) {
	b := newStub(false, func(int) ([]byte, error) { return []byte("img"), nil })
	b.hint = "Set STUB_API_KEY."
	p := WithRetry(b, Policy{Sleep: noSleep})

	_, err := p.Generate(context.Background(), "a cat", nil)
	require.Error(t, err)
	assert.Equal(t, KindMissingCredential, KindOf(err))
	assert.Contains(t, err.Error(), "stub")
	assert.Contains(t, err.Error(), "Set STUB_API_KEY.")
	assert.Zero(t, b.calls, "availability gate must prevent network calls")
}

func TestGenerateRetriesExactlyAttempts(t *testing.T) {
	b := newStub(true, func(int) ([]byte, error) {
		return nil, NewFailure("stub", KindRateLimited, "throttled")
	})
	p := WithRetry(b, Policy{Attempts: 3, Sleep: noSleep})

	_, err := p.Generate(context.Background(), "a cat", nil)
	require.Error(t, err)
	assert.Equal(t, 3, b.calls)
	assert.Contains(t, err.Error(), "3")

	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknown, f.Kind)
	// The last attempt's classification survives through the cause chain.
	assert.True(t, IsKind(err, KindRateLimited))
}

func TestGenerateSucceedsAfterTransientFailures(t *testing.T) {
	b := newStub(true, func(attempt int) ([]byte, error) {
		if attempt < 3 {
			return nil, errors.New("boom")
		}
		return []byte("img"), nil
	})
	p := WithRetry(b, Policy{Attempts: 3, Sleep: noSleep})

	out, err := p.Generate(context.Background(), "a cat", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), out)
	assert.Equal(t, 3, b.calls)
}

func TestBackoffIsLinear(t *testing.T) {
	var delays []time.Duration
	b := newStub(true, func(int) ([]byte, error) { return nil, errors.New("boom") })
	p := WithRetry(b, Policy{
		Attempts:  3,
		BaseDelay: 10 * time.Millisecond,
		Sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	})

	_, err := p.Generate(context.Background(), "a cat", nil)
	require.Error(t, err)
	require.Len(t, delays, 2, "no sleep after the final attempt")
	assert.Equal(t, 10*time.Millisecond, delays[0])
	assert.Equal(t, 20*time.Millisecond, delays[1])
	assert.Less(t, delays[0], delays[1])
}

func TestInterruptedSleepAbortsRetrying(t *testing.T) {
	b := newStub(true, func(int) ([]byte, error) { return nil, errors.New("boom") })
	p := WithRetry(b, Policy{
		Attempts: 3,
		Sleep:    func(_ context.Context, _ time.Duration) error { return context.Canceled },
	})

	_, err := p.Generate(context.Background(), "a cat", nil)
	require.Error(t, err)
	assert.Equal(t, 1, b.calls, "abort after the interrupted sleep, no further attempts")

	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknown, f.Kind)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParameterMergeCallerWins(t *testing.T) {
	b := newStub(true, func(int) ([]byte, error) { return []byte("img"), nil })
	b.defaults = Params{"model": "dall-e-3", "style": "vivid"}
	p := WithRetry(b, Policy{Sleep: noSleep})

	_, err := p.Generate(context.Background(), "a cat", Params{"size": "512x512", "style": "natural"})
	require.NoError(t, err)

	// Base defaults, backend defaults and caller values layered in order.
	assert.Equal(t, "512x512", b.lastParams["size"])
	assert.Equal(t, "natural", b.lastParams["style"])
	assert.Equal(t, "dall-e-3", b.lastParams["model"])
	assert.Equal(t, "standard", b.lastParams["quality"])
	assert.Equal(t, 1, b.lastParams["n"])
}

func TestNoSleepOnFirstAttemptSuccess(t *testing.T) {
	slept := false
	b := newStub(true, func(int) ([]byte, error) { return []byte("img"), nil })
	p := WithRetry(b, Policy{Sleep: func(_ context.Context, _ time.Duration) error {
		slept = true
		return nil
	}})

	_, err := p.Generate(context.Background(), "a cat", nil)
	require.NoError(t, err)
	assert.False(t, slept)
}
