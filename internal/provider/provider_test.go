package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsSize(t *testing.T) {
	cases := []struct {
		in   any
		w, h int
	}{
		{"512x512", 512, 512},
		{"1792x1024", 1792, 1024},
		{"800", 800, 800},
		{"", 1024, 1024},
		{"axb", 1024, 1024},
		{"-5x100", 1024, 1024},
		{nil, 1024, 1024},
		{42, 1024, 1024},
	}
	for _, c := range cases {
		p := Params{}
		if c.in != nil {
			p["size"] = c.in
		}
		w, h := p.Size()
		assert.Equal(t, c.w, w, "size=%v", c.in)
		assert.Equal(t, c.h, h, "size=%v", c.in)
	}
}

func TestParamsMergeDoesNotMutate(t *testing.T) {
	defaults := Params{"size": "1024x1024", "n": 1}
	caller := Params{"size": "256x256"}

	merged := caller.Merge(defaults)
	assert.Equal(t, "256x256", merged["size"])
	assert.Equal(t, 1, merged["n"])
	assert.Equal(t, "1024x1024", defaults["size"])
	assert.Len(t, caller, 1)
}

func TestFailureChain(t *testing.T) {
	cause := NewFailure("openai", KindRateLimited, "throttled")
	wrapped := WrapFailure("openai", KindUnknown, "failed after 3 attempts", cause)

	assert.Equal(t, KindUnknown, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindRateLimited))
	assert.True(t, IsKind(wrapped, KindUnknown))
	assert.False(t, IsKind(wrapped, KindContentPolicy))

	f, ok := AsFailure(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "openai", f.Provider)
	assert.ErrorIs(t, wrapped, cause)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.False(t, IsKind(errors.New("boom"), KindUnknown))
}
