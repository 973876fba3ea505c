package provider

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

// cancelledCtx skips the mock's artificial latency.
func cancelledCtx() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestMockProducesRequestedDimensions(t *testing.T) {
	m := NewMock()

	for i := 0; i < 3; i++ {
		out, err := m.Generate(cancelledCtx(), "hello world", Params{"size": "512x512"})
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 512, img.Bounds().Dx())
		assert.Equal(t, 512, img.Bounds().Dy())
	}
}

func TestMockDefaultSize(t *testing.T) {
	m := NewMock()
	out, err := m.Generate(cancelledCtx(), "a very long prompt that needs word wrapping across several rendered lines of placeholder text", nil)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Bounds().Dx())
	assert.Equal(t, 1024, img.Bounds().Dy())
}

func TestMockAlwaysAvailable(t *testing.T) {
	m := NewMock()
	assert.True(t, m.Available())
	assert.Equal(t, Dimensions{Width: 2048, Height: 2048}, m.MaxDimensions())
}

func TestMockThroughRetryWrapper(t *testing.T) {
	p := WithRetry(NewMock(), Policy{Sleep: noSleep})
	out, err := p.Generate(cancelledCtx(), "wrapped", Params{"size": "64x32"})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestWrapText(t *testing.T) {
	face := basicfont.Face7x13
	lines := wrapText(face, "one two three four five six seven eight", 60)
	require.NotEmpty(t, lines)
	for _, l := range lines {
		assert.NotEmpty(t, l)
	}
	assert.Equal(t, []string(nil), wrapText(face, "   ", 60))
}
