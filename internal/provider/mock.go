package provider

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Mock is the guaranteed last-resort generator: no credential, no network,
// always available, never fails. It renders a placeholder PNG with a fixed
// layout (title, word-wrapped prompt, watermark) on a randomized pastel
// background, and sleeps a randomized 500-2000ms so callers do not come to
// rely on instant completion.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Name() string    { return "Mock AI Service" }
func (m *Mock) Available() bool { return true }
func (m *Mock) Hint() string    { return "" }

func (m *Mock) MaxDimensions() Dimensions { return Dimensions{Width: 2048, Height: 2048} }

func (m *Mock) Defaults() Params { return Params{} }

func (m *Mock) Generate(ctx context.Context, prompt string, params Params) ([]byte, error) {
	width, height := params.Size()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := color.RGBA{
		R: uint8(150 + rand.Intn(100)),
		G: uint8(150 + rand.Intn(100)),
		B: uint8(150 + rand.Intn(100)),
		A: 255,
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	titleY := height/2 - 50
	drawCentered(img, face, color.Black, "AI Generated (Mock)", width, titleY)

	lineY := titleY + 40
	for _, line := range wrapText(face, prompt, width-100) {
		drawCentered(img, face, color.Black, line, width, lineY)
		lineY += face.Metrics().Height.Ceil() + 4
	}

	caption := "Mock AI Service - Configure real API for production"
	drawText(img, face, color.RGBA{A: 100}, caption, 20, height-10)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory RGBA cannot realistically fail; keep the
		// never-fails contract anyway.
		return nil, WrapFailure(m.Name(), KindUnknown, "encode placeholder", err)
	}

	// Emulate real generation latency. On cancellation we finish early
	// and still hand back the image: the mock never fails.
	delay := time.Duration(500+rand.Intn(1500)) * time.Millisecond
	t := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		t.Stop()
	case <-t.C:
	}

	log.Debug().Str("prompt", prompt).Int("width", width).Int("height", height).
		Msg("generated mock image")
	return buf.Bytes(), nil
}

func drawText(dst draw.Image, face font.Face, c color.Color, s string, x, y int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func drawCentered(dst draw.Image, face font.Face, c color.Color, s string, width, y int) {
	w := font.MeasureString(face, s).Ceil()
	x := (width - w) / 2
	if x < 0 {
		x = 0
	}
	drawText(dst, face, c, s, x, y)
}

// wrapText splits the prompt into lines no wider than maxWidth pixels.
func wrapText(face font.Face, text string, maxWidth int) []string {
	if maxWidth < 1 {
		maxWidth = 1
	}
	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if font.MeasureString(face, candidate).Ceil() > maxWidth && line != "" {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
