package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const stabilityURL = "https://api.stability.ai/v2beta/stable-image/generate/sd3"

// StabilityConfig configures the Stability AI backend.
type StabilityConfig struct {
	URL     string // defaults to the production Stability endpoint
	APIKey  string
	Model   string // e.g. "stable-diffusion-xl-1024-v1-0"
	Timeout time.Duration
}

// Stability calls the Stability AI image API. Images come back inline as
// base64 artifacts, no second round trip.
type Stability struct {
	cfg  StabilityConfig
	http *http.Client
}

func NewStability(cfg StabilityConfig) *Stability {
	if cfg.URL == "" {
		cfg.URL = stabilityURL
	}
	if cfg.Model == "" {
		cfg.Model = "stable-diffusion-xl-1024-v1-0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Stability{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

func (s *Stability) Name() string { return "Stability AI " + strings.ToUpper(s.cfg.Model) }

func (s *Stability) Hint() string {
	return "Set STABILITY_API_KEY, or use model ID 999 for the mock provider."
}

// Available is a pure local credential check, no network call.
func (s *Stability) Available() bool {
	return s.cfg.APIKey != "" && s.cfg.APIKey != "your-api-key-here"
}

func (s *Stability) MaxDimensions() Dimensions {
	return Dimensions{Width: 1024, Height: 1024}
}

func (s *Stability) Defaults() Params { return Params{} }

type stabilityResp struct {
	Artifacts []struct {
		Base64 string `json:"base64"`
	} `json:"artifacts"`
}

func (s *Stability) Generate(ctx context.Context, prompt string, params Params) ([]byte, error) {
	width, height := params.Size()
	body := map[string]any{
		"text_prompts": []map[string]any{{"text": prompt, "weight": 1.0}},
		"width":        width,
		"height":       height,
		"cfg_scale":    7.0,
		"steps":        30,
		"samples":      1,
	}
	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(b))
	if err != nil {
		return nil, WrapFailure(s.Name(), KindUnknown, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, WrapFailure(s.Name(), KindNetwork, "request failed: "+err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapFailure(s.Name(), KindNetwork, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := KindUnknown
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = KindInvalidCredential
		case http.StatusTooManyRequests:
			kind = KindRateLimited
		}
		return nil, NewFailure(s.Name(), kind, fmt.Sprintf("HTTP %d from Stability AI", resp.StatusCode))
	}

	var out stabilityResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, WrapFailure(s.Name(), KindUnknown, "malformed response", err)
	}
	if len(out.Artifacts) == 0 {
		return nil, NewFailure(s.Name(), KindUnknown, "no image data")
	}
	if out.Artifacts[0].Base64 == "" {
		return nil, NewFailure(s.Name(), KindUnknown, "no base64 data")
	}

	img, err := base64.StdEncoding.DecodeString(out.Artifacts[0].Base64)
	if err != nil {
		return nil, WrapFailure(s.Name(), KindUnknown, "decode image payload", err)
	}
	return img, nil
}
