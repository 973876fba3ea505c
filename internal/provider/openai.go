package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// OpenAIConfig configures the first-party image API backend.
type OpenAIConfig struct {
	URL     string // images endpoint, e.g. https://api.openai.com/v1/images/generations
	APIKey  string
	Model   string // e.g. "dall-e-3"
	Timeout time.Duration
}

// OpenAI calls the OpenAI image generation API. The API returns a URL per
// image, so a successful generation takes a second round trip to download
// the bytes.
type OpenAI struct {
	cfg  OpenAIConfig
	http *http.Client
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.URL == "" {
		cfg.URL = "https://api.openai.com/v1/images/generations"
	}
	if cfg.Model == "" {
		cfg.Model = "dall-e-3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAI{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

func (o *OpenAI) Name() string { return "OpenAI " + strings.ToUpper(o.cfg.Model) }

func (o *OpenAI) Hint() string {
	return "Set OPENAI_API_KEY, or use model ID 999 for the mock provider."
}

// Available is a pure local check: a key is present and is not one of the
// placeholder sentinels shipped in sample configs. No network call.
func (o *OpenAI) Available() bool {
	k := o.cfg.APIKey
	return k != "" && k != "your-api-key-here" && k != "sk-your-key-here"
}

func (o *OpenAI) MaxDimensions() Dimensions {
	if strings.Contains(o.cfg.Model, "dall-e-3") {
		return Dimensions{Width: 1792, Height: 1024}
	}
	return Dimensions{Width: 1024, Height: 1024}
}

func (o *OpenAI) Defaults() Params {
	d := Params{"model": o.cfg.Model}
	if strings.Contains(o.cfg.Model, "dall-e-3") {
		d["quality"] = "standard"
		d["style"] = "vivid"
	}
	return d
}

type openAIImageResp struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func (o *OpenAI) Generate(ctx context.Context, prompt string, params Params) ([]byte, error) {
	body := map[string]any{
		"model":           o.cfg.Model,
		"prompt":          prompt,
		"n":               1,
		"size":            params.String("size", "1024x1024"),
		"response_format": "url",
	}
	if strings.Contains(o.cfg.Model, "dall-e-3") {
		body["quality"] = params.String("quality", "standard")
		body["style"] = params.String("style", "vivid")
	}
	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.URL, bytes.NewReader(b))
	if err != nil {
		return nil, WrapFailure(o.Name(), KindUnknown, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, WrapFailure(o.Name(), KindNetwork, "request failed: "+err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapFailure(o.Name(), KindNetwork, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, o.classifyError(resp.StatusCode, raw)
	}

	var out openAIImageResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, WrapFailure(o.Name(), KindUnknown, "malformed response", err)
	}
	if len(out.Data) == 0 || out.Data[0].URL == "" {
		return nil, NewFailure(o.Name(), KindUnknown, "no image data in response")
	}

	log.Debug().Str("url", out.Data[0].URL).Msg("image ready, downloading")
	return o.download(ctx, out.Data[0].URL)
}

// download fetches the generated image from the URL returned by the API.
func (o *OpenAI) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, WrapFailure(o.Name(), KindUnknown, "build download request", err)
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return nil, WrapFailure(o.Name(), KindNetwork, "download failed: "+err.Error(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, NewFailure(o.Name(), KindNetwork,
			fmt.Sprintf("image download returned HTTP %d", resp.StatusCode))
	}
	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapFailure(o.Name(), KindNetwork, "read image bytes", err)
	}
	log.Debug().Int("bytes", len(img)).Msg("image downloaded")
	return img, nil
}

// classifyError maps the OpenAI error envelope into the failure taxonomy.
func (o *OpenAI) classifyError(status int, body []byte) error {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Message == "" {
		return NewFailure(o.Name(), KindUnknown,
			fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)))
	}

	kind := KindUnknown
	switch {
	case status == http.StatusUnauthorized:
		kind = KindInvalidCredential
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case strings.Contains(envelope.Error.Type, "content_policy"):
		kind = KindContentPolicy
	}
	return NewFailure(o.Name(), kind, envelope.Error.Message)
}
