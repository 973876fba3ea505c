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

	"github.com/rs/zerolog/log"
)

// GatewayConfig configures the gateway backend: a single upstream that
// multiplexes several AI services behind one endpoint.
type GatewayConfig struct {
	BaseURL  string        // http://localhost:9999 by default
	Provider string        // upstream the gateway should route to, e.g. "openai"
	Model    string        // e.g. "dall-e-3"
	Enabled  bool          // feature flag; disabled means never available
	Timeout  time.Duration // per generation call
}

// Gateway talks to the local AI gateway. Availability requires the enable
// flag plus a live /health probe; any probe error counts as unavailable.
type Gateway struct {
	cfg   GatewayConfig
	http  *http.Client
	probe *http.Client
}

func NewGateway(cfg GatewayConfig) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Gateway{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		probe: &http.Client{Timeout: 3 * time.Second},
	}
}

func (g *Gateway) Name() string {
	return fmt.Sprintf("AI Gateway (%s/%s)", strings.ToUpper(g.cfg.Provider), strings.ToUpper(g.cfg.Model))
}

func (g *Gateway) Hint() string {
	return "Check that the gateway tunnel is up and AI_GATEWAY_ENABLED is set."
}

func (g *Gateway) MaxDimensions() Dimensions {
	if g.cfg.Provider == "openai" && strings.Contains(g.cfg.Model, "dall-e-3") {
		return Dimensions{Width: 1792, Height: 1024}
	}
	return Dimensions{Width: 1024, Height: 1024}
}

func (g *Gateway) Defaults() Params {
	d := Params{"model": g.cfg.Model, "provider": g.cfg.Provider, "style": "vivid"}
	return d
}

func (g *Gateway) Available() bool {
	if !g.cfg.Enabled {
		log.Debug().Msg("gateway disabled in configuration")
		return false
	}
	req, err := http.NewRequest(http.MethodGet, g.cfg.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := g.probe.Do(req)
	if err != nil {
		log.Debug().Str("url", g.cfg.BaseURL).Err(err).Msg("gateway not reachable")
		return false
	}
	defer resp.Body.Close()

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false
	}
	if health.Status != "healthy" {
		log.Warn().Str("status", health.Status).Msg("gateway responded but is not healthy")
		return false
	}
	return true
}

type gatewayGenerateResp struct {
	Success     bool   `json:"success"`
	ImageBase64 string `json:"imageBase64"`
	Error       string `json:"error"`
	Type        string `json:"type"`
}

func (g *Gateway) Generate(ctx context.Context, prompt string, params Params) ([]byte, error) {
	body := map[string]any{
		"prompt":   prompt,
		"model":    g.cfg.Model,
		"size":     params.String("size", "1024x1024"),
		"quality":  params.String("quality", "standard"),
		"style":    params.String("style", "vivid"),
		"provider": g.cfg.Provider,
	}
	b, _ := json.Marshal(body)

	endpoint := g.cfg.BaseURL + "/api/ai/generate/" + g.cfg.Provider
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, WrapFailure(g.Name(), KindUnknown, "build gateway request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, WrapFailure(g.Name(), KindServiceUnavailable,
			"failed to generate via gateway: "+err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapFailure(g.Name(), KindServiceUnavailable, "read gateway response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, g.classifyError(resp.StatusCode, raw)
	}

	var out gatewayGenerateResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, WrapFailure(g.Name(), KindUnknown, "malformed gateway response", err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, NewFailure(g.Name(), KindUnknown, msg)
	}
	if out.ImageBase64 == "" {
		return nil, NewFailure(g.Name(), KindUnknown, "no image data in gateway response")
	}

	img, err := base64.StdEncoding.DecodeString(out.ImageBase64)
	if err != nil {
		return nil, WrapFailure(g.Name(), KindUnknown, "decode gateway image payload", err)
	}
	log.Debug().Int("bytes", len(img)).Msg("image received from gateway")
	return img, nil
}

// classifyError maps the gateway error envelope {error, type} into the
// failure taxonomy. A body that does not parse degrades to KindUnknown
// with the raw status code.
func (g *Gateway) classifyError(status int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
		Type  string `json:"type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == "" {
		return NewFailure(g.Name(), KindUnknown, fmt.Sprintf("gateway error: HTTP %d", status))
	}

	kind := KindUnknown
	switch envelope.Type {
	case "API_KEY_MISSING", "API_KEY_INVALID":
		kind = KindInvalidCredential
	case "RATE_LIMIT_EXCEEDED":
		kind = KindRateLimited
	case "CONTENT_POLICY_VIOLATION":
		kind = KindContentPolicy
	}
	return NewFailure(g.Name(), kind, envelope.Error)
}
