package web

import (
    "encoding/json"
    "net/http"
    "strconv"
    "strings"

    "github.com/rs/zerolog/log"

    "github.com/local/imagegen/internal/catalog"
    "github.com/local/imagegen/internal/design"
    "github.com/local/imagegen/internal/provider"
)

// Web exposes the design generation API over HTTP.
type Web struct {
    svc    *design.Service
    disp   *provider.Dispatcher
    models *catalog.Catalog
}

func New(svc *design.Service, disp *provider.Dispatcher, models *catalog.Catalog) *Web {
    return &Web{svc: svc, disp: disp, models: models}
}

func (w *Web) RegisterRoutes(mux *http.ServeMux) {
    mux.HandleFunc("/health", func(wr http.ResponseWriter, r *http.Request) { wr.WriteHeader(http.StatusOK); _, _ = wr.Write([]byte("ok")) })
    mux.HandleFunc("/api/models", w.handleModels)
    mux.HandleFunc("/api/designs/generate", w.handleGenerate)
    mux.HandleFunc("/api/designs/", w.handleDesign)
    mux.HandleFunc("/api/diagnostics", w.handleDiagnostics)
}

type generateReq struct {
    ModelID int             `json:"model_id"`
    Prompt  string          `json:"prompt"`
    Params  provider.Params `json:"params,omitempty"`
}

type errorResp struct {
    Error string `json:"error"`
    Kind  string `json:"kind,omitempty"`
}

func writeJSON(wr http.ResponseWriter, status int, v any) {
    wr.Header().Set("Content-Type", "application/json")
    wr.WriteHeader(status)
    _ = json.NewEncoder(wr).Encode(v)
}

// statusFor maps a failure classification to an HTTP status.
func statusFor(kind provider.Kind) int {
    switch kind {
    case provider.KindInvalidParameters:
        return http.StatusBadRequest
    case provider.KindContentPolicy:
        return http.StatusUnprocessableEntity
    case provider.KindRateLimited:
        return http.StatusTooManyRequests
    case provider.KindMissingCredential, provider.KindServiceUnavailable:
        return http.StatusServiceUnavailable
    case provider.KindInvalidCredential, provider.KindNetwork:
        return http.StatusBadGateway
    default:
        return http.StatusInternalServerError
    }
}

func (w *Web) handleGenerate(wr http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { wr.WriteHeader(http.StatusMethodNotAllowed); return }
    var req generateReq
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeJSON(wr, http.StatusBadRequest, errorResp{Error: "invalid JSON body"}); return
    }
    if req.ModelID == 0 { req.ModelID = provider.ModelMock }
    if m, ok := w.models.Get(req.ModelID); ok && !m.Active {
        writeJSON(wr, http.StatusBadRequest, errorResp{Error: "model is not active"}); return
    }

    d, err := w.svc.Generate(r.Context(), design.GenerateRequest{
        ModelID: req.ModelID,
        Prompt:  req.Prompt,
        Params:  req.Params,
    })
    if err != nil {
        kind := provider.KindOf(err)
        writeJSON(wr, statusFor(kind), errorResp{Error: err.Error(), Kind: string(kind)})
        return
    }
    writeJSON(wr, http.StatusCreated, d)
}

// handleDesign serves /api/designs/{id}/image and /api/designs/{id}/status.
func (w *Web) handleDesign(wr http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { wr.WriteHeader(http.StatusMethodNotAllowed); return }
    rest := strings.TrimPrefix(r.URL.Path, "/api/designs/")
    id, action, ok := strings.Cut(rest, "/")
    if !ok || id == "" { http.NotFound(wr, r); return }

    switch action {
    case "image":
        data, contentType, err := w.svc.Image(r.Context(), id)
        if err != nil {
            writeJSON(wr, http.StatusNotFound, errorResp{Error: "design not found"}); return
        }
        if contentType == "" { contentType = "application/octet-stream" }
        wr.Header().Set("Content-Type", contentType)
        _, _ = wr.Write(data)
    case "status":
        st, found, err := w.svc.Status(r.Context(), id)
        if err != nil {
            log.Error().Str("design_id", id).Err(err).Msg("status lookup failed")
            writeJSON(wr, http.StatusInternalServerError, errorResp{Error: "status lookup failed"}); return
        }
        if !found {
            writeJSON(wr, http.StatusNotFound, errorResp{Error: "unknown design ID"}); return
        }
        writeJSON(wr, http.StatusOK, st)
    default:
        http.NotFound(wr, r)
    }
}

func (w *Web) handleModels(wr http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { wr.WriteHeader(http.StatusMethodNotAllowed); return }
    writeJSON(wr, http.StatusOK, map[string]any{"models": w.models.List()})
}

type providerDiag struct {
    Provider      string              `json:"provider"`
    Available     bool                `json:"available"`
    MaxDimensions provider.Dimensions `json:"max_dimensions"`
}

// handleDiagnostics re-probes each bound provider so operators see live
// availability, not the startup snapshot the bindings were built from.
func (w *Web) handleDiagnostics(wr http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet { wr.WriteHeader(http.StatusMethodNotAllowed); return }

    bindings := make(map[string]providerDiag)
    for id, p := range w.disp.Bindings() {
        bindings[strconv.Itoa(id)] = providerDiag{
            Provider:      p.Name(),
            Available:     p.Available(),
            MaxDimensions: p.MaxDimensions(),
        }
    }
    resp := map[string]any{
        "bindings":           bindings,
        "live_real_provider": w.disp.HasLiveRealProvider(),
    }
    if def := w.disp.Default(); def != nil {
        resp["default_provider"] = def.Name()
    }
    writeJSON(wr, http.StatusOK, resp)
}

