package design

import (
	"context"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/imagegen/internal/metrics"
	"github.com/local/imagegen/internal/provider"
	"github.com/local/imagegen/internal/storage"
	"github.com/local/imagegen/internal/store"
)

// Resolver maps a logical model ID to a provider. Satisfied by
// *provider.Dispatcher.
type Resolver interface {
	Resolve(modelID int) provider.Provider
}

// GenerateRequest is the inbound generation contract.
type GenerateRequest struct {
	ModelID int
	Prompt  string
	Params  provider.Params
}

// Design describes a completed generation.
type Design struct {
	ID          string `json:"id"`
	ModelID     int    `json:"model_id"`
	Provider    string `json:"provider"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	StorageKey  string `json:"storage_key"`
}

// Service runs the generate-store-record pipeline. It owns no
// persistence of its own: image bytes go to the ImageStore, lifecycle
// records to the StatusStore.
type Service struct {
	resolver Resolver
	images   storage.ImageStore
	statuses store.StatusStore
}

func New(resolver Resolver, images storage.ImageStore, statuses store.StatusStore) *Service {
	return &Service{resolver: resolver, images: images, statuses: statuses}
}

// Generate resolves the model ID to a provider, generates the image and
// persists the result. Provider failures come back unwrapped so callers
// can inspect their classification.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (Design, error) {
	id := uuid.NewString()
	now := time.Now()

	prov := s.resolver.Resolve(req.ModelID)
	s.record(ctx, id, store.Status{
		State:    store.StatePending,
		ModelID:  req.ModelID,
		Provider: prov.Name(),
		Prompt:   req.Prompt,
		Start:    &now,
	})

	start := time.Now()
	data, err := prov.Generate(ctx, req.Prompt, req.Params)
	dur := time.Since(start)

	if err != nil {
		kind := provider.KindOf(err)
		metrics.ObserveProvider(prov.Name(), req.ModelID, "error", dur)
		metrics.IncFailure(prov.Name(), string(kind))
		metrics.IncGeneration("failed", prov.Name())
		s.finish(ctx, id, req, prov.Name(), now, store.Status{
			State:       store.StateFailed,
			FailureKind: string(kind),
			Message:     err.Error(),
		})
		log.Warn().Str("design_id", id).Int("model_id", req.ModelID).
			Str("provider", prov.Name()).Str("kind", string(kind)).Err(err).
			Msg("design generation failed")
		return Design{}, err
	}
	metrics.ObserveProvider(prov.Name(), req.ModelID, "success", dur)

	contentType := mimetype.Detect(data).String()
	if err := s.images.Put(ctx, id, data, contentType); err != nil {
		metrics.IncGeneration("failed", prov.Name())
		s.finish(ctx, id, req, prov.Name(), now, store.Status{
			State:       store.StateFailed,
			FailureKind: string(provider.KindUnknown),
			Message:     err.Error(),
		})
		return Design{}, fmt.Errorf("store generated image: %w", err)
	}
	metrics.IncStored(s.images.Backend())
	metrics.IncGeneration("success", prov.Name())

	s.finish(ctx, id, req, prov.Name(), now, store.Status{
		State:       store.StateCompleted,
		ContentType: contentType,
		StorageKey:  id,
	})

	log.Info().Str("design_id", id).Int("model_id", req.ModelID).
		Str("provider", prov.Name()).Str("content_type", contentType).
		Int("bytes", len(data)).Dur("duration", dur).
		Msg("design generated")

	return Design{
		ID:          id,
		ModelID:     req.ModelID,
		Provider:    prov.Name(),
		ContentType: contentType,
		Size:        len(data),
		StorageKey:  id,
	}, nil
}

// Image returns the stored bytes and content type for a design.
func (s *Service) Image(ctx context.Context, id string) ([]byte, string, error) {
	return s.images.Get(ctx, id)
}

// Status returns the lifecycle record for a generation request.
func (s *Service) Status(ctx context.Context, id string) (store.Status, bool, error) {
	return s.statuses.Get(ctx, id)
}

func (s *Service) record(ctx context.Context, id string, st store.Status) {
	if err := s.statuses.Set(ctx, id, st); err != nil {
		// Status records are best-effort; generation must not fail on them.
		log.Warn().Str("design_id", id).Err(err).Msg("failed to record generation status")
	}
}

func (s *Service) finish(ctx context.Context, id string, req GenerateRequest, providerName string, started time.Time, st store.Status) {
	end := time.Now()
	st.ModelID = req.ModelID
	st.Provider = providerName
	st.Prompt = req.Prompt
	st.Start = &started
	st.End = &end
	s.record(ctx, id, st)
}
