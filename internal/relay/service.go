package relay

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/ncecere/gemini_relay/internal/models"
	"github.com/ncecere/gemini_relay/internal/observability"
	"github.com/ncecere/gemini_relay/internal/providers"
	"github.com/ncecere/gemini_relay/internal/requestctx"
	"github.com/ncecere/gemini_relay/internal/services/staging"
)

// Service runs one provider call per request, staging uploads around it.
type Service struct {
	provider      providers.Provider
	staging       *staging.Service
	obs           *observability.Provider
	deleteUploads bool
}

// Options configure a Service.
type Options struct {
	Provider      providers.Provider
	Staging       *staging.Service
	Observability *observability.Provider
	// DeleteUploads removes provider-side files once the call returns.
	DeleteUploads bool
}

func NewService(opts Options) *Service {
	return &Service{
		provider:      opts.Provider,
		staging:       opts.Staging,
		obs:           opts.Observability,
		deleteUploads: opts.DeleteUploads,
	}
}

// Provider returns the active provider.
func (s *Service) Provider() providers.Provider { return s.provider }

// GenerateText sends a single text prompt. A blank prompt is ErrMissingInput.
func (s *Service) GenerateText(ctx context.Context, prompt string) (models.Generation, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.Generation{}, ErrMissingInput
	}
	return s.generate(ctx, []models.Part{models.TextPart(prompt)})
}

// GenerateFromUpload stages fh, attaches it after the prompt and runs one
// generation. The staged copy is released before returning on every path.
func (s *Service) GenerateFromUpload(ctx context.Context, kind Kind, prompt string, fh *multipart.FileHeader) (models.Generation, error) {
	if fh == nil {
		return models.Generation{}, MissingFile(kind)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = kind.DefaultPrompt()
	}

	staged, err := s.staging.Stage(ctx, fh)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return models.Generation{}, err
		}
		return models.Generation{}, &FileSystemError{Op: "stage upload", Err: err}
	}
	defer s.release(ctx, staged)
	s.obs.RecordStagedBytes(string(kind), staged.Size)

	filePart, cleanup, err := s.filePart(ctx, kind, staged)
	if err != nil {
		return models.Generation{}, err
	}
	defer cleanup()

	return s.generate(ctx, []models.Part{models.TextPart(prompt), filePart})
}

func (s *Service) filePart(ctx context.Context, kind Kind, staged *staging.Staged) (models.Part, func(), error) {
	noop := func() {}
	if kind.ByReference() && s.provider.CanUpload() {
		rc, err := staged.Open(ctx)
		if err != nil {
			return models.Part{}, noop, &FileSystemError{Op: "read staged upload", Err: err}
		}
		defer rc.Close()
		part, err := s.provider.Uploader.Upload(ctx, staged.Filename, staged.ContentType, rc)
		if err != nil {
			return models.Part{}, noop, &ProviderError{Provider: s.provider.Name, Err: err}
		}
		if !s.deleteUploads {
			return part, noop, nil
		}
		return part, func() { s.deleteUpload(ctx, part) }, nil
	}

	data, err := staged.ReadAll(ctx)
	if err != nil {
		return models.Part{}, noop, &FileSystemError{Op: "read staged upload", Err: err}
	}
	return models.InlinePart(data, staged.ContentType, staged.Filename), noop, nil
}

func (s *Service) generate(ctx context.Context, parts []models.Part) (models.Generation, error) {
	route := ""
	if rc, ok := requestctx.FromContext(ctx); ok {
		route = rc.Route
	}

	start := time.Now()
	gen, err := s.provider.Generator.Generate(ctx, parts)
	elapsed := time.Since(start)
	if err != nil {
		s.obs.RecordProviderLatency(s.provider.Name, s.provider.Model, route, "error", elapsed)
		return models.Generation{}, &ProviderError{Provider: s.provider.Name, Err: err}
	}
	s.obs.RecordProviderLatency(s.provider.Name, s.provider.Model, route, "success", elapsed)
	s.obs.RecordTokens(s.provider.Name, s.provider.Model, int64(gen.Usage.PromptTokens), int64(gen.Usage.CompletionTokens))
	return gen, nil
}

func (s *Service) release(ctx context.Context, staged *staging.Staged) {
	if err := staged.Release(ctx); err != nil {
		slog.Warn("staged upload cleanup failed", "key", staged.Key, "error", err)
	}
}

func (s *Service) deleteUpload(ctx context.Context, part models.Part) {
	if err := s.provider.Uploader.DeleteUpload(context.WithoutCancel(ctx), part); err != nil {
		slog.Warn("provider upload cleanup failed", "provider", s.provider.Name, "file", part.Name, "error", err)
	}
}
