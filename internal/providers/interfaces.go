package providers

import (
	"context"
	"io"

	"github.com/ncecere/gemini_relay/internal/models"
)

// Generator performs a single content-generation call from an ordered list
// of parts.
type Generator interface {
	Generate(ctx context.Context, parts []models.Part) (models.Generation, error)
}

// FileUploader is implemented by providers that host uploaded files and can
// reference them by URI from a prompt.
type FileUploader interface {
	Upload(ctx context.Context, name, mimeType string, r io.Reader) (models.Part, error)
	DeleteUpload(ctx context.Context, part models.Part) error
}
