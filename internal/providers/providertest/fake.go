// Package providertest offers an in-memory provider for handler and service tests.
package providertest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ncecere/gemini_relay/internal/models"
	"github.com/ncecere/gemini_relay/internal/providers"
)

// Fake records every call and answers with Output or Err.
type Fake struct {
	mu sync.Mutex

	Output    string
	Err       error
	UploadErr error
	HealthErr error

	// OnGenerate runs inside Generate before the canned answer is returned.
	OnGenerate func(parts []models.Part)

	Calls   [][]models.Part
	Uploads []Upload
	Deleted []models.Part
}

// Upload is one recorded Upload call.
type Upload struct {
	Name     string
	MIMEType string
	Data     []byte
}

func (f *Fake) Generate(ctx context.Context, parts []models.Part) (models.Generation, error) {
	if err := ctx.Err(); err != nil {
		return models.Generation{}, err
	}
	f.mu.Lock()
	f.Calls = append(f.Calls, append([]models.Part(nil), parts...))
	hook := f.OnGenerate
	f.mu.Unlock()
	if hook != nil {
		hook(parts)
	}
	if f.Err != nil {
		return models.Generation{}, f.Err
	}
	return models.Generation{
		Text:         f.Output,
		Model:        "fake-model",
		FinishReason: "stop",
		Usage:        models.Usage{PromptTokens: 3, CompletionTokens: 5, TotalTokens: 8},
	}, nil
}

func (f *Fake) Upload(ctx context.Context, name, mimeType string, r io.Reader) (models.Part, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Part{}, err
	}
	if f.UploadErr != nil {
		return models.Part{}, f.UploadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Uploads = append(f.Uploads, Upload{Name: name, MIMEType: mimeType, Data: data})
	id := fmt.Sprintf("files/fake-%d", len(f.Uploads))
	return models.FileRefPart("https://files.example.test/"+id, mimeType, id), nil
}

func (f *Fake) DeleteUpload(ctx context.Context, part models.Part) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, part)
	return nil
}

func (f *Fake) HealthCheck(context.Context) error {
	return f.HealthErr
}

// LastCall returns the parts of the most recent Generate call.
func (f *Fake) LastCall() []models.Part {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return nil
	}
	return f.Calls[len(f.Calls)-1]
}

// CallCount returns how many times Generate ran.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// Provider wraps the fake as a Provider. When withUploader is false the
// provider behaves like one without a file store.
func (f *Fake) Provider(withUploader bool) providers.Provider {
	p := providers.Provider{
		Name:      "fake",
		Model:     "fake-model",
		Metadata:  map[string]string{"endpoint": "https://files.example.test"},
		Generator: f,
		Health:    f.HealthCheck,
	}
	if withUploader {
		p.Uploader = f
	}
	return p
}
