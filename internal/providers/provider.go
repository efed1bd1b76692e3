package providers

import "context"

// Provider is the single configured backend the relay talks to.
type Provider struct {
	Name      string
	Model     string
	Metadata  map[string]string
	Generator Generator
	// Uploader is nil when the provider has no file store.
	Uploader FileUploader
	Health   func(ctx context.Context) error
	Close    func() error
}

// CanUpload reports whether files can be passed by reference.
func (p Provider) CanUpload() bool {
	return p.Uploader != nil
}

// Shutdown releases SDK resources held by the provider.
func (p Provider) Shutdown() error {
	if p.Close == nil {
		return nil
	}
	return p.Close()
}
