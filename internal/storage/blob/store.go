package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ncecere/gemini_relay/internal/config"
)

type PutOptions struct {
	ContentType string
	Size        int64
	Metadata    map[string]string
}

type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	Metadata    map[string]string
	Encrypted   bool
}

// Store holds staged uploads between the moment a request arrives and the
// moment the provider call completes.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// Sweep removes objects last written before cutoff and reports how many were removed.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

type backendStore interface {
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

type store struct {
	backend   backendStore
	encryptor *encryptor
}

func New(ctx context.Context, cfg config.StagingConfig) (Store, error) {
	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	enc, err := newEncryptor(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	return &store{backend: backend, encryptor: enc}, nil
}

func buildBackend(ctx context.Context, cfg config.StagingConfig) (backendStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "s3":
		awsCfg, err := loadS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return newS3Store(cfg, awsCfg)
	case "", "local":
		return newLocalStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported staging backend %q", cfg.Backend)
	}
}

func (s *store) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (ObjectInfo, error) {
	if s.encryptor == nil {
		return s.backend.Put(ctx, key, body, opts)
	}
	encReader, plainSize, metadata, err := s.encryptor.encrypt(body)
	if err != nil {
		return ObjectInfo{}, err
	}
	info, err := s.backend.Put(ctx, key, encReader, PutOptions{
		ContentType: opts.ContentType,
		Size:        encReader.Size(),
		Metadata:    mergeMetadata(opts.Metadata, metadata),
	})
	if err != nil {
		return ObjectInfo{}, err
	}
	info.Size = plainSize
	info.Metadata = mergeMetadata(info.Metadata, metadata)
	info.Encrypted = true
	return info, nil
}

func (s *store) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	reader, info, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	if s.encryptor == nil || !isEncrypted(info.Metadata) {
		return reader, info, nil
	}
	defer reader.Close()
	decReader, size, err := s.encryptor.decrypt(reader)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	info.Size = size
	info.Encrypted = true
	return decReader, info, nil
}

func (s *store) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

func (s *store) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	return s.backend.Sweep(ctx, cutoff)
}

func mergeMetadata(a, b map[string]string) map[string]string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	merged := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}

func isEncrypted(meta map[string]string) bool {
	if meta == nil {
		return false
	}
	_, ok := meta[encryptionMetadataKey]
	return ok
}
