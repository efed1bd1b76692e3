package staging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/ncecere/gemini_relay/internal/config"
	"github.com/ncecere/gemini_relay/internal/storage/blob"
)

const sniffLen = 3072

// ErrFileTooLarge is returned when an upload exceeds staging.max_size_mb.
var ErrFileTooLarge = errors.New("file too large")

// Service moves uploads into the staging store and sweeps abandoned ones.
type Service struct {
	store blob.Store
	cfg   config.StagingConfig
	now   func() time.Time
}

func NewService(store blob.Store, cfg config.StagingConfig) *Service {
	return &Service{store: store, cfg: cfg, now: time.Now}
}

// Staged is a handle to one staged upload. Release must be called exactly
// once the upload is no longer needed; further calls are no-ops.
type Staged struct {
	Key         string
	Filename    string
	ContentType string
	Size        int64

	store    blob.Store
	released atomic.Bool
}

// Stage copies the multipart upload into the staging store under a fresh key.
func (s *Service) Stage(ctx context.Context, fh *multipart.FileHeader) (*Staged, error) {
	if fh == nil {
		return nil, fmt.Errorf("stage: no file")
	}
	maxBytes := s.cfg.MaxBytes()
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d MB", ErrFileTooLarge, fh.Filename, fh.Size, s.cfg.MaxSizeMB)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	contentType := resolveContentType(fh.Header.Get("Content-Type"), head)

	var body io.Reader = io.MultiReader(bytes.NewReader(head), src)
	if maxBytes > 0 {
		body = io.LimitReader(body, maxBytes+1)
	}

	key := uuid.NewString()
	filename := filepath.Base(fh.Filename)
	info, err := s.store.Put(ctx, key, body, blob.PutOptions{
		ContentType: contentType,
		Size:        fh.Size,
		Metadata:    map[string]string{"filename": filename},
	})
	if err != nil {
		_ = s.store.Delete(context.WithoutCancel(ctx), key)
		return nil, fmt.Errorf("write staged upload: %w", err)
	}

	staged := &Staged{
		Key:         key,
		Filename:    filename,
		ContentType: contentType,
		Size:        info.Size,
		store:       s.store,
	}
	if maxBytes > 0 && info.Size > maxBytes {
		staged.release(ctx)
		return nil, fmt.Errorf("%w: %s exceeds %d MB", ErrFileTooLarge, filename, s.cfg.MaxSizeMB)
	}
	return staged, nil
}

// Open returns a reader over the staged bytes.
func (st *Staged) Open(ctx context.Context) (io.ReadCloser, error) {
	rc, _, err := st.store.Get(ctx, st.Key)
	if err != nil {
		return nil, fmt.Errorf("open staged upload %s: %w", st.Key, err)
	}
	return rc, nil
}

// ReadAll loads the staged bytes into memory.
func (st *Staged) ReadAll(ctx context.Context) ([]byte, error) {
	rc, err := st.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read staged upload %s: %w", st.Key, err)
	}
	return data, nil
}

// Release deletes the staged object. It ignores cancellation of ctx.
func (st *Staged) Release(ctx context.Context) error {
	if st == nil || !st.released.CompareAndSwap(false, true) {
		return nil
	}
	if err := st.store.Delete(context.WithoutCancel(ctx), st.Key); err != nil {
		return fmt.Errorf("release staged upload %s: %w", st.Key, err)
	}
	return nil
}

func (st *Staged) release(ctx context.Context) {
	if err := st.Release(ctx); err != nil {
		slog.Warn("staging cleanup failed", "key", st.Key, "error", err)
	}
}

// Sweep removes staged objects older than staging.orphan_ttl.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	return s.store.Sweep(ctx, s.now().Add(-s.cfg.OrphanTTL))
}

// RunSweeper sweeps once immediately and then every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	run := func() {
		removed, err := s.Sweep(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Error("staging sweeper error", "error", err)
			}
			return
		}
		if removed > 0 {
			slog.Info("staging sweeper removed orphaned uploads", "count", removed)
		}
	}
	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

func resolveContentType(declared string, head []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.HasPrefix(strings.ToLower(declared), "application/octet-stream") {
		return declared
	}
	return mimetype.Detect(head).String()
}
