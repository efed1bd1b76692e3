package blob

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ncecere/gemini_relay/internal/config"
)

func newTestStore(t *testing.T, encryptionKey string) (Store, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := New(context.Background(), config.StagingConfig{
		Backend:       "local",
		EncryptionKey: encryptionKey,
		Local:         config.StagingLocalConfig{Directory: dir},
	})
	require.NoError(t, err)
	return st, dir
}

func readAll(t *testing.T, st Store, key string) (string, ObjectInfo) {
	t.Helper()
	rc, info, err := st.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data), info
}

func TestLocalStoreRoundTrip(t *testing.T) {
	st, dir := newTestStore(t, "")
	ctx := context.Background()

	info, err := st.Put(ctx, "abc", strings.NewReader("hello"), PutOptions{ContentType: "text/plain"})
	require.NoError(t, err)
	require.Equal(t, int64(5), info.Size)
	require.FileExists(t, filepath.Join(dir, "abc"))

	body, got := readAll(t, st, "abc")
	require.Equal(t, "hello", body)
	require.Equal(t, "text/plain", got.ContentType)
	require.False(t, got.Encrypted)

	require.NoError(t, st.Delete(ctx, "abc"))
	require.NoFileExists(t, filepath.Join(dir, "abc"))
	require.NoFileExists(t, filepath.Join(dir, "abc"+metaSuffix))

	_, _, err = st.Get(ctx, "abc")
	require.ErrorIs(t, err, ErrNotFound)

	// deleting twice is not an error
	require.NoError(t, st.Delete(ctx, "abc"))
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	st, _ := newTestStore(t, "")
	_, err := st.Put(context.Background(), "../outside", strings.NewReader("x"), PutOptions{})
	require.Error(t, err)
}

func TestEncryptedStore(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	st, dir := newTestStore(t, key)
	ctx := context.Background()

	info, err := st.Put(ctx, "secret", strings.NewReader("top secret"), PutOptions{ContentType: "text/plain"})
	require.NoError(t, err)
	require.True(t, info.Encrypted)
	require.Equal(t, int64(len("top secret")), info.Size)

	raw, err := os.ReadFile(filepath.Join(dir, "secret"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "top secret")

	body, got := readAll(t, st, "secret")
	require.Equal(t, "top secret", body)
	require.True(t, got.Encrypted)
	require.Equal(t, int64(len("top secret")), got.Size)
}

func TestNewRejectsBadEncryptionKey(t *testing.T) {
	cases := map[string]string{
		"not base64": "%%%",
		"wrong size": base64.StdEncoding.EncodeToString([]byte("short")),
	}
	for name, key := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(context.Background(), config.StagingConfig{
				EncryptionKey: key,
				Local:         config.StagingLocalConfig{Directory: t.TempDir()},
			})
			require.Error(t, err)
		})
	}
}

func TestLocalSweepRemovesOnlyStaleObjects(t *testing.T) {
	st, dir := newTestStore(t, "")
	ctx := context.Background()

	_, err := st.Put(ctx, "stale", strings.NewReader("old"), PutOptions{})
	require.NoError(t, err)
	_, err = st.Put(ctx, "fresh", strings.NewReader("new"), PutOptions{})
	require.NoError(t, err)

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "stale"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "stale"+metaSuffix), old, old))

	removed, err := st.Sweep(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.NoFileExists(t, filepath.Join(dir, "stale"))
	require.NoFileExists(t, filepath.Join(dir, "stale"+metaSuffix))
	require.FileExists(t, filepath.Join(dir, "fresh"))
}
