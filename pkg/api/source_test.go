package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tfrecord/internal/tfrecordtest"
	"github.com/ssargent/tfrecord/pkg/index"
	"github.com/ssargent/tfrecord/pkg/tfrecord"
)

func newContainerSource(t *testing.T, data []byte) (*ContainerSource, string) {
	t.Helper()
	path := tfrecordtest.WriteFile(t, "data.tfrecord", data)

	r, err := tfrecord.Open(path, false)
	require.NoError(t, err)
	ix, err := index.Build(context.Background(), r, index.BuildConfig{Dir: filepath.Join(t.TempDir(), "idx")})
	require.NoError(t, r.Close())
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })

	source, err := NewContainerSource(tfrecord.ReaderConfig{FilePath: path}, ix)
	require.NoError(t, err)
	t.Cleanup(func() { source.Close() })
	return source, path
}

func TestContainerSource_Record(t *testing.T) {
	source, _ := newContainerSource(t, tfrecordtest.Strings(nil, "first", "second", "third"))

	got, err := source.Record(2)
	require.NoError(t, err)
	assert.Equal(t, []byte("third"), got)

	// returned records are copies
	first, err := source.Record(0)
	require.NoError(t, err)
	_, err = source.Record(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), first)

	_, err = source.Record(3)
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestContainerSource_Verify(t *testing.T) {
	data := tfrecordtest.Strings(nil, "a", "b")
	source, path := newContainerSource(t, data)

	n, err := source.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// corrupt the last payload byte on disk
	data[len(data)-5] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0600))

	_, err = source.Verify(context.Background())
	assert.ErrorIs(t, err, tfrecord.ErrChecksumMismatch)
}

func TestServer_EndToEnd(t *testing.T) {
	source, _ := newContainerSource(t, tfrecordtest.Strings(nil, "hello", "world"))
	_, router, _ := setupTestServer(t, source, ServerConfig{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/records/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "world", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/verify", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartServer_StopsOnCancel(t *testing.T) {
	source, _ := newContainerSource(t, tfrecordtest.Strings(nil, "a"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, source, ServerConfig{Bind: "127.0.0.1", Port: 0}, nil)
	}()
	cancel()
	assert.NoError(t, <-done)
}
