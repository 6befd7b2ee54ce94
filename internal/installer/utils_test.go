package installer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCloseFs hands out files whose Close reports a write-back error.
type failingCloseFs struct {
	afero.Fs
}

type failingCloseFile struct {
	afero.File
}

func (f failingCloseFile) Close() error {
	_ = f.File.Close()
	return assert.AnError
}

func (fs failingCloseFs) Create(name string) (afero.File, error) {
	f, err := fs.Fs.Create(name)
	if err != nil {
		return nil, err
	}
	return failingCloseFile{f}, nil
}

func TestDownloadFileReportsCloseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	fs := failingCloseFs{afero.NewMemMapFs()}
	err := downloadFile(context.Background(), srv.Client(), fs, srv.URL+"/tool.tar.gz", "/tmp/tool.tar.gz")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDownloadFileWritesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	require.NoError(t, downloadFile(context.Background(), srv.Client(), fs, srv.URL+"/tool", "/tmp/tool"))
	data, err := afero.ReadFile(fs, "/tmp/tool")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}
