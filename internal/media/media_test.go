package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/metrics"
)

type fakeUploader struct {
	calls  atomic.Int32
	failOn string
}

func (f *fakeUploader) Upload(ctx context.Context, file File) (string, error) {
	f.calls.Add(1)
	if file.Name == f.failOn {
		return "", errors.New("host rejected " + file.Name)
	}
	rc, err := file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	return "https://cdn.example/" + file.Name + "?len=" + string(rune('0'+len(body))), nil
}

func fileOf(name, content string) File {
	return File{Name: name, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader([]byte(content))), nil
	}}
}

func TestUploadAll_PreservesOrder(t *testing.T) {
	u := &fakeUploader{}
	files := []File{fileOf("a.png", "1"), fileOf("b.png", "22"), fileOf("c.png", "333")}

	urls, err := UploadAll(context.Background(), u, files)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.example/a.png?len=1",
		"https://cdn.example/b.png?len=2",
		"https://cdn.example/c.png?len=3",
	}, urls)
}

func TestUploadAll_FailureFailsWhole(t *testing.T) {
	u := &fakeUploader{failOn: "b.png"}
	files := []File{fileOf("a.png", "1"), fileOf("b.png", "2")}

	uploaded, err := UploadAll(context.Background(), u, files)
	require.ErrorContains(t, err, "host rejected b.png")
	for _, url := range uploaded {
		assert.True(t, strings.HasPrefix(url, "https://cdn.example/a.png"))
	}
}

func TestUploadAll_Empty(t *testing.T) {
	urls, err := UploadAll(context.Background(), &fakeUploader{}, nil)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), fileOf("a", ""))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestWithMetrics(t *testing.T) {
	m := metrics.New("test")
	u := WithMetrics(&fakeUploader{failOn: "bad"}, m)

	_, _ = u.Upload(context.Background(), fileOf("ok", "x"))
	_, _ = u.Upload(context.Background(), fileOf("bad", "x"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Uploads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Uploads.WithLabelValues("error")))
}
