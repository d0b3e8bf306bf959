package upload

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizdeck/internal/api"
	"quizdeck/internal/logger"
)

// fakeService records calls and scripts presign/status responses.
type fakeService struct {
	presign       *api.PresignResponse
	presignErr    error
	presignCalled int

	statuses    []string // consumed in order; last value repeats
	statusCalls int
}

func (f *fakeService) RequestPresign(_ context.Context, _ string, _ int64) (*api.PresignResponse, error) {
	f.presignCalled++
	return f.presign, f.presignErr
}

func (f *fakeService) CheckFileExist(_ context.Context, _ string) (string, error) {
	i := f.statusCalls
	f.statusCalls++
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return f.statuses[i], nil
}

func writeTempFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func testConfig() Config {
	return Config{
		MaxSize:           1024,
		AllowedExtensions: []string{".pdf", ".ppt", ".pptx", ".doc", ".docx"},
		PollInterval:      3 * time.Second,
		PollTimeout:       60 * time.Second,
	}
}

// newTestUploader wires a fake clock whose time advances by PollInterval on
// every sleep, so poll loops run instantly.
func newTestUploader(svc Service, cfg Config) (*Uploader, *time.Time) {
	u := New(svc, cfg, logger.Nop())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u.now = func() time.Time { return now }
	u.sleep = func(_ context.Context, d time.Duration) error {
		now = now.Add(d)
		return nil
	}
	return u, &now
}

func TestValidationShortCircuits(t *testing.T) {
	svc := &fakeService{}
	u, _ := newTestUploader(svc, testConfig())

	tests := []struct {
		name string
		path string
	}{
		{"unsupported extension", writeTempFile(t, "notes.txt", 10)},
		{"oversized file", writeTempFile(t, "big.pdf", 2048)},
		{"missing file", filepath.Join(t.TempDir(), "absent.pdf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.Upload(context.Background(), tt.path)

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			// The network layer was never reached.
			assert.Zero(t, svc.presignCalled)
		})
	}
}

func TestUploadPDFSkipsConversionPoll(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	svc := &fakeService{
		presign: &api.PresignResponse{
			UploadURL: target.URL,
			FinalURL:  "https://cdn.example.com/doc.pdf",
			IsPDF:     true,
		},
	}
	u, _ := newTestUploader(svc, testConfig())

	url, err := u.Upload(context.Background(), writeTempFile(t, "doc.pdf", 100))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/doc.pdf", url)
	assert.Zero(t, svc.statusCalls)
}

func TestUploadNonPDFPollsUntilExist(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	svc := &fakeService{
		presign: &api.PresignResponse{
			UploadURL: target.URL,
			FinalURL:  "https://cdn.example.com/slides.pdf",
			IsPDF:     false,
		},
		statuses: []string{"PENDING", "PENDING", "EXIST"},
	}
	u, _ := newTestUploader(svc, testConfig())

	url, err := u.Upload(context.Background(), writeTempFile(t, "slides.pptx", 100))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/slides.pdf", url)
	assert.Equal(t, 3, svc.statusCalls)
}

func TestConversionSuccessAtDeadlineBoundary(t *testing.T) {
	// Non-EXIST until second 60, EXIST exactly at the 60-second deadline:
	// the poll must observe the success, not falsely time out. With a 3s
	// interval, checks land at t=0,3,...,60 — 21 calls, the last succeeds.
	statuses := make([]string, 21)
	for i := range statuses {
		statuses[i] = "PENDING"
	}
	statuses[20] = "EXIST"

	svc := &fakeService{statuses: statuses}
	u, _ := newTestUploader(svc, testConfig())

	err := u.waitForConversion(context.Background(), "https://cdn.example.com/x.pdf")
	require.NoError(t, err)
	assert.Equal(t, 21, svc.statusCalls)
}

func TestConversionTimeoutIsDistinct(t *testing.T) {
	svc := &fakeService{statuses: []string{"PENDING"}}
	u, _ := newTestUploader(svc, testConfig())

	err := u.waitForConversion(context.Background(), "https://cdn.example.com/x.pdf")
	assert.ErrorIs(t, err, ErrConversionTimeout)

	var valErr *ValidationError
	assert.False(t, errors.As(err, &valErr))
}
