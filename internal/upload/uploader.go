// Package upload transfers study documents to the storage target issued by
// the server and waits for server-side format conversion where needed.
package upload

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quizdeck/internal/api"
	"quizdeck/internal/logger"
)

// Service is the slice of the API client the uploader depends on.
type Service interface {
	RequestPresign(ctx context.Context, fileName string, fileSize int64) (*api.PresignResponse, error)
	CheckFileExist(ctx context.Context, finalURL string) (string, error)
}

// Config bounds uploads and the conversion poll loop.
type Config struct {
	MaxSize           int64
	AllowedExtensions []string
	PollInterval      time.Duration
	PollTimeout       time.Duration
}

// Uploader validates a local file, transfers it directly to the presigned
// target, and polls for conversion completion when the source format is not
// directly previewable. It never retries on its own; the caller decides
// whether the user retries.
type Uploader struct {
	svc   Service
	cfg   Config
	httpc *http.Client
	log   *logger.Logger

	// Injected for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Uploader.
func New(svc Service, cfg Config, log *logger.Logger) *Uploader {
	return &Uploader{
		svc:   svc,
		cfg:   cfg,
		httpc: &http.Client{Timeout: 5 * time.Minute},
		log:   log.With("component", "upload"),
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Upload pushes the file at path and returns its durable reference URL.
// Validation failures (*ValidationError) are reported before any network
// call. A non-PDF source additionally waits for conversion; if the artifact
// does not appear within the configured timeout, ErrConversionTimeout is
// returned.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	info, err := u.validate(path)
	if err != nil {
		return "", err
	}

	presign, err := u.svc.RequestPresign(ctx, filepath.Base(path), info.Size())
	if err != nil {
		return "", fmt.Errorf("request upload target: %w", err)
	}

	if err := u.transfer(ctx, path, presign.UploadURL, info.Size()); err != nil {
		return "", fmt.Errorf("transfer file: %w", err)
	}
	u.log.Info("file transferred", "file", filepath.Base(path), "bytes", info.Size())

	// PDFs are directly previewable; everything else is transcoded
	// server-side and must be polled for.
	if !presign.IsPDF {
		if err := u.waitForConversion(ctx, presign.FinalURL); err != nil {
			return "", err
		}
	}

	return presign.FinalURL, nil
}

// validate fails fast on unsupported type or excessive size.
func (u *Uploader) validate(path string) (os.FileInfo, error) {
	ext := strings.ToLower(filepath.Ext(path))
	allowed := false
	for _, e := range u.cfg.AllowedExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("cannot read file: %v", err)}
	}
	if info.IsDir() {
		return nil, &ValidationError{Reason: "path is a directory"}
	}
	if info.Size() > u.cfg.MaxSize {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("file is %d bytes, limit is %d", info.Size(), u.cfg.MaxSize),
		}
	}
	return info, nil
}

// transfer PUTs the raw bytes directly to the presigned target, bypassing
// the application server.
func (u *Uploader) transfer(ctx context.Context, path, uploadURL string, size int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, f)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := u.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload target responded HTTP %d", resp.StatusCode)
	}
	return nil
}

// waitForConversion polls the status endpoint at a fixed interval until the
// converted artifact exists or the deadline passes. The status is always
// checked before the deadline is evaluated, so a conversion that completes
// exactly at the deadline instant is still observed.
func (u *Uploader) waitForConversion(ctx context.Context, finalURL string) error {
	deadline := u.now().Add(u.cfg.PollTimeout)

	for {
		status, err := u.svc.CheckFileExist(ctx, finalURL)
		if err != nil {
			return fmt.Errorf("check conversion status: %w", err)
		}
		if status == api.FileStatusExist {
			return nil
		}

		if !u.now().Before(deadline) {
			u.log.Warn("conversion timed out", "url", finalURL)
			return ErrConversionTimeout
		}
		if err := u.sleep(ctx, u.cfg.PollInterval); err != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
