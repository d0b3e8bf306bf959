// Package api binds the remote quiz service endpoints. The client injects
// the stored bearer token, surfaces server error payloads, and maps 401
// responses to ErrUnauthorized after clearing stored credentials.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quizdeck/internal/auth"
	"quizdeck/internal/logger"
	"quizdeck/internal/quiz"
)

// ErrUnauthorized signals an expired or rejected token. The stored
// credentials have already been cleared when this is returned; callers
// route the user to the login screen.
var ErrUnauthorized = errors.New("authentication expired")

// Error is a non-2xx response with a server-provided message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error (HTTP %d)", e.Status)
}

// Client talks to the quiz service. No method retries automatically; all
// retries are user-initiated.
type Client struct {
	baseURL string
	httpc   *http.Client
	auth    *auth.Store
	log     *logger.Logger
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, authStore *auth.Store, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		auth:    authStore,
		log:     log.With("component", "api"),
	}
}

// StreamURL returns the server-streaming channel endpoint for a generation
// session.
func (c *Client) StreamURL(sessionID string) string {
	return fmt.Sprintf("%s/generation/stream/%s", c.baseURL, url.PathEscape(sessionID))
}

// Token returns the current bearer token, or "" when logged out.
func (c *Client) Token() string {
	return c.auth.Token()
}

// PresignResponse is the direct-upload target issued by the server.
type PresignResponse struct {
	UploadURL string `json:"uploadUrl"`
	FinalURL  string `json:"finalUrl"`
	IsPDF     bool   `json:"isPdf"`
}

// RequestPresign obtains a direct-upload target and the eventual durable
// reference URL for a file.
func (c *Client) RequestPresign(ctx context.Context, fileName string, fileSize int64) (*PresignResponse, error) {
	var out PresignResponse
	body := map[string]any{"fileName": fileName, "fileSize": fileSize}
	if err := c.do(ctx, http.MethodPost, "/s3/request-presign", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FileStatusExist is the conversion-complete status value.
const FileStatusExist = "EXIST"

// CheckFileExist polls the server-side conversion status for finalURL.
func (c *Client) CheckFileExist(ctx context.Context, finalURL string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	path := "/s3/check-file-exist?url=" + url.QueryEscape(finalURL)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// GenerationRequest begins quiz generation. Results arrive via the
// streaming channel keyed by SessionID, not in the POST response.
type GenerationRequest struct {
	UploadedURL    string `json:"uploadedUrl"`
	QuizCount      int    `json:"quizCount"`
	QuizType       string `json:"quizType"`
	DifficultyType string `json:"difficultyType"`
	PageNumbers    []int  `json:"pageNumbers"`
	SessionID      string `json:"sessionId"`
}

// StartGeneration posts a generation request.
func (c *Client) StartGeneration(ctx context.Context, req GenerationRequest) error {
	return c.do(ctx, http.MethodPost, "/generation", req, nil)
}

// Problem set generation statuses reported by GetProblemSet.
const (
	ProblemSetCompleted  = "COMPLETED"
	ProblemSetGenerating = "GENERATING"
)

// ProblemSetResponse is the synchronous view of a problem set. While the
// set is still GENERATING it carries the session id to reconnect to and
// the requested total count.
type ProblemSetResponse struct {
	ProblemSetID string      `json:"problemSetId"`
	Status       string      `json:"status"`
	Quiz         []quiz.Item `json:"quiz"`
	SessionID    string      `json:"sessionId,omitempty"`
	TotalCount   int         `json:"totalCount,omitempty"`
}

// GetProblemSet fetches the currently known items and generation status.
func (c *Client) GetProblemSet(ctx context.Context, id string) (*ProblemSetResponse, error) {
	var out ProblemSetResponse
	if err := c.do(ctx, http.MethodGet, "/problem-set/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetExplanations fetches the per-item rationale list for a problem set.
func (c *Client) GetExplanations(ctx context.Context, problemSetID string) ([]quiz.Explanation, error) {
	var out []quiz.Explanation
	if err := c.do(ctx, http.MethodGet, "/explanation/"+url.PathEscape(problemSetID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RefreshToken asks the server for a fresh access token and stores it.
// Callers treat failure as non-fatal.
func (c *Client) RefreshToken(ctx context.Context) error {
	var out struct {
		AccessToken string     `json:"accessToken"`
		User        *auth.User `json:"user,omitempty"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return errors.New("refresh response carried no token")
	}
	return c.auth.Set(auth.Credentials{AccessToken: out.AccessToken, User: out.User})
}

// do performs one JSON request against the service. A 401 clears the
// stored credentials and returns ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.auth.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		_ = c.auth.Clear()
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); readErr == nil {
			if json.Unmarshal(data, &payload) == nil {
				apiErr.Message = payload.Message
			}
		}
		c.log.Warn("request failed", "method", method, "path", path, "status", resp.StatusCode)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
