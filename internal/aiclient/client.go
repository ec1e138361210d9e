// Package aiclient talks to the external image-generation service. All
// generation and chat traffic leaves the engine through here.
package aiclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"go.uber.org/zap"
)

// Client is the surface consumed by services and the export worker.
type Client interface {
	GenerateInterior(ctx context.Context, req InteriorRequest) (string, error)
	GenerateExterior(ctx context.Context, req ExteriorRequest) (string, error)
	Chat(ctx context.Context, req ChatRequest) (*ChatReply, error)
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// InteriorRequest asks for one room's image. Exactly one room per call;
// callers fan out per room and may have any number of calls in flight.
type InteriorRequest struct {
	Room  string `json:"room"`
	Color string `json:"color"`
	Style string `json:"style"`
}

// ExteriorRequest asks for a facade rendering.
type ExteriorRequest struct {
	FacadeStyle string `json:"facade_style"`
	Material    string `json:"exterior_material"`
	LandSize    string `json:"land_size"`
	Prompt      string `json:"prompt"`
}

// ChatRequest is one user turn. Image, when present, is uploaded as the
// multipart field "input_image".
type ChatRequest struct {
	Message       string
	Image         []byte
	ImageFilename string
}

// ChatReply is the assistant's answer; ImageURL may be a service-relative
// path and must be normalized by the caller before storage.
type ChatReply struct {
	Reply    string `json:"reply"`
	ImageURL string `json:"image_url"`
}

type generateResponse struct {
	ImageURL string `json:"image_url"`
	Error    string `json:"error"`
}

// HTTPClient implements Client over the generation service's REST API.
type HTTPClient struct {
	http   *resty.Client
	tokens TokenSource
	logger *zap.Logger

	// onUnauthorized runs once per rejected credential, after the token
	// source is cleared. The host supplies session teardown here instead of
	// the client hard-coding a redirect.
	onUnauthorized func()
	mu             sync.Mutex
	clearedToken   string
}

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithOnUnauthorized installs the strategy invoked when the service returns
// HTTP 401.
func WithOnUnauthorized(fn func()) Option {
	return func(c *HTTPClient) { c.onUnauthorized = fn }
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.SetTimeout(d) }
}

// New creates a client for the generation service at baseURL.
func New(baseURL string, tokens TokenSource, logger *zap.Logger, opts ...Option) *HTTPClient {
	httpc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(120 * time.Second). // image generation is slow
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")

	c := &HTTPClient{http: httpc, tokens: tokens, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) request(ctx context.Context) (*resty.Request, string) {
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	r := c.http.R().SetContext(ctx)
	if token != "" {
		r.SetHeader("Authorization", "Bearer "+token)
	}
	return r, token
}

// handleUnauthorized clears the credential and runs the host strategy, at
// most once for any given token value.
func (c *HTTPClient) handleUnauthorized(token string) *appErr.AppError {
	c.mu.Lock()
	alreadyCleared := token != "" && token == c.clearedToken
	if !alreadyCleared {
		c.clearedToken = token
	}
	c.mu.Unlock()

	if c.tokens != nil {
		c.tokens.Clear()
	}
	if !alreadyCleared && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	return appErr.New(appErr.CodeUnauthorized, "generation service rejected credentials")
}

func (c *HTTPClient) checkStatus(resp *resty.Response, token string, op string) error {
	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		c.logger.Warn("generation service returned 401", zap.String("op", op))
		return c.handleUnauthorized(token)
	case resp.IsError():
		c.logger.Error("generation service error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return appErr.New(appErr.CodeUpstream, fmt.Sprintf("%s failed: %s", op, resp.String()))
	}
	return nil
}

func (c *HTTPClient) GenerateInterior(ctx context.Context, req InteriorRequest) (string, error) {
	c.logger.Info("generating interior image",
		zap.String("room", req.Room),
		zap.String("style", req.Style),
	)

	var out generateResponse
	r, token := c.request(ctx)
	resp, err := r.
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		Post("/generate/interior")
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeUnavailable, "generation service unreachable")
	}
	if err := c.checkStatus(resp, token, "interior generation"); err != nil {
		return "", err
	}
	if out.ImageURL == "" {
		return "", appErr.New(appErr.CodeUpstream, "generation service returned no image")
	}
	return out.ImageURL, nil
}

func (c *HTTPClient) GenerateExterior(ctx context.Context, req ExteriorRequest) (string, error) {
	c.logger.Info("generating exterior image",
		zap.String("facade_style", req.FacadeStyle),
		zap.String("material", req.Material),
	)

	var out generateResponse
	r, token := c.request(ctx)
	resp, err := r.
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		Post("/generate/exterior")
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeUnavailable, "generation service unreachable")
	}
	if err := c.checkStatus(resp, token, "exterior generation"); err != nil {
		return "", err
	}
	if out.ImageURL == "" {
		return "", appErr.New(appErr.CodeUpstream, "generation service returned no image")
	}
	return out.ImageURL, nil
}

func (c *HTTPClient) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	var out ChatReply
	r, token := c.request(ctx)
	r.SetFormData(map[string]string{"message": req.Message})
	if len(req.Image) > 0 {
		name := req.ImageFilename
		if name == "" {
			name = "input_image"
		}
		r.SetFileReader("input_image", name, bytes.NewReader(req.Image))
	}

	resp, err := r.SetResult(&out).Post("/chat")
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "generation service unreachable")
	}
	if err := c.checkStatus(resp, token, "chat"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadImage fetches a generated image. The URL must already be absolute
// (normalized); the export worker uses this to package archives.
func (c *HTTPClient) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	r, token := c.request(ctx)
	resp, err := r.Get(url)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "image download failed")
	}
	if err := c.checkStatus(resp, token, "image download"); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}
