// Package imagehost relays profile image uploads to a third-party image host.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/config"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// CodeUpstream marks failures of the image host itself.
const CodeUpstream = "UPSTREAM_FAILED"

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Image is a hosted image.
type Image struct {
	URL        string
	DisplayURL string
}

type uploadResponse struct {
	Data struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// Client posts images to the configured endpoint.
type Client struct {
	endpoint string
	apiKey   string
	maxBytes int64
	http     *http.Client
	logger   *zap.Logger
}

// New builds a client. A nil httpClient gets one bounded by the configured
// timeout.
func New(cfg config.ImageHostConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		maxBytes: maxBytes,
		http:     httpClient,
		logger:   logger,
	}
}

// MaxBytes is the largest accepted upload.
func (c *Client) MaxBytes() int64 {
	return c.maxBytes
}

// Upload validates the image read from r and sends it to the host.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*Image, error) {
	if c.apiKey == "" {
		return nil, apperrors.NewDomainError(CodeUpstream, "image hosting is not configured", http.StatusServiceUnavailable, nil)
	}

	content, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return nil, apperrors.NewValidationError("unable to read image", map[string]any{"image": err.Error()})
	}
	if len(content) == 0 {
		return nil, apperrors.NewValidationError("Image is required", map[string]any{"image": "Image is required"})
	}
	if int64(len(content)) > c.maxBytes {
		msg := "Image must be at most " + humanBytes(c.maxBytes)
		return nil, apperrors.NewValidationError(msg, map[string]any{"image": msg})
	}

	detected := mimetype.Detect(content)
	if !mimetype.EqualsAny(detected.String(), allowedTypes...) {
		return nil, apperrors.NewValidationError("Unsupported image type", map[string]any{
			"image": "Unsupported image type " + detected.String(),
		})
	}

	body, contentType, err := c.buildForm(filename, content)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("image upload failed", zap.Error(err))
		return nil, upstreamError(err)
	}
	defer resp.Body.Close()

	var decoded uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return nil, upstreamError(fmt.Errorf("decode response: %w", err))
	}
	if resp.StatusCode >= http.StatusMultipleChoices || !decoded.Success || decoded.Data.URL == "" {
		c.logger.Warn("image host rejected upload",
			zap.Int("status", resp.StatusCode),
			zap.Bool("success", decoded.Success))
		return nil, upstreamError(fmt.Errorf("image host status %d", resp.StatusCode))
	}

	img := &Image{URL: decoded.Data.URL, DisplayURL: decoded.Data.DisplayURL}
	if img.DisplayURL == "" {
		img.DisplayURL = img.URL
	}
	return img, nil
}

func (c *Client) buildForm(filename string, content []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("key", c.apiKey); err != nil {
		return nil, "", err
	}
	if filename == "" {
		filename = "image"
	}
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10:
		return fmt.Sprintf("%d KB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

func upstreamError(err error) error {
	return &apperrors.DomainError{
		Code:       CodeUpstream,
		Message:    "image upload failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}
