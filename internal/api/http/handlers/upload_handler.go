package handlers

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/api/dto"
	"github.com/spec-kit/hr-console/internal/auth"
	"github.com/spec-kit/hr-console/internal/imagehost"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// ImageUploader stores an image and returns where it is served from.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*imagehost.Image, error)
}

// UploadHandler relays profile images to the image host.
type UploadHandler struct {
	uploader ImageUploader
	logger   *zap.Logger
}

// NewUploadHandler constructs handler.
func NewUploadHandler(uploader ImageUploader, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{uploader: uploader, logger: logger}
}

// UploadImage POST /uploads/images. Expects a multipart `image` field.
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	header, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("Image is required", map[string]any{"image": "Image is required"})
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	img, err := h.uploader.Upload(c.UserContext(), header.Filename, file)
	if err != nil {
		return err
	}
	if user, ok := auth.PrincipalFromContext(c); ok {
		h.logger.Info("image uploaded", zap.String("user_id", user.ID), zap.String("url", img.URL))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.UploadResponse{
		URL:        img.URL,
		DisplayURL: img.DisplayURL,
	}})
}
