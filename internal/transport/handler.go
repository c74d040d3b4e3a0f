package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-photo-insight/internal/config"
	apperrors "go-photo-insight/internal/errors"
	"go-photo-insight/internal/logger"
	"go-photo-insight/internal/observer"
	"go-photo-insight/internal/service"
	"go-photo-insight/internal/storage"
	"go-photo-insight/pkg/models"
	"go-photo-insight/pkg/validation"
)

// Handler wires the record lifecycle service to HTTP
type Handler struct {
	records   service.RecordService
	fetcher   storage.ImageFetcher
	validator *validation.URLValidator
	metrics   *observer.MetricsObserver
	cfg       *config.Config
}

// NewHandler builds the gin router for the service
func NewHandler(
	records service.RecordService,
	fetcher storage.ImageFetcher,
	metrics *observer.MetricsObserver,
	cfg *config.Config,
) http.Handler {
	h := &Handler{
		records:   records,
		fetcher:   fetcher,
		validator: validation.NewURLValidator(),
		metrics:   metrics,
		cfg:       cfg,
	}

	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", h.getMetrics)

	r.POST("/images", h.submitImages)
	r.POST("/images/url", h.submitImagesByURL)
	r.GET("/images", h.listRecords)
	r.GET("/images/:id", h.getRecord)
	r.POST("/images/:id/retry", h.retryRecord)
	r.POST("/images/retry-failed", h.retryAllFailed)
	r.DELETE("/images", h.clearRecords)

	return r
}

// submitImages accepts one or more multipart file uploads under the "images"
// field and registers them for analysis
func (h *Handler) submitImages(c *gin.Context) {
	logRequest(c, "Processing image upload")

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid multipart form", err)
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, "no images provided",
			apperrors.NewValidationError("multipart field 'images' is empty", nil))
		return
	}

	expectedText := c.PostForm("expected_text")

	handles := make([]service.ImageHandle, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read upload", err)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read upload", err)
			return
		}

		handle, err := buildHandle(fileHeader.Filename, data, expectedText)
		if err != nil {
			respondAppError(c, fmt.Sprintf("invalid image %q", fileHeader.Filename), err)
			return
		}
		handles = append(handles, *handle)
	}

	records, err := h.records.Submit(c.Request.Context(), handles)
	if err != nil {
		respondAppError(c, "failed to submit images", err)
		return
	}

	c.JSON(http.StatusAccepted, models.SubmitResponse{Records: records})
}

// submitImagesByURL fetches remote images and registers them for analysis
func (h *Handler) submitImagesByURL(c *gin.Context) {
	logRequest(c, "Processing image submission by URL")

	var req models.SubmitByURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	handles := make([]service.ImageHandle, 0, len(req.URLs))
	for _, imageURL := range req.URLs {
		if err := h.validator.ValidateImageURL(imageURL); err != nil {
			respondAppError(c, "invalid image URL", err)
			return
		}

		fetched, err := h.fetcher.FetchImage(ctx, imageURL)
		if err != nil {
			var fetchErr *apperrors.AppError
			if errors.Is(err, context.DeadlineExceeded) {
				fetchErr = apperrors.NewTimeoutError("Image fetch timeout", err)
			} else {
				fetchErr = apperrors.NewNetworkError("Failed to fetch image", err)
			}
			logger.WithError(fetchErr).WithField("url", imageURL).Error("Failed to fetch image")
			respondAppError(c, "failed to fetch image", fetchErr)
			return
		}

		handle, err := buildHandle(fetched.Name, fetched.SourceBytes, req.ExpectedText)
		if err != nil {
			respondAppError(c, fmt.Sprintf("invalid image at %s", imageURL), err)
			return
		}
		if fetched.MimeType != "" {
			handle.MimeType = fetched.MimeType
		}
		handles = append(handles, *handle)
	}

	records, err := h.records.Submit(c.Request.Context(), handles)
	if err != nil {
		respondAppError(c, "failed to submit images", err)
		return
	}

	c.JSON(http.StatusAccepted, models.SubmitResponse{Records: records})
}

func (h *Handler) listRecords(c *gin.Context) {
	records := h.records.List()
	c.JSON(http.StatusOK, models.RecordListResponse{
		Records: records,
		Total:   len(records),
	})
}

func (h *Handler) getRecord(c *gin.Context) {
	record, err := h.records.Get(c.Param("id"))
	if err != nil {
		respondAppError(c, "failed to load record", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) retryRecord(c *gin.Context) {
	record, err := h.records.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAppError(c, "failed to retry record", err)
		return
	}
	c.JSON(http.StatusAccepted, record)
}

func (h *Handler) retryAllFailed(c *gin.Context) {
	records, err := h.records.RetryAllFailed(c.Request.Context())
	if err != nil {
		respondAppError(c, "failed to retry records", err)
		return
	}
	c.JSON(http.StatusAccepted, models.SubmitResponse{Records: records})
}

func (h *Handler) clearRecords(c *gin.Context) {
	dropped := h.records.ClearAll()
	c.JSON(http.StatusOK, gin.H{"dropped": dropped})
}

func (h *Handler) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.GetMetrics())
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// buildHandle decodes raw image bytes into a pipeline handle
func buildHandle(name string, data []byte, expectedText string) (*service.ImageHandle, error) {
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("empty image payload", nil)
	}

	surface, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewValidationError("unsupported or corrupt image data", err)
	}

	return &service.ImageHandle{
		Name:         name,
		Size:         int64(len(data)),
		MimeType:     http.DetectContentType(data),
		Surface:      surface,
		SourceBytes:  data,
		ExpectedText: expectedText,
	}, nil
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func logRequest(c *gin.Context, message string) {
	logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}).Info(message)
}

func respondAppError(c *gin.Context, message string, err error) {
	respondError(c, apperrors.GetStatusCode(err), message, err)
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
