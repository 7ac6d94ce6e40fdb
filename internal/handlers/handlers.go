package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	apierr "github.com/Brownie44l1/caption-api/internal/errors"
	"github.com/Brownie44l1/caption-api/internal/model"
)

const (
	ImageField      = "image"
	RequestIDHeader = "X-Request-Id"

	// DefaultMaxUploadBytes caps the multipart body (10 MiB).
	DefaultMaxUploadBytes = 10 << 20
)

// AcceptedImageSuffixes are matched against the end of the declared MIME type.
var AcceptedImageSuffixes = []string{"jpg", "jpeg", "png"}

// Predictor turns encoded image bytes into ranked predictions.
type Predictor interface {
	Predict(image []byte) ([]model.Prediction, error)
}

type Handler struct {
	predictor Predictor
	metadata  model.Metadata
	maxUpload int64
	log       logr.Logger
}

func NewHandler(predictor Predictor, metadata model.Metadata, maxUpload int64, log logr.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Handler{
		predictor: predictor,
		metadata:  metadata,
		maxUpload: maxUpload,
		log:       log,
	}
}

func (h *Handler) MaxUploadBytes() int64 {
	return h.maxUpload
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ResponseOK(w, map[string]string{"status": "healthy"})
}

// Metadata returns the static description of the served model.
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	ResponseOK(w, h.metadata)
}

// Predict accepts a multipart upload in the "image" field and returns the
// predictor's output in order.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set(RequestIDHeader, requestID)
	log := h.log.WithValues("requestID", requestID)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			ResponseError(w, apierr.NewSizeInvalidError(maxErr.Limit))
			return
		}
		ResponseError(w, apierr.NewParameterInvalidError("failed to parse multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(ImageField)
	if err != nil {
		ResponseError(w, apierr.NewParameterInvalidError("No image file provided. Use 'image' as the form field name"))
		return
	}
	defer file.Close()

	mimeType := DeclaredMIMEType(header.Header.Get("Content-Type"))
	if !IsAcceptedImageType(mimeType) {
		log.Info("rejected upload", "filename", header.Filename, "mimetype", mimeType)
		ResponseError(w, apierr.NewInvalidImageTypeError())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error(err, "failed to read upload", "filename", header.Filename)
		ResponseError(w, fmt.Errorf("failed to read image: %w", err))
		return
	}
	log.V(1).Info("received file", "filename", header.Filename, "mimetype", mimeType, "size", len(data))

	preds, err := h.predictor.Predict(data)
	if err != nil {
		log.Error(err, "prediction failed", "filename", header.Filename)
		ResponseJSON(w, http.StatusInternalServerError, model.PredictResponse{
			Status:      model.StatusError,
			Predictions: []model.Prediction{},
		})
		return
	}

	result := model.PredictResponse{
		Status:      model.StatusOK,
		Predictions: make([]model.Prediction, 0, len(preds)),
	}
	for _, p := range preds {
		result.Predictions = append(result.Predictions, model.Prediction{
			Index:       p.Index,
			Caption:     p.Caption,
			Probability: p.Probability,
		})
	}
	ResponseOK(w, result)
}

// DeclaredMIMEType strips parameters from a Content-Type value. Case is kept.
func DeclaredMIMEType(contentType string) string {
	mimeType, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mimeType)
}

// IsAcceptedImageType only inspects the client-declared type, never the bytes.
func IsAcceptedImageType(mimeType string) bool {
	for _, suffix := range AcceptedImageSuffixes {
		if strings.HasSuffix(mimeType, suffix) {
			return true
		}
	}
	return false
}
