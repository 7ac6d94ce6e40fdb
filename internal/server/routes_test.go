package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"

	"github.com/Brownie44l1/caption-api/internal/model"
)

type countingPredictor struct {
	calls int
}

func (c *countingPredictor) Predict(image []byte) ([]model.Prediction, error) {
	c.calls++
	return []model.Prediction{{Index: "0", Caption: "cat", Probability: 1}}, nil
}

func newTestHandler(t *testing.T, maxUpload int64) (http.Handler, *countingPredictor) {
	t.Helper()
	opts := DefaultOptions()
	opts.AccessLog = io.Discard
	opts.MaxUploadBytes = maxUpload
	predictor := &countingPredictor{}
	metadata := model.Metadata{ID: "id", Name: "name", Description: "desc"}
	return NewHandler(opts, predictor, metadata, logr.Discard()), predictor
}

func uploadBody(t *testing.T, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("image", "cat.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(payload)
	mw.Close()
	return body, mw.FormDataContentType()
}

func TestRoutes(t *testing.T) {
	handler, _ := newTestHandler(t, 0)
	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "metadata", method: http.MethodGet, path: "/model/metadata", want: http.StatusOK},
		{name: "metadata wrong method", method: http.MethodPost, path: "/model/metadata", want: http.StatusMethodNotAllowed},
		{name: "predict wrong method", method: http.MethodGet, path: "/model/predict", want: http.StatusMethodNotAllowed},
		{name: "unknown", method: http.MethodGet, path: "/model/unknown", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
			}
		})
	}
}

func TestRoutes_Predict(t *testing.T) {
	handler, predictor := newTestHandler(t, 0)
	body, contentType := uploadBody(t, []byte("png"))
	req := httptest.NewRequest(http.MethodPost, "/model/predict", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// CreateFormFile declares application/octet-stream
	if w.Code != http.StatusBadRequest {
		t.Fatalf("predict status = %d, want 400", w.Code)
	}
	if predictor.calls != 0 {
		t.Errorf("predictor invoked %d times", predictor.calls)
	}
}

func TestRoutes_UploadLimit(t *testing.T) {
	handler, predictor := newTestHandler(t, 512)
	body, contentType := uploadBody(t, bytes.Repeat([]byte{0xff}, 4096))
	req := httptest.NewRequest(http.MethodPost, "/model/predict", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversize upload status = %d, want 400", w.Code)
	}
	if predictor.calls != 0 {
		t.Errorf("predictor invoked %d times", predictor.calls)
	}
}

func TestCORS(t *testing.T) {
	handler, _ := newTestHandler(t, 0)
	req := httptest.NewRequest(http.MethodGet, "/model/metadata", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
