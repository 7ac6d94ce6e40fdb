package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Brownie44l1/caption-api/internal/handlers"
)

// MaxBytesReadHandler returns a Handler that runs h with its Request.Body wrapped by a MaxBytesReader.
func MaxBytesReadHandler(h http.HandlerFunc, n int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r2 := *r
		r2.Body = http.MaxBytesReader(w, r.Body, n)
		h.ServeHTTP(w, &r2)
	}
}

func NewRouter(h *handlers.Handler) *mux.Router {
	router := mux.NewRouter()
	router.Methods(http.MethodGet).Path("/health").HandlerFunc(h.Health)

	model := router.PathPrefix("/model").Subrouter()
	model.Methods(http.MethodGet).Path("/metadata").HandlerFunc(h.Metadata)
	model.Methods(http.MethodPost).Path("/predict").HandlerFunc(MaxBytesReadHandler(h.Predict, h.MaxUploadBytes()))
	return router
}
