package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/logr"
	gorillahandlers "github.com/gorilla/handlers"

	"github.com/Brownie44l1/caption-api/internal/handlers"
	"github.com/Brownie44l1/caption-api/internal/model"
)

type Options struct {
	Listen         string
	MaxUploadBytes int64
	CORSOrigins    []string
	// AccessLog receives combined-format access lines; nil disables them.
	AccessLog io.Writer
}

func DefaultOptions() *Options {
	listen := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		listen = ":" + port
	}
	return &Options{
		Listen:         listen,
		MaxUploadBytes: handlers.DefaultMaxUploadBytes,
		CORSOrigins:    []string{"*"},
		AccessLog:      os.Stdout,
	}
}

// NewHandler builds the full HTTP stack: routes, CORS and access logging.
func NewHandler(opts *Options, predictor handlers.Predictor, metadata model.Metadata, log logr.Logger) http.Handler {
	h := handlers.NewHandler(predictor, metadata, opts.MaxUploadBytes, log)

	var handler http.Handler = NewRouter(h)
	handler = gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(opts.CORSOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
		gorillahandlers.ExposedHeaders([]string{handlers.RequestIDHeader}),
	)(handler)
	if opts.AccessLog != nil {
		handler = gorillahandlers.CombinedLoggingHandler(opts.AccessLog, handler)
	}
	return handler
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, opts *Options, predictor handlers.Predictor, metadata model.Metadata) error {
	log := logr.FromContextOrDiscard(ctx)

	server := http.Server{
		Addr:              opts.Listen,
		Handler:           NewHandler(opts, predictor, metadata, log),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error(err, "server shutdown")
		}
	}()

	log.Info("server listening", "http", opts.Listen, "model", metadata.ID)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
