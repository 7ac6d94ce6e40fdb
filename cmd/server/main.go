package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/caption-api/internal/model"
	"github.com/Brownie44l1/caption-api/internal/server"
)

const ErrExitCode = 1

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := NewServerCmd().Execute(); err != nil {
		fmt.Println(err.Error())
		os.Exit(ErrExitCode)
	}
}

type modelOptions struct {
	ModelPath  string
	ConfigPath string
	ORTLib     string
	Verbosity  int
}

func defaultModelOptions() *modelOptions {
	root := projectRoot()
	return &modelOptions{
		ModelPath:  filepath.Join(root, "models", "model.onnx"),
		ConfigPath: filepath.Join(root, "models", "model_config.yaml"),
		ORTLib:     os.Getenv("ONNXRUNTIME_LIB"),
	}
}

// projectRoot resolves the repository root when started from cmd/server.
func projectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if filepath.Base(wd) == "server" {
		return filepath.Join(wd, "../..")
	}
	return wd
}

func NewServerCmd() *cobra.Command {
	options := server.DefaultOptions()
	modelOpts := defaultModelOptions()
	cmd := &cobra.Command{
		Use:   "caption-api",
		Short: "serve an ONNX image classifier over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.SetFlags(log.LstdFlags | log.Lshortfile)
			stdr.SetVerbosity(modelOpts.Verbosity)
			logger := stdr.NewWithOptions(log.Default(), stdr.Options{LogCaller: stdr.Error})
			ctx = logr.NewContext(ctx, logger)

			cfg, err := model.LoadConfig(modelOpts.ConfigPath)
			if err != nil {
				return err
			}
			logger.Info("loading model", "path", modelOpts.ModelPath, "config", modelOpts.ConfigPath)

			modelServer, err := model.NewServer(modelOpts.ModelPath, cfg, model.Options{
				SharedLibraryPath: modelOpts.ORTLib,
				Logger:            logger.WithName("model"),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize model server: %w", err)
			}
			defer modelServer.Close()

			logger.Info("endpoints", "metadata", "GET /model/metadata", "predict", "POST /model/predict", "health", "GET /health")
			return server.Run(ctx, options, modelServer, modelServer.Metadata())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&options.Listen, "listen", options.Listen, "listen address")
	flags.Int64Var(&options.MaxUploadBytes, "max-upload", options.MaxUploadBytes, "maximum upload size in bytes")
	flags.StringSliceVar(&options.CORSOrigins, "cors-origin", options.CORSOrigins, "allowed CORS origins")
	flags.StringVar(&modelOpts.ModelPath, "model", modelOpts.ModelPath, "path to the ONNX model")
	flags.StringVar(&modelOpts.ConfigPath, "config", modelOpts.ConfigPath, "path to the model config (yaml or json)")
	flags.StringVar(&modelOpts.ORTLib, "ort-lib", modelOpts.ORTLib, "path to the onnxruntime shared library")
	flags.IntVarP(&modelOpts.Verbosity, "verbosity", "v", modelOpts.Verbosity, "log verbosity")

	return cmd
}
