package model

import (
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	ort "github.com/yalue/onnxruntime_go"
)

type Options struct {
	// SharedLibraryPath points at libonnxruntime; empty uses the runtime default.
	SharedLibraryPath string
	Logger            logr.Logger
}

// Server runs an ONNX image classifier. The session and its tensors are
// shared, so Predict calls are serialized.
type Server struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	config       *Config
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	log          logr.Logger
}

func NewServer(modelPath string, cfg *Config, opts Options) (*Server, error) {
	if opts.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(opts.SharedLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputShape := ort.NewShape(cfg.InputShape...)
	outputShape := ort.NewShape(cfg.OutputShape...)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	opts.Logger.Info("model loaded", "path", modelPath, "id", cfg.ID, "labels", len(cfg.Labels))

	return &Server{
		session:      session,
		config:       cfg,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		log:          opts.Logger,
	}, nil
}

func (s *Server) Metadata() Metadata {
	return s.config.Metadata
}

// Predict decodes an encoded JPEG or PNG image and returns its ranked labels.
func (s *Server) Predict(data []byte) ([]Prediction, error) {
	img, format, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	s.log.V(1).Info("decoded image", "format", format, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	inputData := Preprocess(img, s.config.ImageSize, s.config.Mean, s.config.Std)
	if len(inputData) != s.config.InputSize() {
		return nil, fmt.Errorf("preprocessed %d values, model expects %d", len(inputData), s.config.InputSize())
	}

	scores, err := s.run(inputData)
	if err != nil {
		return nil, err
	}
	return Rank(scores, s.config.Labels, *s.config.TopK), nil
}

func (s *Server) run(inputData []float32) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy(s.inputTensor.GetData(), inputData)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	outputData := s.outputTensor.GetData()
	if s.config.Softmax {
		return Softmax(outputData), nil
	}
	scores := make([]float64, len(outputData))
	for i, v := range outputData {
		scores[i] = float64(v)
	}
	return scores, nil
}

func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	if s.session != nil {
		s.session.Destroy()
	}
	ort.DestroyEnvironment()
}
