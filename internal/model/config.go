package model

import (
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

const (
	DefaultInputName  = "input"
	DefaultOutputName = "output"
	DefaultTopK       = 5
)

// Config is the on-disk model description. Both YAML and JSON are accepted.
type Config struct {
	Metadata `json:",inline"`

	InputName   string    `json:"input_name,omitempty"`
	OutputName  string    `json:"output_name,omitempty"`
	InputShape  []int64   `json:"input_shape"`
	OutputShape []int64   `json:"output_shape"`
	ImageSize   int       `json:"image_size"`
	Labels      []string  `json:"labels"`
	Mean        []float32 `json:"mean,omitempty"`
	Std         []float32 `json:"std,omitempty"`
	Softmax     bool      `json:"softmax,omitempty"`
	// TopK limits the number of returned predictions; 0 or less returns all labels.
	TopK *int `json:"top_k,omitempty"`
}

func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model config: %w", err)
	}
	return ParseConfig(raw)
}

func ParseConfig(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse model config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.InputName == "" {
		c.InputName = DefaultInputName
	}
	if c.OutputName == "" {
		c.OutputName = DefaultOutputName
	}
	if len(c.Mean) == 0 {
		c.Mean = []float32{0, 0, 0}
	}
	if len(c.Std) == 0 {
		c.Std = []float32{1, 1, 1}
	}
	if c.TopK == nil {
		k := DefaultTopK
		c.TopK = &k
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if c.Description == "" {
		errs = append(errs, errors.New("description is required"))
	}
	if len(c.Labels) == 0 {
		errs = append(errs, errors.New("labels must not be empty"))
	}
	if c.ImageSize <= 0 {
		errs = append(errs, fmt.Errorf("image_size must be positive, got %d", c.ImageSize))
	}
	if len(c.InputShape) == 0 || len(c.OutputShape) == 0 {
		errs = append(errs, errors.New("input_shape and output_shape are required"))
	}
	if len(c.InputShape) > 0 && c.ImageSize > 0 {
		if want := channels * c.ImageSize * c.ImageSize; c.InputSize() != want {
			errs = append(errs, fmt.Errorf("input_shape holds %d values, image_size %d needs %d", c.InputSize(), c.ImageSize, want))
		}
	}
	if len(c.OutputShape) > 0 && len(c.Labels) > 0 {
		if got := c.OutputSize(); got != len(c.Labels) {
			errs = append(errs, fmt.Errorf("output_shape holds %d values, got %d labels", got, len(c.Labels)))
		}
	}
	if len(c.Mean) != 3 || len(c.Std) != 3 {
		errs = append(errs, errors.New("mean and std must have one value per RGB channel"))
	}
	for _, s := range c.Std {
		if s == 0 {
			errs = append(errs, errors.New("std values must be non-zero"))
			break
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid model config: %w", errors.Join(errs...))
	}
	return nil
}

// InputSize is the number of float32 values the input tensor holds.
func (c *Config) InputSize() int {
	return shapeSize(c.InputShape)
}

// OutputSize is the number of scores the output tensor holds.
func (c *Config) OutputSize() int {
	return shapeSize(c.OutputShape)
}

func shapeSize(shape []int64) int {
	size := 1
	for _, dim := range shape {
		size *= int(dim)
	}
	return size
}
