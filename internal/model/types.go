package model

// Metadata describes the deployed model. It is loaded once at startup and
// served read-only.
type Metadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	License     string `json:"license,omitempty"`
}

// Prediction is one ranked label produced by a predictor.
type Prediction struct {
	Index       string  `json:"index,omitempty"`
	Caption     string  `json:"caption"`
	Probability float64 `json:"probability"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

type PredictResponse struct {
	Status      string       `json:"status"`
	Predictions []Prediction `json:"predictions"`
}
