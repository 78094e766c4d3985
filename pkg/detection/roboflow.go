package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/teslashibe/go-sensesafe/internal/httpc"
	"github.com/teslashibe/go-sensesafe/pkg/provider"
)

const maxResponseBytes = 4 << 20

// Roboflow calls hosted Roboflow-style inference endpoints.
type Roboflow struct {
	client httpc.Doer
	logger *slog.Logger
}

// NewRoboflow creates a client. A nil doer gets a default HTTP client.
func NewRoboflow(client httpc.Doer, logger *slog.Logger) *Roboflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Roboflow{
		client: httpc.OrDefault(client),
		logger: logger.With("component", "detection.roboflow"),
	}
}

type roboflowRequest struct {
	APIKey string         `json:"api_key"`
	Inputs roboflowInputs `json:"inputs"`
}

type roboflowInputs struct {
	Image roboflowImage `json:"image"`
}

type roboflowImage struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type roboflowResponse struct {
	Predictions []roboflowPrediction `json:"predictions"`
}

type roboflowPrediction struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	ClassName  string  `json:"class_name"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// Detect posts the shared payload to spec.Endpoint.
func (r *Roboflow) Detect(ctx context.Context, spec ProviderSpec, req Request) ([]Prediction, error) {
	body, err := json.Marshal(roboflowRequest{
		APIKey: spec.Credential,
		Inputs: roboflowInputs{Image: roboflowImage{Type: "base64", Value: req.Payload}},
	})
	if err != nil {
		return nil, provider.Parse(spec.Name, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, spec.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, provider.Configuration(spec.Name, fmt.Errorf("%w: %v", provider.ErrMissingEndpoint, err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, provider.Transport(spec.Name, err)
	}
	data, err := provider.ReadBody(spec.Name, resp, maxResponseBytes)
	if err != nil {
		return nil, err
	}

	var parsed roboflowResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, provider.Parse(spec.Name, err)
	}

	preds := make([]Prediction, 0, len(parsed.Predictions))
	for _, p := range parsed.Predictions {
		name := p.ClassName
		if name == "" {
			name = p.Class
		}
		preds = append(preds, Prediction{
			X: p.X, Y: p.Y, Width: p.Width, Height: p.Height,
			ClassName:  name,
			Confidence: p.Confidence,
		})
	}
	r.logger.Debug("detect response", "provider", spec.Name, "predictions", len(preds))
	return preds, nil
}
