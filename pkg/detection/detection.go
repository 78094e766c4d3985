// Package detection fans one image out to several independent detector
// providers and merges whatever comes back.
//
// A scan never fails as a whole: every provider failure stays inside its
// own ModelOutcome and the merged Result always carries a summary.
package detection

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/teslashibe/go-sensesafe/pkg/provider"
)

// Summaries shown to the user.
const (
	SummaryNoInternet    = "No internet connection"
	SummaryNotConfigured = "No detection providers configured"
	SummaryInvalidImage  = "Could not read image"
	SummaryNoExits       = "No exits detected yet, keep scanning"
	SummaryExitFound     = "Exit found, follow highlighted area"
)

// EncodingJPEG tags a base64 JPEG payload.
const EncodingJPEG = "jpeg"

// ProviderSpec describes one detector endpoint.
type ProviderSpec struct {
	Name       string `json:"name"`
	Endpoint   string `json:"-"`
	Credential string `json:"-"`
}

// Enabled reports whether the spec has a credential and a real endpoint.
func (s ProviderSpec) Enabled() bool {
	return provider.HasCredential(s.Credential) && !provider.IsPlaceholder(s.Endpoint)
}

// configError explains why a disabled spec was skipped.
func (s ProviderSpec) configError() error {
	if !provider.HasCredential(s.Credential) {
		return provider.Configuration(s.Name, provider.ErrMissingCredential)
	}
	return provider.Configuration(s.Name, provider.ErrMissingEndpoint)
}

// Request is the payload shared read-only by every branch of one scan.
type Request struct {
	Payload  string
	Encoding string
}

// Prediction is one bounding box as reported by a provider.
type Prediction struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
}

// ModelOutcome is the result of one provider branch. Exactly one of
// Predictions and Err is set.
type ModelOutcome struct {
	Provider    string
	Predictions []Prediction
	Err         error
}

// OK reports whether the branch succeeded.
func (o ModelOutcome) OK() bool { return o.Err == nil }

// Skipped reports whether the provider was never contacted.
func (o ModelOutcome) Skipped() bool { return provider.IsConfiguration(o.Err) }

// MarshalJSON renders the error as text along with its kind.
func (o ModelOutcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Provider    string       `json:"provider"`
		Predictions []Prediction `json:"predictions,omitempty"`
		Error       string       `json:"error,omitempty"`
		Kind        string       `json:"kind,omitempty"`
	}{Provider: o.Provider, Predictions: o.Predictions}
	if o.Err != nil {
		out.Error = o.Err.Error()
		out.Kind = provider.KindOf(o.Err).String()
	}
	return json.Marshal(out)
}

// Result is the merged answer of one scan.
type Result struct {
	ID          string         `json:"id"`
	Predictions []Prediction   `json:"predictions"`
	HasExits    bool           `json:"has_exits"`
	Summary     string         `json:"summary"`
	Outcomes    []ModelOutcome `json:"outcomes,omitempty"`
}

// TotalCount returns the number of merged predictions.
func (r Result) TotalCount() int { return len(r.Predictions) }

// Class returns the predictions whose class name contains substr,
// case-insensitively.
func (r Result) Class(substr string) []Prediction {
	substr = strings.ToLower(substr)
	var out []Prediction
	for _, p := range r.Predictions {
		if strings.Contains(strings.ToLower(p.ClassName), substr) {
			out = append(out, p)
		}
	}
	return out
}

// Groups counts predictions per exit type.
type Groups struct {
	Windows  int `json:"windows"`
	Doors    int `json:"doors"`
	Hallways int `json:"hallways"`
	Stairs   int `json:"stairs"`
}

// Groups buckets predictions by class-name substring. Classes matching none
// of the buckets are only counted in TotalCount.
func (r Result) Groups() Groups {
	return Groups{
		Windows:  len(r.Class("window")),
		Doors:    len(r.Class("door")),
		Hallways: len(r.Class("hallway")),
		Stairs:   len(r.Class("stair")),
	}
}

// Client performs one detection call against one provider.
type Client interface {
	Detect(ctx context.Context, spec ProviderSpec, req Request) ([]Prediction, error)
}

// merge folds outcomes in dispatch order.
func merge(outcomes []ModelOutcome) Result {
	preds := make([]Prediction, 0)
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		preds = append(preds, o.Predictions...)
	}
	r := Result{Predictions: preds, HasExits: len(preds) > 0, Outcomes: outcomes}
	if r.HasExits {
		r.Summary = SummaryExitFound
	} else {
		r.Summary = SummaryNoExits
	}
	return r
}
