package detection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-sensesafe/internal/httpc"
	"github.com/teslashibe/go-sensesafe/internal/log"
	"github.com/teslashibe/go-sensesafe/pkg/provider"
)

func TestRoboflowDetect(t *testing.T) {
	var got roboflowRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"predictions":[
			{"x":1,"y":2,"width":3,"height":4,"class_name":"door","confidence":0.8},
			{"x":5,"y":6,"width":7,"height":8,"class":"window","confidence":0.6}
		]}`))
	}))
	defer server.Close()

	rf := NewRoboflow(httpc.New(5*time.Second), log.Discard())
	spec := ProviderSpec{Name: "doors", Endpoint: server.URL, Credential: "secret"}

	preds, err := rf.Detect(context.Background(), spec, Request{Payload: "aGVsbG8=", Encoding: EncodingJPEG})
	require.NoError(t, err)

	assert.Equal(t, "secret", got.APIKey)
	assert.Equal(t, "base64", got.Inputs.Image.Type)
	assert.Equal(t, "aGVsbG8=", got.Inputs.Image.Value)

	require.Len(t, preds, 2)
	assert.Equal(t, Prediction{X: 1, Y: 2, Width: 3, Height: 4, ClassName: "door", Confidence: 0.8}, preds[0])
	assert.Equal(t, "window", preds[1].ClassName)
}

func TestRoboflowDetectErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   provider.Kind
		code   int
	}{
		{"server_error", 500, `{"error":"boom"}`, provider.KindProvider, 500},
		{"unauthorized", 401, `{"message":"bad key"}`, provider.KindProvider, 401},
		{"malformed_body", 200, `{"predictions":`, provider.KindParse, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			rf := NewRoboflow(nil, log.Discard())
			_, err := rf.Detect(context.Background(), ProviderSpec{Name: "x", Endpoint: server.URL, Credential: "k"}, Request{})

			var pe *provider.Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.code, pe.StatusCode)
		})
	}
}

func TestRoboflowMissingPredictions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	preds, err := NewRoboflow(nil, log.Discard()).Detect(context.Background(),
		ProviderSpec{Name: "x", Endpoint: server.URL, Credential: "k"}, Request{})
	require.NoError(t, err)
	assert.NotNil(t, preds)
	assert.Empty(t, preds)
}

func TestRoboflowTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewRoboflow(nil, log.Discard()).Detect(context.Background(),
		ProviderSpec{Name: "x", Endpoint: url, Credential: "k"}, Request{})

	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provider.KindProvider, pe.Kind)
	assert.Equal(t, 0, pe.StatusCode)
}

func TestModelOutcomeJSON(t *testing.T) {
	data, err := json.Marshal(ModelOutcome{Provider: "doors", Err: provider.Configuration("doors", provider.ErrMissingCredential)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"doors","error":"configuration [doors]: credential not configured","kind":"configuration"}`, string(data))
}
