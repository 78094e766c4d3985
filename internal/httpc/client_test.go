package httpc

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := New(5 * time.Second)
	assert.Equal(t, 5*time.Second, c.Timeout)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, tr.TLSHandshakeTimeout)
	assert.Equal(t, 10, tr.MaxIdleConnsPerHost)
}

func TestDoerFunc(t *testing.T) {
	called := false
	d := DoerFunc(func(req *http.Request) (*http.Response, error) {
		called = true
		rec := httptest.NewRecorder()
		rec.WriteHeader(http.StatusTeapot)
		return rec.Result(), nil
	})

	req := httptest.NewRequest(http.MethodGet, "http://example.invalid", nil)
	resp, err := d.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestOrDefault(t *testing.T) {
	assert.NotNil(t, OrDefault(nil))

	custom := New(time.Second)
	assert.Same(t, custom, OrDefault(custom))
}
