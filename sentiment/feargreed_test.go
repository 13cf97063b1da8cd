package sentiment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *FearGreedClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewFearGreedClient(srv.URL, time.Second)
}

func TestFearGreed(t *testing.T) {
	t.Parallel()

	c := serve(t, http.StatusOK, `{
		"name": "Fear and Greed Index",
		"data": [{"value": "17", "value_classification": "Extreme Fear", "timestamp": "1700000000"}],
		"metadata": {"error": null}
	}`)

	v, err := c.FearGreed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 17, v)
}

func TestFearGreedErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"status", http.StatusServiceUnavailable, "down"},
		{"garbage", http.StatusOK, "{not json"},
		{"api error", http.StatusOK, `{"data": [], "metadata": {"error": "rate limited"}}`},
		{"not a number", http.StatusOK, `{"data": [{"value": "high"}]}`},
		{"out of range", http.StatusOK, `{"data": [{"value": "140"}]}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := serve(t, tt.status, tt.body).FearGreed(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestFearGreedEmpty(t *testing.T) {
	t.Parallel()

	_, err := serve(t, http.StatusOK, `{"data": []}`).FearGreed(context.Background())
	assert.True(t, errors.Is(err, ErrNoReading))
}

func TestStatic(t *testing.T) {
	t.Parallel()

	v, err := Static(85).FearGreed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 85, v)
}
