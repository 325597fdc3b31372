package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "tuskmem_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Add(3)

	ts := httptest.NewServer(NewServer("", reg, nil).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "tuskmem_test_total 3")
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]HealthCheck
		want   int
	}{
		{name: "no_checks", want: http.StatusOK},
		{
			name:   "healthy",
			checks: map[string]HealthCheck{"store": func(context.Context) error { return nil }},
			want:   http.StatusOK,
		},
		{
			name: "store_down",
			checks: map[string]HealthCheck{
				"store": func(context.Context) error { return errors.New("connection refused") },
				"redis": func(context.Context) error { return nil },
			},
			want: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer("", prometheus.NewRegistry(), tt.checks)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestServer_StartShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer("127.0.0.1:0", prometheus.NewRegistry(), nil)
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, <-done)
}
