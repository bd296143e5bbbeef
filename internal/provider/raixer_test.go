package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/config"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRaixer(t *testing.T, url string, maxRetries int) *Raixer {
	t.Helper()
	p := NewRaixer(config.RaixerConfig{
		Enabled:    true,
		APIURL:     url,
		APIKey:     "test-key",
		Timeout:    200 * time.Millisecond,
		MaxRetries: maxRetries,
	}, zap.NewNop())
	require.True(t, p.Enabled())
	p.backoffBase = time.Millisecond
	return p
}

func TestRaixerOpen_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/locks/lock-42/open", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lockId":"lock-42","batteryLevel":87}`))
	}))
	defer srv.Close()

	p := newTestRaixer(t, srv.URL, 3)
	res := p.Open(context.Background(), testDevice("RAIXER", "lock-42", ""))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 2, res.Retries)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "lock-42", res.Metadata["lockId"])
}

func TestRaixerOpen_ExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"lock offline"}`))
	}))
	defer srv.Close()

	p := newTestRaixer(t, srv.URL, 3)
	res := p.Open(context.Background(), testDevice("RAIXER", "lock-42", ""))

	require.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeVendorError, res.Error)
	assert.Equal(t, 2, res.Retries)
	assert.Contains(t, res.Message, "lock offline")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRaixerOpen_TimeoutClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := newTestRaixer(t, srv.URL, 1)
	res := p.Open(context.Background(), testDevice("RAIXER", "lock-42", ""))

	require.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeTimeout, res.Error)
}

func TestRaixerOpen_CancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newTestRaixer(t, srv.URL, 3)
	p.backoffBase = 5 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := p.Open(ctx, testDevice("RAIXER", "lock-42", ""))

	require.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeTimeout, res.Error)
	assert.Equal(t, 1, res.Retries)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRaixerOpen_CancelledBeforeFirstAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newTestRaixer(t, srv.URL, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := p.Open(ctx, testDevice("RAIXER", "lock-42", ""))

	require.False(t, res.Success)
	assert.Equal(t, 0, res.Retries)
	assert.Contains(t, res.Message, "after 1 attempts")
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestRaixerOpen_DisabledWithoutCredentials(t *testing.T) {
	p := NewRaixer(config.RaixerConfig{Enabled: true}, zap.NewNop())
	assert.False(t, p.Enabled())

	res := p.Open(context.Background(), testDevice("RAIXER", "lock-42", ""))
	require.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeProviderDisabled, res.Error)
}

func TestRaixerOpen_MissingExternalID(t *testing.T) {
	p := newTestRaixer(t, "http://localhost:1", 1)

	res := p.Open(context.Background(), testDevice("RAIXER", "", ""))
	require.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeVendorError, res.Error)
}

func TestRaixerStatus_Unsupported(t *testing.T) {
	p := newTestRaixer(t, "http://localhost:1", 1)

	res := p.Status(context.Background(), testDevice("RAIXER", "lock-42", ""))
	require.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeUnsupportedOperation, res.Error)
}
