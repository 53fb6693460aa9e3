package keycheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

const testKey = "AIzaSy-example-key"

func newTestChecker(t *testing.T, handler http.HandlerFunc) *HTTPChecker {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewHTTPChecker(server.Client(), Config{
		VideoBaseURL:     server.URL + "/youtube/v3",
		AssistantBaseURL: server.URL + "/v1beta",
		VideoProbeID:     "probe-video",
		Timeout:          time.Second,
		MaxRetries:       2,
	}, nil, nil)
}

func TestHTTPChecker_VideoProvider(t *testing.T) {
	checker := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/youtube/v3/videos", r.URL.Path)
		assert.Equal(t, "id", r.URL.Query().Get("part"))
		assert.Equal(t, "probe-video", r.URL.Query().Get("id"))
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, checker.Check(context.Background(), credentialsDomain.KindVideoProvider, testKey, ""))
}

func TestHTTPChecker_AssistantProvider(t *testing.T) {
	checker := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash", r.URL.Path)
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		w.WriteHeader(http.StatusOK)
	})

	err := checker.Check(context.Background(), credentialsDomain.KindAssistantProvider, testKey, "gemini-1.5-flash")
	assert.NoError(t, err)
}

func TestHTTPChecker_AssistantProviderRequiresModel(t *testing.T) {
	checker := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called")
	})

	err := checker.Check(context.Background(), credentialsDomain.KindAssistantProvider, testKey, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestHTTPChecker_Rejected(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var calls atomic.Int32
			checker := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(status)
			})

			err := checker.Check(context.Background(), credentialsDomain.KindVideoProvider, testKey, "")
			assert.ErrorIs(t, err, ErrKeyRejected)
			assert.Equal(t, int32(1), calls.Load())
			assert.NotContains(t, err.Error(), testKey)
		})
	}
}

func TestHTTPChecker_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	checker := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, checker.Check(context.Background(), credentialsDomain.KindVideoProvider, testKey, ""))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPChecker_UnavailableAfterRetries(t *testing.T) {
	checker := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	err := checker.Check(context.Background(), credentialsDomain.KindVideoProvider, testKey, "")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestHTTPChecker_TransportErrorHidesKey(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	checker := NewHTTPChecker(nil, Config{
		VideoBaseURL: server.URL,
		VideoProbeID: "probe-video",
		Timeout:      time.Second,
	}, nil, nil)

	err := checker.Check(context.Background(), credentialsDomain.KindVideoProvider, testKey, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.NotContains(t, err.Error(), testKey)
}

func TestHTTPChecker_UnknownKind(t *testing.T) {
	checker := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {})

	err := checker.Check(context.Background(), credentialsDomain.Kind("share-link"), testKey, "")
	assert.ErrorIs(t, err, credentialsDomain.ErrInvalidKind)
}
