package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", "json")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("quiz_id", 1).Debug("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.EqualValues(t, 1, line["quiz_id"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	log := New(&bytes.Buffer{}, "chatty", "text")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestWithContextDefaultsToBase(t *testing.T) {
	assert.NotNil(t, WithContext(context.Background()))
}

func TestMiddlewareInjectsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")

	var seen logrus.FieldLogger
	handler := middleware.RequestID(Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = WithContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ranks", nil))

	require.NotNil(t, seen)
	entry, ok := seen.(*logrus.Entry)
	require.True(t, ok)
	assert.NotEmpty(t, entry.Data["request_id"])

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.EqualValues(t, http.StatusTeapot, line["status"])
	assert.Equal(t, "/ranks", line["path"])
}
