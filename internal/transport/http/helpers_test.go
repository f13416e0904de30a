package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"quizlet-service/internal/app"
	"quizlet-service/internal/infra/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.NewStore()
	hub := NewHub()
	service := app.NewQuizService(store, memory.NewQuizRepository(store, time.Minute), hub)

	server := httptest.NewServer(NewRouter(RouterConfig{
		Handler:        NewHandler(service),
		WSHandler:      NewWSHandler(service, hub, []string{"http://localhost:3001"}),
		AllowedOrigins: []string{"http://localhost:3001"},
		Log:            log,
	}))
	t.Cleanup(server.Close)
	return server, hub
}

func postJSON(t *testing.T, server *httptest.Server, path string, body any, out any) int {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func getJSON(t *testing.T, server *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}
