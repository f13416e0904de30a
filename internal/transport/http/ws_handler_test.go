package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizlet-service/internal/domain"
)

func TestWebSocketBroadcastsQuizEvents(t *testing.T) {
	server, hub := newTestServer(t)

	first := dial(t, server)
	second := dial(t, server)
	waitForClients(t, hub, 2)

	var quiz domain.Quiz
	postJSON(t, server, "/quiz", map[string]any{"title": "Live", "score": 5}, &quiz)
	var question domain.Question
	postJSON(t, server, "/question", map[string]any{
		"question": "1 + 1?",
		"score":    5,
		"quizId":   quiz.ID,
		"options":  []map[string]any{{"option": "2", "isCorrect": true}},
	}, &question)

	var reg domain.Statistic
	postJSON(t, server, "/make-quiz", map[string]any{
		"firstName": "Alice", "lastName": "A", "email": "alice@example.com", "quizId": quiz.ID,
	}, &reg)

	for _, conn := range []*websocket.Conn{first, second} {
		typ, payload := readNext(conn, t, domain.EventUserJoined)
		if typ != domain.EventUserJoined || payload["userId"] == nil {
			t.Fatalf("unexpected joined event %v %v", typ, payload)
		}
	}

	postJSON(t, server, "/answer", map[string]any{
		"answers": []map[string]any{{"optionId": question.Options[0].ID}},
		"userId":  reg.UserID,
		"quizId":  quiz.ID,
	}, nil)

	for _, conn := range []*websocket.Conn{first, second} {
		_, payload := readNext(conn, t, domain.EventUserAnswer)
		if payload["totalScore"] != float64(5) || payload["status"] != true {
			t.Fatalf("unexpected answer payload %v", payload)
		}
	}
}

func TestWebSocketRelaysClientMessages(t *testing.T) {
	server, hub := newTestServer(t)

	sender := dial(t, server)
	receiver := dial(t, server)
	waitForClients(t, hub, 2)

	msg := map[string]any{
		"type":    "message",
		"payload": map[string]any{"text": "hello"},
	}
	if err := sender.WriteJSON(msg); err != nil {
		t.Fatalf("write message: %v", err)
	}

	for _, conn := range []*websocket.Conn{sender, receiver} {
		_, payload := readNext(conn, t, domain.EventMessage)
		if payload["text"] != "hello" {
			t.Fatalf("unexpected relayed payload %v", payload)
		}
	}
}

func TestWebSocketRejectsUnsupportedType(t *testing.T) {
	server, hub := newTestServer(t)

	conn := dial(t, server)
	waitForClients(t, hub, 1)

	if err := conn.WriteJSON(map[string]any{"type": "answer"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload := readNext(conn, t, "error")
	if payload["message"] != "unsupported message type" {
		t.Fatalf("unexpected error payload %v", payload)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload = readNext(conn, t, "error")
	if payload["message"] != "invalid message" {
		t.Fatalf("unexpected error payload %v", payload)
	}
}

func TestHubDropsOldestForSlowClients(t *testing.T) {
	hub := NewHub()
	c, cancel := hub.subscribe()
	defer cancel()

	for i := 0; i < clientBuffer+3; i++ {
		hub.Broadcast([]byte(strconv.Itoa(i)))
	}
	if len(c.send) != clientBuffer {
		t.Fatalf("expected full buffer, got %d", len(c.send))
	}
	if first := string(<-c.send); first != "3" {
		t.Fatalf("expected oldest messages dropped, first=%s", first)
	}

	cancel()
	if hub.Len() != 0 {
		t.Fatalf("expected client removed")
	}
	// Broadcasting after cancel must not panic on the closed channel.
	hub.Broadcast([]byte("late"))
}

func TestWebSocketChecksOrigin(t *testing.T) {
	server, hub := newTestServer(t)
	u := "ws" + server.URL[len("http"):] + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"http://evil.example"}})
	if err == nil {
		t.Fatal("expected handshake to fail for a foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"http://localhost:3001"}})
	if err != nil {
		t.Fatalf("dial allowed origin: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Len() == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, got %d", n, hub.Len())
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	var payload map[string]any
	_ = json.Unmarshal(msg.Payload, &payload)
	return msg.Type, payload
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
