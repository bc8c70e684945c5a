package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bidtracker"

	"github.com/gorilla/websocket"
)

func TestStatusEndpoint(t *testing.T) {
	s, _, _, _, _, monitor := newTestService()
	monitor.status = bidtracker.ConnectionStatus{Configured: true, Connected: true, Message: "연결에 성공했습니다."}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var got bidtracker.ConnectionStatus
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if !got.Connected {
		t.Fatalf("snapshot not served: %+v", got)
	}
}

func TestWebSocket_PushesStatusEnvelope(t *testing.T) {
	s, _, _, _, _, monitor := newTestService()
	monitor.status = bidtracker.ConnectionStatus{Configured: true, Message: "연결에 성공했습니다."}
	srv := httptest.NewServer(newTestRouter(s))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?interval=1s"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var env wsEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if env.Type != "status" {
		t.Fatalf("envelope type = %q, want status", env.Type)
	}
	raw, _ := json.Marshal(env.Data)
	var got bidtracker.ConnectionStatus
	_ = json.Unmarshal(raw, &got)
	if !got.Configured || got.Message == "" {
		t.Fatalf("status payload = %+v", got)
	}
}
