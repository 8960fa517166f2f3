package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/maidmanager/internal/api"
	"github.com/dukerupert/maidmanager/internal/controller"
	"github.com/dukerupert/maidmanager/internal/session"
	bridge "github.com/dukerupert/maidmanager/internal/websocket"
)

func testControllers() bridge.Controllers {
	cred := &session.Credential{}
	client := api.NewClient(api.Config{BaseURL: "http://127.0.0.1:1/"}, cred, slog.Default())
	roster := controller.NewRoster(client, slog.Default())
	return bridge.Controllers{
		Auth:   controller.NewAuth(client, nil, cred, slog.Default()),
		Roster: roster,
		Detail: controller.NewDetail(client, roster, slog.Default()),
	}
}

func TestHealthz(t *testing.T) {
	s := New(testControllers(), Config{}, slog.Default())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	json.NewDecoder(rec.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestWebSocketRouteSendsSnapshot(t *testing.T) {
	s := New(testControllers(), Config{}, slog.Default())
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg bridge.Message
	json.Unmarshal(data, &msg)
	if msg.Type != "auth_unknown" {
		t.Errorf("first message = %s, want auth_unknown", msg.Type)
	}
}

func TestWebSocketRouteIsRateLimited(t *testing.T) {
	s := New(testControllers(), Config{ConnectsPerMinute: 1}, slog.Default())
	handler := s.Router()

	codes := map[int]int{}
	for i := 0; i < 12; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/ws", nil))
		codes[rec.Code]++
	}
	if codes[http.StatusTooManyRequests] != 2 {
		t.Errorf("codes = %v, want 2 rejections after a burst of 10", codes)
	}
}

func TestServeStopsWithContext(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	s := New(testControllers(), Config{}, slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, addr) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
