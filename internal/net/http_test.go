package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"

	"blockstead/server/internal/engine"
)

func TestHealthEndpoint(t *testing.T) {
	handler := NewHandler(HandlerConfig{})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestDiagnosticsEndpoint(t *testing.T) {
	handler := NewHandler(HandlerConfig{
		Diagnostics: func() any {
			return []map[string]any{{"id": 1, "name": "camp"}}
		},
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/diagnostics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var entries []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0]["name"] != "camp" {
		t.Fatalf("entries = %v", entries)
	}
}

func TestDiagnosticsAbsentWhenUnwired(t *testing.T) {
	handler := NewHandler(HandlerConfig{})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/diagnostics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("diagnostics should not be routed without a provider")
	}
}

func TestSpawnGatewayStreamsRegistrations(t *testing.T) {
	gateway := NewSpawnGateway(nil)
	handler := NewHandler(HandlerConfig{Gateway: gateway})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitForViewers(t, gateway, 1)

	scene := engine.NewScene()
	node := scene.NewNode("crate", nil)
	node.SetLocalPosition(mgl64.Vec3{1, 2, 3})
	node.GrantNetworkIdentity()
	gateway.NodeRegistered(node)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame["type"] != "spawn" || frame["name"] != "crate" {
		t.Fatalf("frame = %v", frame)
	}
	if frame["x"].(float64) != 1 || frame["z"].(float64) != 3 {
		t.Fatalf("frame position = %v", frame)
	}

	gateway.NodeUnregistered(node)
	_, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read despawn: %v", err)
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal despawn: %v", err)
	}
	if frame["type"] != "despawn" {
		t.Fatalf("frame = %v", frame)
	}
}

func TestSpawnGatewayDropsDeadViewers(t *testing.T) {
	gateway := NewSpawnGateway(nil)
	handler := NewHandler(HandlerConfig{Gateway: gateway})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitForViewers(t, gateway, 1)

	conn.Close()
	waitForViewers(t, gateway, 0)
}

func waitForViewers(t *testing.T, gateway *SpawnGateway, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if gateway.ViewerCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("viewer count = %d, want %d", gateway.ViewerCount(), want)
}
