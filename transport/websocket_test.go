// Copyright (c) 2025 BVK Chaitanya

package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bvk/inflight/auth"
	"github.com/gorilla/websocket"
)

func TestWebsocketHandshakeAndMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	handshakes := make(chan []byte, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close()

		// The first message must be the signed handshake payload.
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Error(err)
			return
		}
		handshakes <- payload

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"channel":"orders","sequence":1}`)); err != nil {
			t.Error(err)
			return
		}
		// Keep the connection open until the client goes away.
		conn.ReadMessage()
	}))
	defer server.Close()

	signer, err := auth.NewHMACSigner(&auth.Credentials{Key: "test-key", Secret: "test-secret"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	msgs := make(chan json.RawMessage, 1)
	handler := func(ctx context.Context, msg json.RawMessage) error {
		select {
		case msgs <- msg:
		default:
		}
		return nil
	}

	addrURL, err := url.Parse("ws" + strings.TrimPrefix(server.URL, "http"))
	if err != nil {
		t.Fatal(err)
	}
	ws, err := NewWebsocket(addrURL, signer, true /* authenticate */, handler, &Options{ReconnectsPerMinute: 6000})
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	select {
	case payload := <-handshakes:
		var hello struct {
			Key       string `json:"access_id"`
			Signature string `json:"signed_str"`
			Timestamp int64  `json:"timestamp"`
		}
		if err := json.Unmarshal(payload, &hello); err != nil {
			t.Fatal(err)
		}
		if hello.Key != "test-key" || len(hello.Signature) == 0 || hello.Timestamp == 0 {
			t.Fatalf("unexpected handshake payload %s", payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for the signed handshake")
	}

	select {
	case msg := <-msgs:
		var v struct {
			Channel  string `json:"channel"`
			Sequence int    `json:"sequence"`
		}
		if err := json.Unmarshal(msg, &v); err != nil {
			t.Fatal(err)
		}
		if v.Channel != "orders" || v.Sequence != 1 {
			t.Fatalf("unexpected message %s", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for the first message")
	}
}

func TestWebsocketRequiresAuthenticator(t *testing.T) {
	addrURL, err := url.Parse("wss://localhost/feed")
	if err != nil {
		t.Fatal(err)
	}
	handler := func(ctx context.Context, msg json.RawMessage) error { return nil }
	if _, err := NewWebsocket(addrURL, nil, true, handler, nil); err == nil {
		t.Fatalf("authenticated stream without an authenticator must fail")
	}
}
