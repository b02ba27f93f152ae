// Copyright (c) 2025 BVK Chaitanya

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/bvk/inflight/auth"
	"github.com/bvk/inflight/ctxutil"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// MessageHandler processes one incoming websocket message. Returning an
// error drops the message but keeps the connection.
type MessageHandler func(ctx context.Context, msg json.RawMessage) error

// Websocket maintains a streaming connection to a venue. A dropped
// connection is redialed with exponential backoff, bounded by the reconnect
// limiter; the signed handshake is resent on every new connection before
// anything else.
type Websocket struct {
	cg ctxutil.CloseGroup

	opts Options

	addrURL *url.URL

	authenticator auth.Authenticator
	authenticate  bool

	handler MessageHandler

	redials *rate.Limiter

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebsocket dials the venue in the background and pumps incoming messages
// through the handler. When authenticate is true, every (re)connection sends
// the authenticator's handshake payload first.
func NewWebsocket(addrURL *url.URL, authenticator auth.Authenticator, authenticate bool, handler MessageHandler, opts *Options) (*Websocket, error) {
	if addrURL == nil || handler == nil {
		return nil, fmt.Errorf("address and handler are required")
	}
	if authenticate && authenticator == nil {
		return nil, fmt.Errorf("authenticated stream needs an authenticator: %w", auth.ErrAuthConfiguration)
	}
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	w := &Websocket{
		opts:          *opts,
		addrURL:       addrURL,
		authenticator: authenticator,
		authenticate:  authenticate,
		handler:       handler,
		redials:       opts.reconnectLimiter(),
	}
	w.cg.Go(w.goGetMessages)
	return w, nil
}

// Close shuts down the connection and waits for the message pump to finish.
func (w *Websocket) Close() error {
	w.cg.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	return nil
}

// WriteJSON sends one message on the current connection. Fails if the
// connection is down; the caller is expected to resend subscriptions from
// its handler once messages start flowing again.
func (w *Websocket) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return fmt.Errorf("websocket is not connected")
	}
	return w.conn.WriteJSON(v)
}

func (w *Websocket) goGetMessages(ctx context.Context) {
	for i := 0; ctx.Err() == nil; i = min(i+1, 5) {
		if err := w.redials.Wait(ctx); err != nil {
			return
		}
		if err := w.getMessages(ctx); err != nil {
			slog.Warn("could not get messages over websocket (may retry)", "url", w.addrURL, "err", err)
			ctxutil.Sleep(ctx, time.Second<<i)
		}
	}
}

func (w *Websocket) getMessages(ctx context.Context) error {
	dialer := websocket.Dialer{
		EnableCompression: true,
	}
	conn, _, err := dialer.DialContext(ctx, w.addrURL.String(), nil)
	if err != nil {
		slog.Error("could not dial to websocket feed", "url", w.addrURL, "err", err)
		return err
	}
	defer conn.Close()

	// The signed handshake goes out before any subscription request.
	if w.authenticate {
		payload, err := w.authenticator.SignHandshake()
		if err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			slog.Error("could not send signed websocket handshake", "err", err)
			return err
		}
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.conn = nil
		w.mu.Unlock()
	}()

	for ctx.Err() == nil {
		msg, err := w.readMessage(ctx, conn)
		if err != nil {
			return err
		}
		if err := w.handler(ctx, msg); err != nil {
			slog.Error("could not handle websocket message (ignored)", "err", err)
			continue
		}
	}
	return context.Cause(ctx)
}

func (w *Websocket) readMessage(ctx context.Context, conn *websocket.Conn) (json.RawMessage, error) {
	stopc := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
		close(stopc)
	})

	_, msg, err := conn.ReadMessage()
	if !stop() {
		// The AfterFunc was started. Wait for it to complete, and reset the
		// Conn's deadline.
		<-stopc
		conn.SetReadDeadline(time.Time{})
		return nil, context.Cause(ctx)
	}
	if err != nil {
		return nil, err
	}

	var m json.RawMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		slog.Error("could not unmarshal websocket message", "err", err)
		return nil, err
	}
	return m, nil
}
