package spc

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/jschlyter/spc2mqtt/internal/log"
)

const wsHandshakeTimeout = 10 * time.Second

// wsClient owns the streaming connection to the gateway. Frames are handed
// to the handler one at a time, so messages are processed in arrival order.
// A dropped connection is redialed with exponential backoff until stop is
// called.
type wsClient struct {
	url     string
	handler func(context.Context, []byte)
	log     *log.Logger

	cancel context.CancelFunc
	done   chan struct{}

	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSClient(url string, handler func(context.Context, []byte), logger *log.Logger) *wsClient {
	return &wsClient{
		url:     url,
		handler: handler,
		log:     logger,
	}
}

func (w *wsClient) start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx)
}

func (w *wsClient) stop() {
	w.cancel()
	w.mu.Lock()
	if w.conn != nil {
		w.conn.Close()
	}
	w.mu.Unlock()
	<-w.done
}

func (w *wsClient) run(ctx context.Context) {
	defer close(w.done)
	for {
		conn, err := w.dial(ctx)
		if err != nil {
			// only a canceled context gets the dial loop to give up
			return
		}
		w.log.Info("Event stream connected to %s", w.url)
		w.setConn(conn)
		// a stop between the dial and setConn found no conn to close
		if ctx.Err() != nil {
			conn.Close()
			return
		}
		w.read(ctx, conn)
		w.setConn(nil)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		w.log.Warning("Event stream closed, reconnecting")
	}
}

func (w *wsClient) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	operation := func() (*websocket.Conn, error) {
		conn, resp, err := dialer.DialContext(ctx, w.url, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return conn, err
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 0
	notify := func(err error, next time.Duration) {
		w.log.Warning("Event stream connect to %s failed, retrying in %s: %v",
			w.url, next.Round(time.Millisecond), err)
	}
	return backoff.RetryNotifyWithData(operation, backoff.WithContext(policy, ctx), notify)
}

func (w *wsClient) read(ctx context.Context, conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				w.log.Warning("Event stream read failed: %v", err)
			}
			return
		}
		w.handler(ctx, message)
	}
}

func (w *wsClient) setConn(conn *websocket.Conn) {
	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()
}
