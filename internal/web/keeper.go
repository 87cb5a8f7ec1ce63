package web

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"timeframe-chart/internal/domain"
	"timeframe-chart/internal/observability"
)

type msg struct {
	mType int
	data  []byte
	err   error
}

// client is one WebSocket connection and the granularity it watches.
type client struct {
	conn        *websocket.Conn
	writeMu     sync.Mutex
	granularity domain.Granularity
}

func (c *client) writeJSON(v interface{}) error {
	js, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, js)
}

const writeWait = 5 * time.Second

type keeper struct {
	mx     sync.RWMutex
	active map[*websocket.Conn]*client

	pingInterval time.Duration
	deadline     time.Duration
}

func newKeeper() *keeper {
	return &keeper{
		active:       make(map[*websocket.Conn]*client),
		pingInterval: time.Second,
		deadline:     5 * time.Second,
	}
}

func (k *keeper) addConn(conn *websocket.Conn, g domain.Granularity) *client {
	c := &client{conn: conn, granularity: g}

	k.mx.Lock()
	k.active[conn] = c
	n := len(k.active)
	k.mx.Unlock()

	observability.UpdateWSClients(n)
	return c
}

func (k *keeper) count() int {
	k.mx.RLock()
	defer k.mx.RUnlock()
	return len(k.active)
}

// walk calls fn for every client with its current granularity.
// Errors from fn are collected per connection and do not stop the walk.
func (k *keeper) walk(fn func(c *client, g domain.Granularity) error) []*websocket.Conn {
	k.mx.RLock()
	clients := make([]*client, 0, len(k.active))
	grans := make([]domain.Granularity, 0, len(k.active))
	for _, c := range k.active {
		clients = append(clients, c)
		grans = append(grans, c.granularity)
	}
	k.mx.RUnlock()

	var failed []*websocket.Conn
	for i, c := range clients {
		if err := fn(c, grans[i]); err != nil {
			failed = append(failed, c.conn)
		}
	}
	return failed
}

func (k *keeper) setGranularity(c *client, g domain.Granularity) {
	k.mx.Lock()
	defer k.mx.Unlock()
	c.granularity = g
}

func (k *keeper) close(conn *websocket.Conn) {
	k.mx.Lock()
	_ = conn.Close()
	delete(k.active, conn)
	n := len(k.active)
	k.mx.Unlock()

	observability.UpdateWSClients(n)
}

func (k *keeper) closeAll() {
	k.mx.Lock()
	for conn := range k.active {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		delete(k.active, conn)
	}
	k.mx.Unlock()

	observability.UpdateWSClients(0)
}

// keep serves one connection until it closes or stops answering pings.
// onText is called for every non-empty text message.
func (k *keeper) keep(c *client, onText func(c *client, text string)) {
	conn := c.conn
	pinger := time.NewTicker(k.pingInterval)
	defer pinger.Stop()

	var aliveMu sync.Mutex
	lastAlive := time.Now()
	touch := func() {
		aliveMu.Lock()
		lastAlive = time.Now()
		aliveMu.Unlock()
	}

	read := make(chan msg)
	done := make(chan struct{})
	defer close(done)
	defer k.close(conn)

	ponger := conn.PongHandler()
	conn.SetPongHandler(func(appData string) error {
		touch()
		return ponger(appData)
	})

	go func() {
		for {
			mt, data, err := conn.ReadMessage()
			select {
			case read <- msg{mType: mt, data: data, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-pinger.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
			aliveMu.Lock()
			stale := time.Since(lastAlive) > k.deadline
			aliveMu.Unlock()
			if stale {
				return
			}
		case m := <-read:
			if m.err != nil {
				return
			}

			switch m.mType {
			case websocket.CloseMessage:
				return
			case websocket.TextMessage:
				if text := string(m.data); text != "" {
					onText(c, text)
				}
			}

			touch()
		}
	}
}
