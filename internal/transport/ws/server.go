// Package ws bridges the line protocol onto websockets for browser clients:
// each text frame carries one JSON envelope holding a single request or
// reply line. The session semantics are exactly the TCP ones.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"warptrade.io/internal/sim/tuning"
	"warptrade.io/internal/sim/world"
	"warptrade.io/internal/transport/tcp"
)

// Envelope is one websocket frame: type LINE carries a client request,
// type REPLY a server reply.
type Envelope struct {
	Type string `json:"type"`
	Line string `json:"line"`
}

const (
	TypeLine  = "LINE"
	TypeReply = "REPLY"
)

type Server struct {
	world *world.World
	tun   tuning.Tuning
	hooks tcp.Hooks
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, tun tuning.Tuning, hooks tcp.Hooks, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		world: w,
		tun:   tun,
		hooks: hooks,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler(ctx context.Context) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		sess := tcp.NewSession(&wsLineConn{conn: conn, max: s.tun.MaxLineBytes}, s.world, s.tun, s.hooks, s.log)
		sess.Run(ctx)
	}
}

// wsLineConn adapts a websocket connection to the session core's LineConn.
type wsLineConn struct {
	conn *websocket.Conn
	max  int
}

func (c *wsLineConn) ReadLine(deadline time.Time) (string, error) {
	for {
		_ = c.conn.SetReadDeadline(deadline)
		kind, msg, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if kind != websocket.TextMessage {
			continue
		}
		if c.max > 0 && len(msg) > c.max {
			return "", fmt.Errorf("frame exceeds %d bytes", c.max)
		}
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			continue
		}
		if env.Type != TypeLine {
			continue
		}
		return env.Line, nil
	}
}

func (c *wsLineConn) WriteLine(line string, deadline time.Time) error {
	b, err := json.Marshal(Envelope{Type: TypeReply, Line: line})
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(deadline)
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *wsLineConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

func (c *wsLineConn) Close() error { return c.conn.Close() }
