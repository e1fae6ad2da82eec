// Package tcp serves the game's native line protocol over plain TCP: one
// goroutine per connection, one request line in, one reply line out.
package tcp

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"warptrade.io/internal/sim/tuning"
	"warptrade.io/internal/sim/world"
)

type Server struct {
	addr  string
	world *world.World
	tun   tuning.Tuning
	hooks Hooks
	log   *log.Logger

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

func NewServer(addr string, w *world.World, tun tuning.Tuning, hooks Hooks, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, world: w, tun: tun, hooks: hooks, log: logger}
}

// ListenAndServe accepts connections until the context ends, then waits for
// the open sessions to finish their current command.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.log.Printf("[tcp] listening on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.log.Printf("[tcp] accept: %v", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			sess := NewSession(newNetLineConn(conn, s.tun.MaxLineBytes), s.world, s.tun, s.hooks, s.log)
			sess.Run(ctx)
		}()
	}
	s.wg.Wait()
	return nil
}

// Addr reports the bound listen address, for tests using port 0.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// netLineConn adapts a net.Conn to the LineConn the session core drives.
type netLineConn struct {
	conn net.Conn
	r    *bufio.Reader
	max  int
}

func newNetLineConn(conn net.Conn, maxLine int) *netLineConn {
	if maxLine <= 0 {
		maxLine = 4096
	}
	return &netLineConn{conn: conn, r: bufio.NewReaderSize(conn, maxLine), max: maxLine}
}

func (c *netLineConn) ReadLine(deadline time.Time) (string, error) {
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return "", err
	}
	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	if len(line) > c.max {
		return "", fmt.Errorf("line exceeds %d bytes", c.max)
	}
	return line[:len(line)-1], nil
}

func (c *netLineConn) WriteLine(line string, deadline time.Time) error {
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *netLineConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

func (c *netLineConn) Close() error { return c.conn.Close() }
