package tcp

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"warptrade.io/internal/protocol"
	"warptrade.io/internal/sim/tuning"
	"warptrade.io/internal/sim/world"
)

// LineConn is one client connection seen as a sequence of text lines. The
// plain TCP listener and the websocket bridge both implement it.
type LineConn interface {
	// ReadLine blocks for the next request line, without its newline.
	ReadLine(deadline time.Time) (string, error)
	WriteLine(line string, deadline time.Time) error
	RemoteAddr() string
	Close() error
}

// Hooks are the server-level actions a session may trigger beyond world
// commands. Any of them may be nil.
type Hooks struct {
	// Save persists the world; called on QUIT and on SYSOP SAVE.
	Save func() error
	// Shutdown requests a clean server stop (SYSOP SHUTDOWN).
	Shutdown func()
	// SessionEvent receives connection lifecycle notices.
	SessionEvent func(session, remote, player, event, detail string)
}

// Session drives the login state machine and command dispatch for one
// connection. One goroutine per session.
type Session struct {
	id    string
	conn  LineConn
	world *world.World
	tun   tuning.Tuning
	hooks Hooks
	log   *log.Logger

	limiter  *rate.Limiter
	playerID int
}

func NewSession(conn LineConn, w *world.World, tun tuning.Tuning, hooks Hooks, logger *log.Logger) *Session {
	return &Session{
		id:      uuid.NewString(),
		conn:    conn,
		world:   w,
		tun:     tun,
		hooks:   hooks,
		log:     logger,
		limiter: rate.NewLimiter(rate.Limit(tun.CommandsPerSecond), tun.CommandBurst),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) event(kind, detail string) {
	if s.hooks.SessionEvent == nil {
		return
	}
	player := ""
	if s.playerID != 0 {
		player = s.world.PlayerName(s.playerID)
	}
	s.hooks.SessionEvent(s.id, s.conn.RemoteAddr(), player, kind, detail)
}

// Run processes request lines until the connection drops, the context ends
// or the client quits. The player is always logged out on the way out.
func (s *Session) Run(ctx context.Context) {
	defer s.conn.Close()
	s.event("connect", "")
	defer func() {
		if s.playerID != 0 {
			s.world.Logout(s.playerID)
		}
		s.event("disconnect", "")
	}()

	for ctx.Err() == nil {
		line, err := s.conn.ReadLine(s.readDeadline())
		if err != nil {
			return
		}
		reply, quit := s.handleLine(line)
		if reply != "" {
			if err := s.conn.WriteLine(reply, s.writeDeadline()); err != nil {
				return
			}
		}
		if quit {
			return
		}
	}
}

func (s *Session) readDeadline() time.Time {
	return time.Now().Add(time.Duration(s.tun.ReadTimeoutSeconds) * time.Second)
}

func (s *Session) writeDeadline() time.Time {
	return time.Now().Add(time.Duration(s.tun.WriteTimeoutSeconds) * time.Second)
}

// handleLine maps one request line to one reply line. quit reports that the
// connection should close after the reply is written.
func (s *Session) handleLine(line string) (reply string, quit bool) {
	if !s.limiter.Allow() {
		s.event("deny", protocol.CodeRateLimit)
		return protocol.Badf("slow down"), false
	}

	cmd, err := protocol.Parse(line, s.playerID != 0)
	if err != nil {
		switch err {
		case protocol.ErrEmpty:
			return "", false
		case protocol.ErrLoginRequired:
			return protocol.Badf("log in first"), false
		case protocol.ErrAlreadyLoggedIn:
			return protocol.Badf("already logged in"), false
		case protocol.ErrUnknownCommand:
			return protocol.Badf("no matching command"), false
		default:
			s.event("deny", protocol.CodeProtoBadRequest)
			return protocol.Badf("malformed command"), false
		}
	}

	switch cmd.Op {
	case protocol.OpNew:
		return s.register(cmd.Args), false
	case protocol.OpUser:
		return s.login(cmd.Args), false
	case protocol.OpQuit:
		return s.quit(), true
	case protocol.OpSysop:
		return s.sysop(cmd), false
	}
	return s.world.Execute(s.playerID, cmd), false
}

func (s *Session) register(args []string) string {
	id, err := s.world.Register(args[0], args[1], args[2])
	if err != nil {
		return protocol.Badf("%s", err)
	}
	s.playerID = id
	s.event("login", "new player")
	return protocol.OKf("Welcome, %s", args[0])
}

func (s *Session) login(args []string) string {
	id, err := s.world.Login(args[0], args[1])
	if err != nil {
		return protocol.Badf("%s", err)
	}
	s.playerID = id
	s.event("login", "")
	return protocol.OKf("Welcome back, %s", args[0])
}

// quit logs the player out and persists the world, so a clean disconnect
// never loses progress.
func (s *Session) quit() string {
	if s.playerID != 0 {
		s.world.Logout(s.playerID)
		s.playerID = 0
	}
	if s.hooks.Save != nil {
		if err := s.hooks.Save(); err != nil {
			s.log.Printf("[session %s] save on quit: %v", s.id, err)
			return protocol.Badf("save failed")
		}
	}
	return protocol.OK()
}

// sysop gates the console commands on the configured password, carried as
// the single argument of every SYSOP subcommand.
func (s *Session) sysop(cmd protocol.Command) string {
	pass := strings.TrimSpace(cmd.Args[0])
	if !s.world.CheckSysopPass(pass) {
		s.event("sysop-denied", cmd.Sub)
		return protocol.Badf("permission denied")
	}
	switch cmd.Sub {
	case protocol.SubSave:
		if s.hooks.Save == nil {
			return protocol.Badf("saving is not available")
		}
		if err := s.hooks.Save(); err != nil {
			s.log.Printf("[session %s] sysop save: %v", s.id, err)
			return protocol.Badf("save failed")
		}
		return protocol.OK()
	case protocol.SubShutdown:
		if s.hooks.Shutdown == nil {
			return protocol.Badf("shutdown is not available")
		}
		s.event("sysop-shutdown", "")
		s.hooks.Shutdown()
		return protocol.OK()
	case protocol.SubStats:
		st := s.world.GameStats()
		return protocol.OKFields(
			"players "+strconv.Itoa(st.Players),
			"online "+strconv.Itoa(st.Online),
			"sectors "+strconv.Itoa(st.Sectors),
			"ports "+strconv.Itoa(st.Ports),
			"planets "+strconv.Itoa(st.Planets),
			"citadels "+strconv.Itoa(st.Citadels),
		)
	}
	return protocol.Badf("no matching command")
}
