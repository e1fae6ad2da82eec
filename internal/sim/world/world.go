// Package world is the authoritative game-state engine: the entity store,
// the command executor, the transit state machine, the trading engine and the
// background scheduler passes. All shared state is guarded by one coarse
// mutex; every exported entry point takes it for the whole read-modify-write
// sequence, so mutations are linearizable.
package world

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"warptrade.io/internal/sim/catalogs"
	"warptrade.io/internal/sim/gamecfg"
)

type World struct {
	mu sync.Mutex

	cfg  gamecfg.Config
	cats *catalogs.Catalogs

	sectors map[int]*Sector
	ports   map[int]*Port
	planets map[int]*Planet
	ships   map[int]*Ship
	players map[int]*Player

	// Name index: the only uniqueness constraint the store itself
	// enforces. Mutated under mu together with the entity it indexes.
	playerNames map[string]int
	shipNames   map[string]int

	nextPlayer int
	nextShip   int
	nextPlanet int

	rng   *rand.Rand
	log   *log.Logger
	audit AuditLogger

	started time.Time

	// Monotonic clock hook, swapped out by tests.
	now func() time.Time
}

// AuditLogger receives one entry per state-changing action. Implementations
// live in internal/persistence; may be nil.
type AuditLogger interface {
	WriteAudit(e AuditEntry) error
}

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  int       `json:"actor"` // player id, 0 = scheduler
	Action string    `json:"action"`
	Sector int       `json:"sector,omitempty"`
	Detail string    `json:"detail,omitempty"`
	Code   string    `json:"code,omitempty"` // reason code on failures
}

// New builds an empty world. Entities come from a galaxy generator seed file
// or a restored save; see Restore.
func New(cfg gamecfg.Config, cats *catalogs.Catalogs, logger *log.Logger) *World {
	if logger == nil {
		logger = log.New(discard{}, "", 0)
	}
	return &World{
		cfg:         cfg,
		cats:        cats,
		sectors:     map[int]*Sector{},
		ports:       map[int]*Port{},
		planets:     map[int]*Planet{},
		ships:       map[int]*Ship{},
		players:     map[int]*Player{},
		playerNames: map[string]int{},
		shipNames:   map[string]int{},
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		log:         logger,
		started:     time.Now(),
		now:         time.Now,
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func (w *World) SetAuditLogger(a AuditLogger) { w.audit = a }

// SetRandSeed pins the world RNG, used by tests and the galaxy generator.
func (w *World) SetRandSeed(seed int64) { w.rng = rand.New(rand.NewSource(seed)) }

func (w *World) auditWrite(e AuditEntry) {
	if w.audit == nil {
		return
	}
	e.Time = w.now()
	if err := w.audit.WriteAudit(e); err != nil {
		w.log.Printf("audit write: %v", err)
	}
}

// ---- store operations ----
//
// All entity-collection access funnels through these so the locking
// discipline stays in one place. Callers hold w.mu.

var errNotFound = fmt.Errorf("not found")
var errDuplicateName = fmt.Errorf("duplicate name")

func (w *World) sector(id int) *Sector { return w.sectors[id] }
func (w *World) port(id int) *Port     { return w.ports[id] }
func (w *World) planet(id int) *Planet { return w.planets[id] }
func (w *World) ship(id int) *Ship     { return w.ships[id] }
func (w *World) player(id int) *Player { return w.players[id] }

func (w *World) findPlayerByName(name string) (*Player, error) {
	id, ok := w.playerNames[name]
	if !ok {
		return nil, errNotFound
	}
	return w.players[id], nil
}

func (w *World) findShipByName(name string) (*Ship, error) {
	id, ok := w.shipNames[name]
	if !ok {
		return nil, errNotFound
	}
	return w.ships[id], nil
}

// insertPlayerNamed allocates a player id and claims the name atomically
// with insertion; a duplicate name is rejected before any state changes.
func (w *World) insertPlayerNamed(name string) (*Player, error) {
	if _, taken := w.playerNames[name]; taken {
		return nil, errDuplicateName
	}
	w.nextPlayer++
	p := &Player{ID: w.nextPlayer, Name: name, TradeCommodity: -1}
	w.players[p.ID] = p
	w.playerNames[name] = p.ID
	return p, nil
}

func (w *World) insertShipNamed(name string) (*Ship, error) {
	if _, taken := w.shipNames[name]; taken {
		return nil, errDuplicateName
	}
	w.nextShip++
	s := &Ship{ID: w.nextShip, Name: name}
	w.ships[s.ID] = s
	w.shipNames[name] = s.ID
	return s, nil
}

func (w *World) removeShipNamed(name string) (*Ship, error) {
	id, ok := w.shipNames[name]
	if !ok {
		return nil, errNotFound
	}
	s := w.ships[id]
	delete(w.shipNames, name)
	delete(w.ships, id)
	return s, nil
}

// sector membership for players and unmanned ships

func (w *World) sectorAddPlayer(sectorID, playerID int) {
	if s := w.sectors[sectorID]; s != nil {
		s.Players[playerID] = struct{}{}
	}
}

func (w *World) sectorRemovePlayer(sectorID, playerID int) {
	if s := w.sectors[sectorID]; s != nil {
		delete(s.Players, playerID)
	}
}

func (w *World) sectorAddShip(sectorID, shipID int) {
	if s := w.sectors[sectorID]; s != nil {
		s.Ships[shipID] = struct{}{}
	}
}

func (w *World) sectorRemoveShip(sectorID, shipID int) {
	if s := w.sectors[sectorID]; s != nil {
		delete(s.Ships, shipID)
	}
}

// broadcastSector queues msg for every logged-in player visible in the
// sector except the one named.
func (w *World) broadcastSector(sectorID int, except int, msg string) {
	s := w.sectors[sectorID]
	if s == nil {
		return
	}
	for pid := range s.Players {
		if pid == except {
			continue
		}
		if p := w.players[pid]; p != nil && p.LoggedIn {
			p.Notify(msg)
		}
	}
}

// locationSector resolves where a player actually is: their own sector when
// on foot, their ship's otherwise.
func (w *World) locationSector(p *Player) int {
	if p.Sector != 0 {
		return p.Sector
	}
	if s := w.ships[p.ShipID]; s != nil {
		return s.Sector
	}
	return 0
}

// Stats is the GAMEINFO / sysop projection, computed on demand.
type Stats struct {
	Players        int
	Online         int
	Sectors        int
	Ports          int
	Planets        int
	Citadels       int
	PctGoodAlign   int
	PctWithCitadel int
}

func (w *World) statsLocked() Stats {
	st := Stats{
		Players: len(w.players),
		Sectors: len(w.sectors),
		Ports:   len(w.ports),
		Planets: len(w.planets),
	}
	good := 0
	for _, p := range w.players {
		if p.LoggedIn {
			st.Online++
		}
		if p.Alignment > 0 {
			good++
		}
	}
	for _, pl := range w.planets {
		if pl.Citadel != nil && pl.Citadel.Level > 0 {
			st.Citadels++
		}
	}
	if st.Players > 0 {
		st.PctGoodAlign = 100 * good / st.Players
	}
	if st.Planets > 0 {
		st.PctWithCitadel = 100 * st.Citadels / st.Planets
	}
	return st
}

// GameStats snapshots aggregate counts for the index backend and sysop
// console.
func (w *World) GameStats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.statsLocked()
}
