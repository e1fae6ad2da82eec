package world

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"warptrade.io/internal/protocol"
)

// Movement and the transit state machine. A move never completes inside the
// Move command: it records an in-transit marker and the arrival resolves
// lazily on a later poll once the warp time has elapsed.

// resolveTransit completes an arrival whose required time has passed.
// Called with w.mu held on every command entry.
func (w *World) resolveTransit(p *Player) {
	if !p.InTransit {
		return
	}
	ship := w.ships[p.ShipID]
	if ship == nil {
		// Shipless transit cannot happen; clear the stale marker.
		p.InTransit = false
		return
	}
	st, ok := w.cats.ShipType(ship.Type)
	if !ok {
		// The catalog changed underneath a mid-flight ship. Abort the
		// warp and put the player back at the origin, turn unspent.
		p.InTransit = false
		p.TransitTo = 0
		p.TransitStart = time.Time{}
		w.sectorAddPlayer(ship.Sector, p.ID)
		w.log.Printf("transit aborted: ship %d has unknown type %d", ship.ID, ship.Type)
		return
	}
	required := time.Duration(st.TurnsPerWarp*w.cfg.WarpWaitSeconds) * time.Second
	if w.now().Sub(p.TransitStart) < required {
		return
	}

	dest := p.TransitTo
	p.InTransit = false
	p.TransitTo = 0
	p.TransitStart = time.Time{}
	p.Turns -= st.TurnsPerWarp

	ship.Sector = dest
	w.sectorAddPlayer(dest, p.ID)
	w.broadcastSector(dest, p.ID, fmt.Sprintf("%s warps into the sector", p.Name))
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "ARRIVE", Sector: dest})
}

func (w *World) cmdMove(p *Player, cmd protocol.Command) string {
	target, err := strconv.Atoi(cmd.Args[0])
	if err != nil || target <= 0 {
		return protocol.Badf("bad sector number")
	}

	ship := w.ships[p.ShipID]
	if ship == nil {
		return protocol.Badf("you have no ship")
	}
	if ship.Flags.Docked() {
		return protocol.Badf("you must leave first")
	}
	if p.Sector != 0 {
		return protocol.Badf("you are not aboard your ship")
	}
	cur := w.sectors[ship.Sector]
	dest := w.sectors[target]
	if cur == nil || dest == nil {
		return protocol.Badf("no such sector")
	}
	if target == ship.Sector {
		return protocol.Badf("you are already in sector %d", target)
	}
	st, ok := w.cats.ShipType(ship.Type)
	if !ok {
		return protocol.Badf("unknown ship type")
	}
	if p.Turns < st.TurnsPerWarp {
		return protocol.Badf("not enough turns (%d needed)", st.TurnsPerWarp)
	}

	if cur.LinkTo(target) {
		w.beginTransit(p, ship, target)
		return protocol.OKf("Now moving to sector %d", target)
	}

	// Not directly linked: route instead of failing outright.
	path := w.routeLocked(ship.Sector, target)
	if len(path) < 2 {
		return protocol.Badf("no route to sector %d", target)
	}
	w.beginTransit(p, ship, path[1])
	return protocol.OKf("Now moving to sector %d via %s", path[1], joinInts(path))
}

// beginTransit removes the player from the open sector view and records the
// in-transit marker. Turn debit happens on arrival.
func (w *World) beginTransit(p *Player, ship *Ship, target int) {
	w.sectorRemovePlayer(ship.Sector, p.ID)
	w.broadcastSector(ship.Sector, p.ID, fmt.Sprintf("%s warps out of the sector", p.Name))
	p.InTransit = true
	p.TransitTo = target
	p.TransitStart = w.now()
	p.ResetTrade()
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "DEPART", Sector: ship.Sector,
		Detail: strconv.Itoa(target)})
}

func (w *World) cmdPath(p *Player, cmd protocol.Command) string {
	target, err := strconv.Atoi(cmd.Args[0])
	if err != nil || target <= 0 {
		return protocol.Badf("bad sector number")
	}
	from := w.locationSector(p)
	if from == 0 || w.sectors[target] == nil {
		return protocol.Badf("no such sector")
	}
	path := w.routeLocked(from, target)
	if len(path) == 0 {
		return protocol.Badf("no route to sector %d", target)
	}
	return protocol.OKf("%s", joinInts(path))
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}
