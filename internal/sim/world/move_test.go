package world

import (
	"strings"
	"testing"
	"time"

	"warptrade.io/internal/protocol"
)

func TestMoveAdjacentResolvesLazily(t *testing.T) {
	w, clk := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 1)
	ship := w.ships[p.ShipID]

	mustOK(t, exec(t, w, p, protocol.OpMove, "", "2"))
	if !p.InTransit || p.TransitTo != 2 {
		t.Fatalf("transit not recorded: %+v", p)
	}
	if _, in := w.sectors[1].Players[p.ID]; in {
		t.Fatal("still visible in origin while moving")
	}
	if ship.Sector != 1 {
		t.Fatal("ship moved before warp time elapsed")
	}

	// Mid-warp the command set narrows to status polls.
	mustBad(t, exec(t, w, p, protocol.OpDescribe, ""), "moving")
	reply := mustOK(t, exec(t, w, p, protocol.OpUpdate, ""))
	if !strings.Contains(reply, "Moving to 2") {
		t.Fatalf("update did not report transit: %q", reply)
	}

	// Warp time is TurnsPerWarp x WarpWaitSeconds: 5s for the Scout.
	clk.advance(5 * time.Second)
	mustOK(t, exec(t, w, p, protocol.OpUpdate, ""))
	if p.InTransit {
		t.Fatal("transit not resolved after warp time")
	}
	if ship.Sector != 2 {
		t.Fatalf("ship in sector %d, want 2", ship.Sector)
	}
	if p.Turns != 59 {
		t.Fatalf("turns=%d, want 59 (one debited on arrival)", p.Turns)
	}
	if _, in := w.sectors[2].Players[p.ID]; !in {
		t.Fatal("not visible in destination")
	}
}

func TestMoveArrivalNotifiesOccupants(t *testing.T) {
	w, clk := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 1)
	q := addTestPlayer(t, w, "Bob", 2)

	mustOK(t, exec(t, w, p, protocol.OpMove, "", "2"))
	clk.advance(5 * time.Second)
	mustOK(t, exec(t, w, p, protocol.OpUpdate, ""))

	reply := mustOK(t, exec(t, w, q, protocol.OpUpdate, ""))
	if !strings.Contains(reply, "Ada warps into the sector") {
		t.Fatalf("occupant missed arrival: %q", reply)
	}
}

func TestMoveNonAdjacentRoutes(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 1)

	reply := mustOK(t, exec(t, w, p, protocol.OpMove, "", "4"))
	if !strings.Contains(reply, "via 1,2,3,4") {
		t.Fatalf("route missing from reply: %q", reply)
	}
	if p.TransitTo != 2 {
		t.Fatalf("first hop %d, want 2", p.TransitTo)
	}
}

func TestMoveRejections(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 1)

	mustBad(t, exec(t, w, p, protocol.OpMove, "", "0"), "bad sector")
	mustBad(t, exec(t, w, p, protocol.OpMove, "", "99"), "no such sector")
	mustBad(t, exec(t, w, p, protocol.OpMove, "", "1"), "already in sector")

	p.Turns = 0
	mustBad(t, exec(t, w, p, protocol.OpMove, "", "2"), "not enough turns")
	p.Turns = 60

	w.ships[p.ShipID].Flags = FlagPorted
	mustBad(t, exec(t, w, p, protocol.OpMove, "", "2"), "leave first")
}

func TestPath(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 1)

	reply := mustOK(t, exec(t, w, p, protocol.OpPath, "", "4"))
	if !strings.Contains(reply, "1,2,3,4") {
		t.Fatalf("path: %q", reply)
	}

	// A target in another node routes to the local travel hub instead.
	reply = mustOK(t, exec(t, w, p, protocol.OpPath, "", "6"))
	if !strings.Contains(reply, "1,2,3,4") {
		t.Fatalf("cross-node path should stop at the hub: %q", reply)
	}
}

func TestTransitSurvivesLogout(t *testing.T) {
	w, clk := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 1)

	mustOK(t, exec(t, w, p, protocol.OpMove, "", "2"))
	w.Logout(p.ID)
	clk.advance(5 * time.Second)
	p.LoggedIn = true

	mustOK(t, exec(t, w, p, protocol.OpDescribe, ""))
	if w.ships[p.ShipID].Sector != 2 {
		t.Fatal("transit did not resolve on the next command after relogin")
	}
}

func TestTransitAbortsOnUnknownShipType(t *testing.T) {
	w, clk := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 1)
	mustOK(t, exec(t, w, p, protocol.OpMove, "", "2"))

	// The catalog no longer knows this hull. The next poll must abort the
	// warp instead of leaving the player stuck mid-flight forever.
	ship := w.ships[p.ShipID]
	ship.Type = 99
	clk.advance(time.Minute)

	mustOK(t, exec(t, w, p, protocol.OpUpdate, ""))
	if p.InTransit {
		t.Fatal("still in transit")
	}
	if ship.Sector != 1 {
		t.Fatalf("ship ended in sector %d", ship.Sector)
	}
	if _, in := w.sectors[1].Players[p.ID]; !in {
		t.Fatal("player not restored at the origin")
	}
	if p.Turns != w.cfg.StartingTurns {
		t.Fatalf("turns = %d, want %d", p.Turns, w.cfg.StartingTurns)
	}
}
