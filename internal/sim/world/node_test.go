package world

import (
	"strings"
	"testing"

	"warptrade.io/internal/protocol"
)

func TestNodeInfo(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 1)
	reply := mustOK(t, exec(t, w, p, protocol.OpNode, protocol.SubInfo))
	if !strings.Contains(reply, "node 1") || !strings.Contains(reply, "sectors 1-5") {
		t.Fatalf("node info: %q", reply)
	}
	if !strings.Contains(reply, "Hub West") {
		t.Fatalf("hub missing: %q", reply)
	}
}

func TestNodeHop(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 4)
	ship := w.ships[p.ShipID]

	// Hopping requires being docked at the hub.
	mustBad(t, exec(t, w, p, protocol.OpNode, protocol.SubHop, "2"), "not docked")
	mustOK(t, exec(t, w, p, protocol.OpPort, protocol.SubLand))

	mustBad(t, exec(t, w, p, protocol.OpNode, protocol.SubHop, "1"), "already in node")
	mustBad(t, exec(t, w, p, protocol.OpNode, protocol.SubHop, "9"), "no such node")

	reply := mustOK(t, exec(t, w, p, protocol.OpNode, protocol.SubHop, "2"))
	if !strings.Contains(reply, "Hub East") {
		t.Fatalf("hop reply: %q", reply)
	}
	if ship.Sector != 6 {
		t.Fatalf("ship in sector %d, want 6", ship.Sector)
	}
	if !ship.Flags.OnNode() {
		t.Fatal("arrived undocked at the far hub")
	}
	if p.Turns != 59 {
		t.Fatalf("turns=%d, want 59", p.Turns)
	}

	// And back.
	mustOK(t, exec(t, w, p, protocol.OpNode, protocol.SubHop, "1"))
	if ship.Sector != 4 {
		t.Fatalf("ship in sector %d, want 4", ship.Sector)
	}
}
