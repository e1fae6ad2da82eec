package world

import (
	"strings"
	"testing"

	"warptrade.io/internal/protocol"
)

func dockedAtStardock(t *testing.T, w *World, name string) *Player {
	t.Helper()
	p := addTestPlayer(t, w, name, 5)
	mustOK(t, exec(t, w, p, protocol.OpPort, protocol.SubLand))
	return p
}

func TestStardockGate(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 2)
	mustBad(t, exec(t, w, p, protocol.OpStardock, protocol.SubBalance), "not at a stardock")

	// Docking at a trading port is not enough.
	mustOK(t, exec(t, w, p, protocol.OpPort, protocol.SubLand))
	mustBad(t, exec(t, w, p, protocol.OpStardock, protocol.SubBalance), "not at a stardock")
}

func TestShipResalePrice(t *testing.T) {
	w, _ := newTestWorld(t)
	p := dockedAtStardock(t, w, "Ada")
	ship := w.ships[p.ShipID]
	ship.Holds = 30 // 10 over the Scout baseline
	ship.Fighters = 4
	ship.Shields = 2

	// 0.75 * (41300 + 10*250 + 4*218 + 2*131) = 33700.5, floored.
	price := replyInt(t, exec(t, w, p, protocol.OpStardock, protocol.SubPriceShip))
	if price != 33700 {
		t.Fatalf("resale price %d, want 33700", price)
	}
}

func TestSellShipThenBuyAnother(t *testing.T) {
	w, _ := newTestWorld(t)
	p := dockedAtStardock(t, w, "Ada")
	oldShip := w.ships[p.ShipID]
	oldName := oldShip.Name
	quoted := replyInt(t, exec(t, w, p, protocol.OpStardock, protocol.SubPriceShip))

	mustOK(t, exec(t, w, p, protocol.OpStardock, protocol.SubSellShip))
	if p.ShipID != 0 {
		t.Fatal("player still owns the sold ship")
	}
	if p.Sector != 5 {
		t.Fatalf("player stranded in sector %d, want 5", p.Sector)
	}
	if p.Credits != 1000+quoted {
		t.Fatalf("credits %d, want %d", p.Credits, 1000+quoted)
	}
	if _, err := w.findShipByName(oldName); err == nil {
		t.Fatal("sold ship still registered")
	}

	// Shipless on the dock the bank and shipyard still answer; moving does
	// not.
	mustOK(t, exec(t, w, p, protocol.OpStardock, protocol.SubBalance))
	mustBad(t, exec(t, w, p, protocol.OpMove, "", "1"), "no ship")
	mustBad(t, exec(t, w, p, protocol.OpStardock, protocol.SubSellShip), "no ship to sell")

	// The freighter costs more than the wallet holds.
	mustBad(t, exec(t, w, p, protocol.OpStardock, protocol.SubBuyShip, "2", "Behemoth"), "costs")

	p.Credits = 200_000
	reply := mustOK(t, exec(t, w, p, protocol.OpStardock, protocol.SubBuyShip, "2", "Behemoth"))
	if !strings.Contains(reply, "Behemoth") {
		t.Fatalf("purchase reply: %q", reply)
	}
	if p.Sector != 0 {
		t.Fatal("player not back aboard after purchase")
	}
	ship := w.ships[p.ShipID]
	if ship.Type != 2 || ship.Sector != 5 || ship.Holds != 40 {
		t.Fatalf("new ship wrong: %+v", ship)
	}
	if !ship.Flags.OnStardock() || !ship.Flags.Ported() {
		t.Fatal("new ship not docked where it was bought")
	}
	if p.Credits != 200_000-120_000 {
		t.Fatalf("credits %d after purchase", p.Credits)
	}
}

func TestBuyShipRejectsSecond(t *testing.T) {
	w, _ := newTestWorld(t)
	p := dockedAtStardock(t, w, "Ada")
	p.Credits = 200_000
	mustBad(t, exec(t, w, p, protocol.OpStardock, protocol.SubBuyShip, "2", "Behemoth"),
		"already pilot")
}

func TestBuyShipRejectsTakenName(t *testing.T) {
	w, _ := newTestWorld(t)
	addTestPlayer(t, w, "Bob", 1)
	p := dockedAtStardock(t, w, "Ada")
	mustOK(t, exec(t, w, p, protocol.OpStardock, protocol.SubSellShip))
	p.Credits = 200_000
	mustBad(t, exec(t, w, p, protocol.OpStardock, protocol.SubBuyShip, "2", "Bob's ship"),
		"already flies")
}

func TestBank(t *testing.T) {
	w, _ := newTestWorld(t)
	p := dockedAtStardock(t, w, "Ada")

	if n := replyInt(t, exec(t, w, p, protocol.OpStardock, protocol.SubDeposit, "600")); n != 600 {
		t.Fatalf("balance %d after deposit", n)
	}
	if p.Credits != 400 || p.Bank != 600 {
		t.Fatalf("wallet=%d bank=%d", p.Credits, p.Bank)
	}
	mustBad(t, exec(t, w, p, protocol.OpStardock, protocol.SubDeposit, "500"), "only have")
	mustBad(t, exec(t, w, p, protocol.OpStardock, protocol.SubWithdraw, "601"), "balance")
	mustBad(t, exec(t, w, p, protocol.OpStardock, protocol.SubDeposit, "-5"), "bad amount")

	if n := replyInt(t, exec(t, w, p, protocol.OpStardock, protocol.SubWithdraw, "600")); n != 0 {
		t.Fatalf("balance %d after withdraw", n)
	}
	if p.Credits != 1000 || p.Bank != 0 {
		t.Fatalf("wallet=%d bank=%d", p.Credits, p.Bank)
	}
}

func TestDockList(t *testing.T) {
	w, _ := newTestWorld(t)
	p := dockedAtStardock(t, w, "Ada")
	reply := mustOK(t, exec(t, w, p, protocol.OpStardock, protocol.SubList))
	if !strings.Contains(reply, "Scout") || !strings.Contains(reply, "Freighter") {
		t.Fatalf("type list incomplete: %q", reply)
	}
}
