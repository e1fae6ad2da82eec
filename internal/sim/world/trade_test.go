package world

import (
	"strconv"
	"strings"
	"testing"

	"warptrade.io/internal/protocol"
)

// replyInt pulls the single integer payload out of an "OK: n" reply.
func replyInt(t *testing.T, reply string) int64 {
	t.Helper()
	mustOK(t, reply)
	s := strings.TrimPrefix(reply, protocol.PrefixOK+": ")
	s = strings.TrimPrefix(s, "counter ")
	s = strings.TrimPrefix(s, "accepted ")
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		t.Fatalf("reply %q has no integer payload", reply)
	}
	return n
}

// dockAt puts a player's ship on the port in its current sector.
func dockAt(t *testing.T, w *World, p *Player) {
	t.Helper()
	mustOK(t, exec(t, w, p, protocol.OpPort, protocol.SubLand))
}

func TestTradePlayerSells(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 2)
	ship := w.ships[p.ShipID]
	ship.Cargo[Ore] = 10
	port := w.ports[1]
	dockAt(t, w, p)

	price := replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "10", "0"))
	if price < 1 {
		t.Fatalf("opening price %d", price)
	}
	if p.FirstOffer != float64(price) {
		t.Fatalf("first offer not recorded: %v vs %d", p.FirstOffer, price)
	}

	// Asking exactly the quoted price closes sharply.
	accepted := replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade,
		"0", "10", strconv.FormatInt(price, 10)))
	if accepted != price {
		t.Fatalf("accepted %d, want %d", accepted, price)
	}
	if ship.Cargo[Ore] != 0 || port.Stock[Ore] != 510 {
		t.Fatalf("goods not moved: cargo=%d stock=%d", ship.Cargo[Ore], port.Stock[Ore])
	}
	if p.Credits != 1000+price || port.Credits != 1_000_000-price {
		t.Fatalf("credits not conserved: player=%d port=%d", p.Credits, port.Credits)
	}
	if p.Experience != tradeXPSharp {
		t.Fatalf("xp=%d, want %d", p.Experience, tradeXPSharp)
	}
	if p.FirstOffer != 0 || p.TradeCommodity != -1 {
		t.Fatal("negotiation state not reset after close")
	}
}

func TestTradePlayerBuys(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 2)
	w.ports[1].Type = 3 // sells ore
	port := w.ports[1]
	dockAt(t, w, p)

	price := replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "10", "0"))
	accepted := replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade,
		"0", "10", strconv.FormatInt(price, 10)))
	if accepted != price {
		t.Fatalf("accepted %d, want %d", accepted, price)
	}
	ship := w.ships[p.ShipID]
	if ship.Cargo[Ore] != 10 || port.Stock[Ore] != 490 {
		t.Fatalf("goods not moved: cargo=%d stock=%d", ship.Cargo[Ore], port.Stock[Ore])
	}
	if p.Credits != 1000-price || port.Credits != 1_000_000+price {
		t.Fatalf("credits not conserved: player=%d port=%d", p.Credits, port.Credits)
	}
}

func TestTradeInsultBreaksOff(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 2)
	w.ships[p.ShipID].Cargo[Ore] = 10
	dockAt(t, w, p)

	price := replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "10", "0"))
	insult := strconv.FormatInt(3*price, 10)
	mustBad(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "10", insult), "breaks off")
	if p.FirstOffer != 0 {
		t.Fatal("negotiation survived the break-off")
	}
	if w.ships[p.ShipID].Cargo[Ore] != 10 {
		t.Fatal("cargo mutated by a failed negotiation")
	}
}

func TestTradeZeroOfferBreaksOffBuying(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 2)
	w.ports[1].Type = 3
	dockAt(t, w, p)

	replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "10", "0"))
	// A second explicit 0 is a lowball, not a reopen.
	mustBad(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "10", "0"), "breaks off")
	if p.FirstOffer != 0 {
		t.Fatal("negotiation survived the break-off")
	}
}

func TestHaggleCounterBands(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 2)
	ship := w.ships[p.ShipID]
	port := w.ports[1]

	// Selling, anchored at 100: inside the 10% band counters meet in the
	// middle, outside it the port concedes one credit at a time.
	p.TradeCommodity = Ore
	p.TradeQty = 5
	p.FirstOffer = 100
	p.LastOffer = 100

	reply := mustOK(t, w.haggleSell(p, ship, port, Ore, 108))
	if p.LastOffer != 104 || !strings.Contains(reply, "counter 104") {
		t.Fatalf("midpoint counter wrong: %q last=%v", reply, p.LastOffer)
	}
	reply = mustOK(t, w.haggleSell(p, ship, port, Ore, 150))
	if p.LastOffer != 105 || !strings.Contains(reply, "counter 105") {
		t.Fatalf("concession counter wrong: %q last=%v", reply, p.LastOffer)
	}

	// Buying mirrors downward.
	p.FirstOffer = 100
	p.LastOffer = 100
	reply = mustOK(t, w.haggleBuy(p, ship, port, Ore, 92))
	if p.LastOffer != 96 || !strings.Contains(reply, "counter 96") {
		t.Fatalf("midpoint counter wrong: %q last=%v", reply, p.LastOffer)
	}
	reply = mustOK(t, w.haggleBuy(p, ship, port, Ore, 50))
	if p.LastOffer != 95 || !strings.Contains(reply, "counter 95") {
		t.Fatalf("concession counter wrong: %q last=%v", reply, p.LastOffer)
	}
}

func TestTradeQuantityPinnedDuringHaggle(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 2)
	w.ships[p.ShipID].Cargo[Ore] = 20
	dockAt(t, w, p)

	replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "10", "0"))
	mustBad(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "20", "5"), "quantity changed")
}

func TestTradeRequiresDock(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 2)
	mustBad(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "10", "0"), "not docked")
}

func TestPortTypeFlips(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 2)
	ship := w.ships[p.ShipID]
	ship.Holds = 100
	ship.Cargo[Ore] = 50
	p.Credits = 100_000
	port := w.ports[1]
	dockAt(t, w, p)

	// Fill the port past 90%: the ore bit flips from buying to selling.
	port.Stock[Ore] = 880
	price := replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "50", "0"))
	replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade,
		"0", "50", strconv.FormatInt(price, 10)))
	if port.Type != 3 {
		t.Fatalf("port type %d after fill, want 3", port.Type)
	}

	// Drain it back below 10%: the bit flips back.
	port.Stock[Ore] = 120
	price = replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "50", "0"))
	replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade,
		"0", "50", strconv.FormatInt(price, 10)))
	if port.Type != 2 {
		t.Fatalf("port type %d after drain, want 2", port.Type)
	}
}

func TestSwitchingCommodityResetsNegotiation(t *testing.T) {
	w, _ := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 2)
	ship := w.ships[p.ShipID]
	ship.Cargo[Ore] = 10
	ship.Cargo[Equipment] = 10
	dockAt(t, w, p)

	replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "0", "10", "0"))
	// Asking about equipment abandons the ore haggle and opens fresh.
	price := replyInt(t, exec(t, w, p, protocol.OpPort, protocol.SubTrade, "2", "10", "0"))
	if p.TradeCommodity != Equipment || p.FirstOffer != float64(price) {
		t.Fatalf("negotiation not reopened: commodity=%d first=%v", p.TradeCommodity, p.FirstOffer)
	}
}
