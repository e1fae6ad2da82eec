package world

import (
	"math"
	"strconv"

	"warptrade.io/internal/protocol"
)

// Trading negotiation engine. Prices come from an exponential model over the
// port's stock ratio with Gaussian noise; the haggle loop accepts, counters
// or rejects against bands anchored on the first computed offer. The
// thresholds and formulas here are tuned game economics; changing them
// changes what the game feels like, so they stay exactly as they are.

// Per-commodity base rates, credits per unit.
var (
	tradeBuyBase  = [3]float64{1.6, 2.3, 3.9} // port buying from the player
	tradeSellBase = [3]float64{1.8, 2.6, 4.4} // port selling to the player
)

// Experience awarded for a sharp close vs an ordinary one.
const (
	tradeXPSharp = 5
	tradeXPPlain = 2
)

// Port type flip hysteresis: a commodity flips between buy and sell mode
// when stock crosses these fractions of capacity.
const (
	flipHighFrac = 0.90
	flipLowFrac  = 0.10
)

// gaussian returns a Box-Muller normal sample with the given mean and
// standard deviation.
func (w *World) gaussian(mean, stddev float64) float64 {
	u1 := w.rng.Float64()
	for u1 == 0 {
		u1 = w.rng.Float64()
	}
	u2 := w.rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + stddev*z
}

// meanPrice is the statistical price model. Distinct formulas per
// direction, parameterized on the stock/capacity ratio.
func meanPrice(portBuying bool, c, qty int, stock, maxStock int) float64 {
	q := float64(qty)
	m := float64(maxStock)
	s := float64(stock)
	if m <= 0 {
		m = 1
	}
	if portBuying {
		return q * tradeBuyBase[c] * math.Exp(m/3000) * math.Exp(-(1 - s/m))
	}
	return q * tradeSellBase[c] * math.Exp(2) * math.Exp(-m/3000) * math.Exp(-s/m)
}

// cmdTrade handles PORT TRADE commodity:qty:offer:. An offer of 0 opens the
// negotiation and returns the port's first price; subsequent calls carry the
// player's counter-offer.
func (w *World) cmdTrade(p *Player, args []string) string {
	ship := w.ships[p.ShipID]
	if ship == nil || !ship.Flags.Ported() {
		return protocol.Badf("you are not docked at a port")
	}
	sec := w.sectors[ship.Sector]
	port := w.ports[sec.PortID]
	if port == nil || port.Type > 8 {
		return protocol.Badf("nothing to trade here")
	}

	c, err := strconv.Atoi(args[0])
	if err != nil || c < 0 || c > 2 {
		return protocol.Badf("bad commodity")
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil || qty <= 0 {
		return protocol.Badf("bad quantity")
	}
	offer, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil || offer < 0 {
		return protocol.Badf("bad price")
	}

	// Switching commodity mid-haggle abandons the old negotiation.
	if p.TradeCommodity != c {
		p.ResetTrade()
	}

	portBuying := port.Buys(c)

	if p.FirstOffer == 0 {
		return w.tradeOpen(p, ship, port, portBuying, c, qty)
	}
	if qty != p.TradeQty {
		return protocol.Badf("quantity changed mid-negotiation")
	}
	if portBuying {
		return w.haggleSell(p, ship, port, c, float64(offer))
	}
	return w.haggleBuy(p, ship, port, c, float64(offer))
}

// tradeOpen validates every precondition for the eventual exchange, then
// computes and records the port's first offer. Nothing mutates on failure.
func (w *World) tradeOpen(p *Player, ship *Ship, port *Port, portBuying bool, c, qty int) string {
	if portBuying {
		if ship.Cargo[c] < qty {
			return protocol.Badf("you only carry %d %s", ship.Cargo[c], CommodityName(c))
		}
		if port.Stock[c]+qty > port.MaxStock[c] {
			return protocol.Badf("the port cannot store that much %s", CommodityName(c))
		}
	} else {
		if !port.Sells(c) {
			return protocol.Badf("the port does not sell %s", CommodityName(c))
		}
		if port.Stock[c] < qty {
			return protocol.Badf("the port only has %d %s", port.Stock[c], CommodityName(c))
		}
		if ship.HoldsFree() < qty {
			return protocol.Badf("only %d holds free", ship.HoldsFree())
		}
	}

	mean := meanPrice(portBuying, c, qty, port.Stock[c], port.MaxStock[c])
	price := w.gaussian(mean, 0.05*mean)
	if price < 1 {
		price = 1
	}
	price = math.Round(price)

	if portBuying && int64(price) > port.Credits {
		return protocol.Badf("the port cannot afford that much %s", CommodityName(c))
	}

	p.TradeCommodity = c
	p.TradeQty = qty
	p.FirstOffer = price
	p.LastOffer = price
	return protocol.OKf("%d", int64(price))
}

// haggleSell runs the counter-offer loop when the player is selling to the
// port. Higher counter-offers squeeze the port.
func (w *World) haggleSell(p *Player, ship *Ship, port *Port, c int, offer float64) string {
	// A price three times the opening offer insults the port.
	if offer >= 3*p.FirstOffer {
		p.ResetTrade()
		return protocol.Badf("the port breaks off negotiations")
	}
	ref := p.LastOffer
	switch {
	case offer <= ref+1:
		return w.tradeClose(p, ship, port, c, offer, tradeXPSharp, true)
	case offer <= ref+5:
		return w.tradeClose(p, ship, port, c, offer, tradeXPPlain, true)
	case offer > p.FirstOffer*1.10:
		// Far outside the band: the port concedes a single credit.
		p.LastOffer = ref + 1
		return protocol.OKf("counter %d", int64(p.LastOffer))
	default:
		// Inside the wide band: meet toward the middle.
		p.LastOffer = math.Round((ref + offer) / 2)
		return protocol.OKf("counter %d", int64(p.LastOffer))
	}
}

// haggleBuy mirrors haggleSell for the player-buying direction; lower
// counter-offers squeeze the port.
func (w *World) haggleBuy(p *Player, ship *Ship, port *Port, c int, offer float64) string {
	if offer == 0 {
		p.ResetTrade()
		return protocol.Badf("the port breaks off negotiations")
	}
	ref := p.LastOffer
	switch {
	case offer >= ref-1:
		return w.tradeClose(p, ship, port, c, offer, tradeXPSharp, false)
	case offer >= ref-5:
		return w.tradeClose(p, ship, port, c, offer, tradeXPPlain, false)
	case offer < p.FirstOffer*0.90:
		p.LastOffer = ref - 1
		return protocol.OKf("counter %d", int64(p.LastOffer))
	default:
		p.LastOffer = math.Round((ref + offer) / 2)
		return protocol.OKf("counter %d", int64(p.LastOffer))
	}
}

// tradeClose applies an accepted trade. All quantity and wallet checks run
// before any mutation; on failure every prior state is left untouched.
func (w *World) tradeClose(p *Player, ship *Ship, port *Port, c int, priceF float64, xp int, playerSelling bool) string {
	price := int64(math.Round(priceF))
	qty := p.TradeQty

	if playerSelling {
		if ship.Cargo[c] < qty {
			p.ResetTrade()
			return protocol.Badf("you no longer carry %d %s", qty, CommodityName(c))
		}
		if port.Stock[c]+qty > port.MaxStock[c] {
			p.ResetTrade()
			return protocol.Badf("the port cannot store that much %s", CommodityName(c))
		}
		if price > port.Credits {
			p.ResetTrade()
			return protocol.Badf("the port cannot pay %d", price)
		}
		ship.Cargo[c] -= qty
		port.Stock[c] += qty
		port.Credits -= price
		if port.Credits < 0 {
			port.Credits = 0
		}
		p.Credits += price
	} else {
		if port.Stock[c] < qty {
			p.ResetTrade()
			return protocol.Badf("the port no longer has %d %s", qty, CommodityName(c))
		}
		if ship.HoldsFree() < qty {
			p.ResetTrade()
			return protocol.Badf("only %d holds free", ship.HoldsFree())
		}
		if p.Credits < price {
			p.ResetTrade()
			return protocol.Badf("you cannot pay %d", price)
		}
		port.Stock[c] -= qty
		ship.Cargo[c] += qty
		p.Credits -= price
		port.Credits += price
	}

	p.Experience += xp
	p.ResetTrade()
	w.flipPortType(port, c)
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "TRADE", Sector: port.Sector,
		Detail: CommodityName(c) + " x" + strconv.Itoa(qty) + " @" + strconv.FormatInt(price, 10)})
	return protocol.OKf("accepted %d", price)
}

// flipPortType applies the 10%/90% hysteresis: a commodity the port buys
// flips to selling once stock is nearly full, and back once nearly empty.
// The flip is an XOR against the commodity's type bit.
func (w *World) flipPortType(port *Port, c int) {
	if port.Type > 8 || port.MaxStock[c] == 0 {
		return
	}
	frac := float64(port.Stock[c]) / float64(port.MaxStock[c])
	bit := 1 << c
	switch {
	case port.Buys(c) && frac >= flipHighFrac:
		port.Type ^= bit
	case port.Sells(c) && frac <= flipLowFrac:
		port.Type ^= bit
	}
}
