package world

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"warptrade.io/internal/protocol"
)

// Stardock: shipyard and bank. Available only while docked at a type 9
// port.

// Shipyard resale constants. Resale pays three quarters of installed value;
// fighters and shields have fixed unit prices, holds beyond the type's
// baseline are valued per unit.
const (
	resaleFrac       = 0.75
	fighterUnitValue = 218
	shieldUnitValue  = 131
	holdUnitValue    = 250
)

func (w *World) cmdStardock(p *Player, cmd protocol.Command) string {
	ship := w.ships[p.ShipID]
	onDock := ship != nil && ship.Flags.OnStardock()
	// A player who just sold their ship stands on the dock with no ship.
	if !onDock && !(ship == nil && p.Sector != 0 && w.sectorHasStardock(p.Sector)) {
		return protocol.Badf("you are not at a stardock")
	}

	switch cmd.Sub {
	case protocol.SubPriceShip:
		return w.dockPriceShip(p)
	case protocol.SubSellShip:
		return w.dockSellShip(p)
	case protocol.SubBuyShip:
		return w.dockBuyShip(p, cmd.Args)
	case protocol.SubDeposit:
		return w.bankMove(p, cmd.Args[0], true)
	case protocol.SubWithdraw:
		return w.bankMove(p, cmd.Args[0], false)
	case protocol.SubBalance:
		return protocol.OKf("%d", p.Bank)
	case protocol.SubList:
		return w.dockListTypes()
	}
	return protocol.Badf("no matching command")
}

func (w *World) sectorHasStardock(sectorID int) bool {
	sec := w.sectors[sectorID]
	if sec == nil {
		return false
	}
	port := w.ports[sec.PortID]
	return port != nil && port.Type == PortTypeStardock
}

// resaleValue prices a ship: base cost plus installed extras, at the resale
// fraction.
func (w *World) resaleValue(ship *Ship) (int64, bool) {
	st, ok := w.cats.ShipType(ship.Type)
	if !ok {
		return 0, false
	}
	extras := 0
	if ship.Holds > st.InitialHolds {
		extras += (ship.Holds - st.InitialHolds) * holdUnitValue
	}
	extras += ship.Fighters * fighterUnitValue
	extras += ship.Shields * shieldUnitValue
	v := resaleFrac * (float64(st.Cost) + float64(extras))
	return int64(math.Floor(v)), true
}

func (w *World) dockPriceShip(p *Player) string {
	ship := w.ships[p.ShipID]
	if ship == nil {
		return protocol.Badf("you have no ship to price")
	}
	v, ok := w.resaleValue(ship)
	if !ok {
		return protocol.Badf("unknown ship type")
	}
	return protocol.OKf("%d", v)
}

// dockSellShip commits the quoted price and deletes the ship. The player is
// left standing on the dock until they buy another.
func (w *World) dockSellShip(p *Player) string {
	ship := w.ships[p.ShipID]
	if ship == nil {
		return protocol.Badf("you have no ship to sell")
	}
	v, ok := w.resaleValue(ship)
	if !ok {
		return protocol.Badf("unknown ship type")
	}

	p.Credits += v
	p.ShipID = 0
	p.Sector = ship.Sector
	if _, err := w.removeShipNamed(ship.Name); err != nil {
		w.log.Printf("sellship: name index out of sync for %q", ship.Name)
	}
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "SELLSHIP", Sector: ship.Sector,
		Detail: fmt.Sprintf("%s for %d", ship.Name, v)})
	return protocol.OKf("Sold for %d", v)
}

func (w *World) dockBuyShip(p *Player, args []string) string {
	if p.ShipID != 0 {
		return protocol.Badf("you already pilot a ship")
	}
	typeID, err := strconv.Atoi(args[0])
	if err != nil {
		return protocol.Badf("bad ship type")
	}
	st, ok := w.cats.ShipType(typeID)
	if !ok {
		return protocol.Badf("no such ship type")
	}
	name := strings.TrimSpace(args[1])
	if !validName(name) {
		return protocol.Badf("invalid ship name")
	}
	if st.Cost > p.Credits {
		return protocol.Badf("the %s costs %d", st.Name, st.Cost)
	}

	ship, err := w.insertShipNamed(name)
	if err != nil {
		return protocol.Badf("a ship named %s already flies", name)
	}
	p.Credits -= st.Cost
	ship.Type = st.ID
	ship.Owner = p.ID
	ship.Sector = p.Sector
	ship.Holds = st.InitialHolds
	ship.Flags = FlagPorted | FlagOnStardock
	p.ShipID = ship.ID
	p.Sector = 0
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "BUYSHIP", Sector: ship.Sector,
		Detail: fmt.Sprintf("%s type %d", name, st.ID)})
	return protocol.OKf("The %s %s is yours", st.Name, name)
}

// bankMove shifts credits between the player's wallet and bank balance.
func (w *World) bankMove(p *Player, amountStr string, deposit bool) string {
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil || amount <= 0 {
		return protocol.Badf("bad amount")
	}
	if deposit {
		if amount > p.Credits {
			return protocol.Badf("you only have %d credits", p.Credits)
		}
		p.Credits -= amount
		p.Bank += amount
	} else {
		if amount > p.Bank {
			return protocol.Badf("your balance is only %d", p.Bank)
		}
		p.Bank -= amount
		p.Credits += amount
	}
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "BANK", Detail: amountStr})
	return protocol.OKf("%d", p.Bank)
}

func (w *World) dockListTypes() string {
	fields := make([]string, 0, len(w.cats.ShipTypes))
	for _, st := range w.cats.ShipTypes {
		fields = append(fields, fmt.Sprintf("%d %s %d", st.ID, st.Name, st.Cost))
	}
	return protocol.OKFields(fields...)
}
