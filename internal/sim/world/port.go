package world

import (
	"strconv"

	"warptrade.io/internal/protocol"
)

// Porting: landing hides the player from the open sector view until they
// leave. Stardocks and node hubs set their own flag so the STARDOCK and
// NODE command families can gate on it.

func (w *World) cmdPort(p *Player, cmd protocol.Command) string {
	switch cmd.Sub {
	case protocol.SubLand:
		return w.portLand(p)
	case protocol.SubTrade:
		return w.cmdTrade(p, cmd.Args)
	case protocol.SubQuit:
		return w.portQuit(p)
	}
	return protocol.Badf("no matching command")
}

func (w *World) portLand(p *Player) string {
	ship := w.ships[p.ShipID]
	if ship == nil {
		return protocol.Badf("you have no ship")
	}
	if ship.Flags.Docked() {
		return protocol.Badf("you are already docked")
	}
	sec := w.sectors[ship.Sector]
	if sec == nil {
		return protocol.Bad()
	}
	port := w.ports[sec.PortID]
	if port == nil || port.Invisible {
		return protocol.Badf("no port in this sector")
	}

	switch port.Type {
	case PortTypeStardock:
		ship.Flags |= FlagPorted | FlagOnStardock
	case PortTypeNodeHub:
		ship.Flags |= FlagPorted | FlagOnNode
	default:
		ship.Flags |= FlagPorted
	}
	w.sectorRemovePlayer(ship.Sector, p.ID)
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "PORT_LAND", Sector: ship.Sector})
	return protocol.OKf("Docked at %s", port.Name)
}

func (w *World) portQuit(p *Player) string {
	ship := w.ships[p.ShipID]
	if ship == nil || !ship.Flags.Ported() {
		return protocol.Badf("you are not docked")
	}
	ship.Flags &^= FlagPorted | FlagOnStardock | FlagOnNode
	p.ResetTrade()
	w.sectorAddPlayer(ship.Sector, p.ID)
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "PORT_QUIT", Sector: ship.Sector})
	return protocol.OK()
}

// cmdPortInfo projects the current sector's port. Stock figures are only
// shown while docked; from open space only the name and class are visible.
func (w *World) cmdPortInfo(p *Player, cmd protocol.Command) string {
	sec := w.sectors[w.locationSector(p)]
	if sec == nil {
		return protocol.Bad()
	}
	port := w.ports[sec.PortID]
	if port == nil || port.Invisible {
		return protocol.Badf("no port in this sector")
	}

	fields := []string{port.Name, "class " + strconv.Itoa(port.Type)}
	ship := w.ships[p.ShipID]
	if ship != nil && ship.Flags.Ported() {
		for c := 0; c < 3; c++ {
			mode := "buys"
			if port.Sells(c) {
				mode = "sells"
			}
			if port.Type > 8 {
				mode = "none"
			}
			fields = append(fields, CommodityName(c)+" "+mode+" "+
				strconv.Itoa(port.Stock[c])+"/"+strconv.Itoa(port.MaxStock[c]))
		}
		fields = append(fields, "credits "+strconv.FormatInt(port.Credits, 10))
	}
	return protocol.OKFields(fields...)
}
