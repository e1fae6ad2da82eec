package world

import (
	"fmt"
	"strconv"
	"time"

	"warptrade.io/internal/protocol"
)

// Read-only projections of entity state into the wire format.

func (w *World) cmdMyInfo(p *Player, cmd protocol.Command) string {
	fields := []string{
		p.Name,
		"sector " + strconv.Itoa(w.locationSector(p)),
		"turns " + strconv.Itoa(p.Turns),
		"credits " + strconv.FormatInt(p.Credits, 10),
		"bank " + strconv.FormatInt(p.Bank, 10),
		"experience " + strconv.Itoa(p.Experience),
		"alignment " + strconv.Itoa(p.Alignment),
	}
	if ship := w.ships[p.ShipID]; ship != nil {
		fields = append(fields, "ship "+ship.Name)
	}
	if p.InTransit {
		fields = append(fields, "moving to "+strconv.Itoa(p.TransitTo))
	}
	return protocol.OKFields(fields...)
}

func (w *World) cmdPlayerInfo(p *Player, cmd protocol.Command) string {
	id, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		return protocol.Badf("bad player number")
	}
	q := w.players[id]
	if q == nil {
		return protocol.Badf("no such player")
	}
	online := "offline"
	if q.LoggedIn {
		online = "online"
	}
	shipName := ""
	if s := w.ships[q.ShipID]; s != nil {
		shipName = s.Name
	}
	// Public projection only: no location, no wallet.
	return protocol.OKFields(
		q.Name,
		"experience "+strconv.Itoa(q.Experience),
		"alignment "+strconv.Itoa(q.Alignment),
		"ship "+shipName,
		online,
	)
}

func (w *World) cmdShipInfo(p *Player, cmd protocol.Command) string {
	id, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		return protocol.Badf("bad ship number")
	}
	s := w.ships[id]
	if s == nil {
		return protocol.Badf("no such ship")
	}
	st, _ := w.cats.ShipType(s.Type)
	typeName := "?"
	if st != nil {
		typeName = st.Name
	}
	fields := []string{s.Name, "type " + typeName}
	if s.Owner == p.ID {
		fields = append(fields,
			fmt.Sprintf("holds %d/%d", s.CargoUsed(), s.Holds),
			fmt.Sprintf("cargo %d/%d/%d", s.Cargo[0], s.Cargo[1], s.Cargo[2]),
			fmt.Sprintf("colonists %d/%d/%d", s.Colonists[0], s.Colonists[1], s.Colonists[2]),
			"fighters "+strconv.Itoa(s.Fighters),
			"shields "+strconv.Itoa(s.Shields),
		)
	} else if owner := w.players[s.Owner]; owner != nil {
		fields = append(fields, "owner "+owner.Name)
	} else {
		fields = append(fields, "derelict")
	}
	return protocol.OKFields(fields...)
}

func (w *World) cmdGameInfo(p *Player, cmd protocol.Command) string {
	st := w.statsLocked()
	return protocol.OKFields(
		"version "+protocol.Version,
		"uptime "+w.now().Sub(w.started).Truncate(time.Second).String(),
		"players "+strconv.Itoa(st.Players),
		"online "+strconv.Itoa(st.Online),
		"sectors "+strconv.Itoa(st.Sectors),
		"ports "+strconv.Itoa(st.Ports),
		"planets "+strconv.Itoa(st.Planets),
		"citadels "+strconv.Itoa(st.Citadels),
		"good "+strconv.Itoa(st.PctGoodAlign)+"%",
		"fortified "+strconv.Itoa(st.PctWithCitadel)+"%",
	)
}
