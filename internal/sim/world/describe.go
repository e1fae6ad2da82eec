package world

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"warptrade.io/internal/protocol"
)

// cmdDescribe renders the full textual description of the player's current
// sector: warps, beacon, region, visible port, other players, planets.
func (w *World) cmdDescribe(p *Player, cmd protocol.Command) string {
	sec := w.sectors[w.locationSector(p)]
	if sec == nil {
		return protocol.Bad()
	}

	fields := []string{
		"Sector " + strconv.Itoa(sec.ID),
		"Warps " + joinInts(sec.LinkList()),
	}
	if sec.Beacon != "" {
		fields = append(fields, "Beacon "+sec.Beacon)
	}
	if sec.Region != "" {
		fields = append(fields, "Region "+sec.Region)
	}
	if port := w.ports[sec.PortID]; port != nil && !port.Invisible {
		fields = append(fields, "Port "+port.Name+" (class "+strconv.Itoa(port.Type)+")")
	}
	if names := w.occupantNames(sec, p.ID); len(names) > 0 {
		fields = append(fields, "Players "+strings.Join(names, ","))
	}
	if len(sec.Planets) > 0 {
		names := make([]string, 0, len(sec.Planets))
		for _, id := range sec.Planets {
			if pl := w.planets[id]; pl != nil {
				names = append(names, pl.Name)
			}
		}
		fields = append(fields, "Planets "+strings.Join(names, ","))
	}
	if len(sec.Ships) > 0 {
		names := make([]string, 0, len(sec.Ships))
		for id := range sec.Ships {
			if s := w.ships[id]; s != nil {
				names = append(names, s.Name)
			}
		}
		sort.Strings(names)
		fields = append(fields, "Derelicts "+strings.Join(names, ","))
	}
	return protocol.OKFields(fields...)
}

func (w *World) occupantNames(sec *Sector, except int) []string {
	names := make([]string, 0, len(sec.Players))
	for pid := range sec.Players {
		if pid == except {
			continue
		}
		if p := w.players[pid]; p != nil {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}

// cmdUpdate is the client's poll: drains queued notifications and reports
// transit progress. Doubles as the connection heartbeat.
func (w *World) cmdUpdate(p *Player, cmd protocol.Command) string {
	var fields []string
	if p.InTransit {
		ship := w.ships[p.ShipID]
		if st, ok := w.cats.ShipType(ship.Type); ok {
			required := time.Duration(st.TurnsPerWarp*w.cfg.WarpWaitSeconds) * time.Second
			left := required - w.now().Sub(p.TransitStart)
			if left < 0 {
				left = 0
			}
			fields = append(fields, "Moving to "+strconv.Itoa(p.TransitTo)+
				" ("+strconv.Itoa(int(left.Seconds())+1)+"s)")
		}
	}
	fields = append(fields, p.Msgs...)
	p.Msgs = nil
	return protocol.OKFields(fields...)
}

func (w *World) cmdOnline(p *Player, cmd protocol.Command) string {
	var names []string
	for _, q := range w.players {
		if q.LoggedIn {
			names = append(names, q.Name)
		}
	}
	sort.Strings(names)
	return protocol.OKFields(names...)
}

func (w *World) cmdFedcomm(p *Player, cmd protocol.Command) string {
	msg := strings.TrimSpace(cmd.Args[0])
	if msg == "" {
		return protocol.Badf("empty message")
	}
	for _, q := range w.players {
		if q.ID == p.ID || !q.LoggedIn {
			continue
		}
		q.Notify("FedComm <" + p.Name + "> " + msg)
	}
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "FEDCOMM"})
	return protocol.OK()
}
