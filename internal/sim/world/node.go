package world

import (
	"fmt"
	"strconv"

	"warptrade.io/internal/protocol"
)

// Node travel: the galaxy is partitioned into loosely-connected sub-regions;
// the only way across is a hop between type-10 hub ports.

func (w *World) cmdNode(p *Player, cmd protocol.Command) string {
	switch cmd.Sub {
	case protocol.SubInfo:
		return w.nodeInfo(p)
	case protocol.SubHop:
		return w.nodeHop(p, cmd.Args[0])
	}
	return protocol.Badf("no matching command")
}

func (w *World) nodeInfo(p *Player) string {
	sec := w.locationSector(p)
	node, ok := w.cfg.NodeOf(sec)
	if !ok {
		return protocol.Badf("sector outside all nodes")
	}
	fields := []string{
		"node " + strconv.Itoa(node.ID),
		fmt.Sprintf("sectors %d-%d", node.Min, node.Max),
	}
	if hub := w.ports[node.HubPort]; hub != nil {
		fields = append(fields, "hub "+hub.Name+" in sector "+strconv.Itoa(hub.Sector))
	}
	return protocol.OKFields(fields...)
}

// nodeHop jumps the ship between travel hubs. Requires being docked at the
// local hub; costs a normal warp's worth of turns.
func (w *World) nodeHop(p *Player, arg string) string {
	targetNode, err := strconv.Atoi(arg)
	if err != nil {
		return protocol.Badf("bad node number")
	}
	ship := w.ships[p.ShipID]
	if ship == nil || !ship.Flags.OnNode() {
		return protocol.Badf("you are not docked at a travel hub")
	}
	st, ok := w.cats.ShipType(ship.Type)
	if !ok {
		return protocol.Badf("unknown ship type")
	}
	if p.Turns < st.TurnsPerWarp {
		return protocol.Badf("not enough turns (%d needed)", st.TurnsPerWarp)
	}

	var dest *Port
	for _, n := range w.cfg.Nodes {
		if n.ID == targetNode {
			dest = w.ports[n.HubPort]
			break
		}
	}
	if dest == nil {
		return protocol.Badf("no such node")
	}
	cur, _ := w.cfg.NodeOf(ship.Sector)
	if cur.ID == targetNode {
		return protocol.Badf("you are already in node %d", targetNode)
	}

	p.Turns -= st.TurnsPerWarp
	ship.Sector = dest.Sector
	// Arrive docked at the far hub, same flags as here.
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "NODE_HOP", Sector: dest.Sector,
		Detail: "node " + arg})
	return protocol.OKf("Hub transfer complete; docked at %s", dest.Name)
}
