package world

import (
	"strings"

	"warptrade.io/internal/protocol"
)

// Genesis: two-phase planet creation. A preview rolls a random planet class
// and memoizes it on the player; a confirm materializes the planet. The
// placement sector always comes from the live ship location at confirm
// time, never from anything captured during preview.

func (w *World) cmdGenesis(p *Player, cmd protocol.Command) string {
	name := strings.TrimSpace(cmd.Args[0])
	flag := strings.ToUpper(strings.TrimSpace(cmd.Args[1]))

	switch flag {
	case "P":
		return w.genesisPreview(p)
	case "C":
		return w.genesisConfirm(p, name)
	}
	return protocol.Badf("genesis flag must be P or C")
}

func (w *World) genesisPreview(p *Player) string {
	classes := w.cats.PlanetClasses
	pick := classes[w.rng.Intn(len(classes))]
	p.GenesisClass = pick.ID
	return protocol.OKFields(pick.Name)
}

func (w *World) genesisConfirm(p *Player, name string) string {
	if p.GenesisClass == 0 {
		return protocol.Badf("no genesis preview pending")
	}
	if !validName(name) {
		return protocol.Badf("invalid planet name")
	}
	ship := w.ships[p.ShipID]
	if ship == nil || ship.Flags.Docked() || p.Sector != 0 {
		return protocol.Badf("you must be aboard your ship in open space")
	}
	sec := w.sectors[ship.Sector]
	if sec == nil {
		return protocol.Bad()
	}
	class, ok := w.cats.PlanetClass(p.GenesisClass)
	if !ok {
		p.GenesisClass = 0
		return protocol.Badf("planet class missing")
	}

	w.nextPlanet++
	pl := &Planet{
		ID:     w.nextPlanet,
		Name:   name,
		Owner:  p.ID,
		Sector: sec.ID,
		Class:  class.ID,
	}
	w.planets[pl.ID] = pl
	sec.Planets = append(sec.Planets, pl.ID)
	p.GenesisClass = 0
	w.broadcastSector(sec.ID, p.ID, "A new planet coalesces: "+name)
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "GENESIS", Sector: sec.ID, Detail: name})
	return protocol.OKf("Planet %s created in sector %d", name, sec.ID)
}
