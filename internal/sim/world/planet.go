package world

import (
	"fmt"
	"strconv"

	"warptrade.io/internal/protocol"
	"warptrade.io/internal/sim/catalogs"
)

// Planet operations. Everything below LAND is gated on the ship being
// flagged on-planet; every transfer branch bounds-checks both sides before
// mutating either.

// Transferable resource kinds for PLANET TAKE/LEAVE.
const (
	resOre = iota
	resOrganics
	resEquipment
	resOreColonists
	resOrgColonists
	resEquColonists
	resFighters
	resCredits
	resShields
	resKinds
)

// cmdLandPlanet handles LAND n: putting the ship down on planet n in the
// current sector. Landing on an unclaimed planet claims it.
func (w *World) cmdLandPlanet(p *Player, cmd protocol.Command) string {
	id, err := strconv.Atoi(cmd.Args[0])
	if err != nil || id <= 0 {
		return protocol.Badf("bad planet number")
	}
	ship := w.ships[p.ShipID]
	if ship == nil {
		return protocol.Badf("you have no ship")
	}
	if ship.Flags.Docked() {
		return protocol.Badf("you must leave first")
	}
	pl := w.planets[id]
	if pl == nil || pl.Sector != ship.Sector {
		return protocol.Badf("no such planet here")
	}

	ship.Flags |= FlagOnPlanet
	ship.PlanetID = pl.ID
	w.sectorRemovePlayer(ship.Sector, p.ID)
	if pl.Owner == 0 {
		pl.Owner = p.ID
		w.auditWrite(AuditEntry{Actor: p.ID, Action: "PLANET_CLAIM", Sector: pl.Sector, Detail: pl.Name})
		return protocol.OKf("Landed on %s; the planet is now yours", pl.Name)
	}
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "PLANET_LAND", Sector: pl.Sector, Detail: pl.Name})
	return protocol.OKf("Landed on %s", pl.Name)
}

func (w *World) cmdOnPlanet(p *Player, cmd protocol.Command) string {
	ship := w.ships[p.ShipID]
	if ship == nil || !ship.Flags.OnPlanet() {
		return protocol.Badf("you are not on a planet")
	}
	pl := w.planets[ship.PlanetID]
	if pl == nil {
		return protocol.Bad()
	}
	return protocol.OKFields(pl.Name, strconv.Itoa(pl.ID))
}

// landedPlanet resolves the planet the player's ship sits on, with all the
// shared gating.
func (w *World) landedPlanet(p *Player) (*Ship, *Planet, string) {
	ship := w.ships[p.ShipID]
	if ship == nil || !ship.Flags.OnPlanet() {
		return nil, nil, "you are not on a planet"
	}
	pl := w.planets[ship.PlanetID]
	if pl == nil {
		return nil, nil, "planet record missing"
	}
	if pl.Owner != 0 && pl.Owner != p.ID {
		return nil, nil, "this planet is not yours"
	}
	return ship, pl, ""
}

func (w *World) cmdPlanet(p *Player, cmd protocol.Command) string {
	switch cmd.Sub {
	case protocol.SubTake:
		return w.planetTransfer(p, cmd.Args, true)
	case protocol.SubLeave:
		return w.planetTransfer(p, cmd.Args, false)
	case protocol.SubCitadel:
		return w.planetCitadel(p)
	case protocol.SubUpgrade:
		return w.planetUpgrade(p)
	case protocol.SubQuit:
		return w.planetQuit(p)
	case protocol.SubInfo:
		return w.planetInfo(p)
	}
	return protocol.Badf("no matching command")
}

// planetTransfer moves one resource kind between ship and planet. take=true
// pulls from the planet to the ship.
func (w *World) planetTransfer(p *Player, args []string, take bool) string {
	ship, pl, reason := w.landedPlanet(p)
	if reason != "" {
		return protocol.Badf("%s", reason)
	}
	kind, err := strconv.Atoi(args[0])
	if err != nil || kind < 0 || kind >= resKinds {
		return protocol.Badf("bad resource kind")
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil || qty <= 0 {
		return protocol.Badf("bad quantity")
	}
	class, ok := w.cats.PlanetClass(pl.Class)
	if !ok {
		return protocol.Badf("planet class missing")
	}
	st, ok := w.cats.ShipType(ship.Type)
	if !ok {
		return protocol.Badf("unknown ship type")
	}

	switch kind {
	case resOre, resOrganics, resEquipment:
		c := kind
		if take {
			if pl.Stock[c] < qty {
				return protocol.Badf("the planet only has %d %s", pl.Stock[c], CommodityName(c))
			}
			if ship.HoldsFree() < qty {
				return protocol.Badf("only %d holds free", ship.HoldsFree())
			}
			pl.Stock[c] -= qty
			ship.Cargo[c] += qty
		} else {
			if ship.Cargo[c] < qty {
				return protocol.Badf("you only carry %d %s", ship.Cargo[c], CommodityName(c))
			}
			if pl.Stock[c]+qty > class.MaxStock[c] {
				return protocol.Badf("the planet cannot store that much %s", CommodityName(c))
			}
			ship.Cargo[c] -= qty
			pl.Stock[c] += qty
		}

	case resOreColonists, resOrgColonists, resEquColonists:
		c := kind - resOreColonists
		if take {
			if pl.Colonists[c] < qty {
				return protocol.Badf("only %d colonists working %s", pl.Colonists[c], CommodityName(c))
			}
			if ship.HoldsFree() < qty {
				return protocol.Badf("only %d holds free", ship.HoldsFree())
			}
			pl.Colonists[c] -= qty
			ship.Colonists[c] += qty
		} else {
			if ship.Colonists[c] < qty {
				return protocol.Badf("you only carry %d colonists", ship.Colonists[c])
			}
			if pl.Colonists[c]+qty > class.MaxColonists[c] {
				return protocol.Badf("the planet cannot settle that many")
			}
			ship.Colonists[c] -= qty
			pl.Colonists[c] += qty
		}

	case resFighters:
		if take {
			if pl.Fighters < qty {
				return protocol.Badf("the planet only has %d fighters", pl.Fighters)
			}
			if ship.Fighters+qty > st.MaxFighters {
				return protocol.Badf("your ship can only carry %d fighters", st.MaxFighters)
			}
			pl.Fighters -= qty
			ship.Fighters += qty
		} else {
			if ship.Fighters < qty {
				return protocol.Badf("you only have %d fighters", ship.Fighters)
			}
			if pl.Fighters+qty > class.MaxFighters {
				return protocol.Badf("the planet cannot base that many fighters")
			}
			ship.Fighters -= qty
			pl.Fighters += qty
		}

	case resCredits:
		cit := pl.Citadel
		if cit == nil || cit.Level < 1 {
			return protocol.Badf("the planet has no citadel treasury")
		}
		amount := int64(qty)
		if take {
			if cit.Treasury < amount {
				return protocol.Badf("the treasury only holds %d", cit.Treasury)
			}
			cit.Treasury -= amount
			p.Credits += amount
		} else {
			if p.Credits < amount {
				return protocol.Badf("you only have %d credits", p.Credits)
			}
			p.Credits -= amount
			cit.Treasury += amount
		}

	case resShields:
		cit := pl.Citadel
		if cit == nil || cit.Level < 1 {
			return protocol.Badf("the planet has no shield store")
		}
		if take {
			if cit.Shields < qty {
				return protocol.Badf("the store only holds %d shields", cit.Shields)
			}
			if ship.Shields+qty > st.MaxShields {
				return protocol.Badf("your ship can only mount %d shields", st.MaxShields)
			}
			cit.Shields -= qty
			ship.Shields += qty
		} else {
			if ship.Shields < qty {
				return protocol.Badf("you only have %d shields", ship.Shields)
			}
			ship.Shields -= qty
			cit.Shields += qty
		}
	}

	dir := "LEAVE"
	if take {
		dir = "TAKE"
	}
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "PLANET_" + dir, Sector: pl.Sector,
		Detail: fmt.Sprintf("kind %d x%d", kind, qty)})
	return protocol.OK()
}

func (w *World) planetCitadel(p *Player) string {
	ship, pl, reason := w.landedPlanet(p)
	if reason != "" {
		return protocol.Badf("%s", reason)
	}
	if pl.Citadel == nil || pl.Citadel.Level < 1 {
		return protocol.Badf("the planet has no citadel")
	}
	if ship.Flags.InCitadel() {
		return protocol.Badf("you are already inside the citadel")
	}
	ship.Flags |= FlagInCitadel
	return protocol.OKf("Inside citadel level %d", pl.Citadel.Level)
}

// planetUpgrade starts the next citadel level. Resources are consumed up
// front; completion is the scheduler's job once the class's per-level time
// constant has elapsed.
func (w *World) planetUpgrade(p *Player) string {
	_, pl, reason := w.landedPlanet(p)
	if reason != "" {
		return protocol.Badf("%s", reason)
	}
	if pl.Owner != p.ID {
		return protocol.Badf("only the owner may upgrade")
	}
	class, ok := w.cats.PlanetClass(pl.Class)
	if !ok {
		return protocol.Badf("planet class missing")
	}
	cit := pl.Citadel
	if cit == nil {
		cit = &Citadel{}
	}
	if cit.Upgrading() {
		return protocol.Badf("an upgrade is already under way")
	}
	next := cit.Level + 1
	if next > w.cfg.MaxCitadelLevel || next >= catalogs.CitadelLevels {
		return protocol.Badf("the citadel is at its maximum level")
	}
	cost := class.Citadel[next]
	if pl.Stock[Ore] < cost.Ore || pl.Stock[Organics] < cost.Organics || pl.Stock[Equipment] < cost.Equipment {
		return protocol.Badf("insufficient materials (%d ore, %d organics, %d equipment)",
			cost.Ore, cost.Organics, cost.Equipment)
	}
	if pl.Colonists[0]+pl.Colonists[1]+pl.Colonists[2] < cost.Colonists {
		return protocol.Badf("insufficient labor (%d colonists needed)", cost.Colonists)
	}

	pl.Stock[Ore] -= cost.Ore
	pl.Stock[Organics] -= cost.Organics
	pl.Stock[Equipment] -= cost.Equipment
	cit.UpgradeStart = w.now()
	cit.UpgradeTo = next
	pl.Citadel = cit
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "CITADEL_UPGRADE", Sector: pl.Sector,
		Detail: fmt.Sprintf("%s to level %d", pl.Name, next)})
	return protocol.OKf("Upgrade to level %d begun (%d hours)", next, cost.TimeHours)
}

func (w *World) planetQuit(p *Player) string {
	ship := w.ships[p.ShipID]
	if ship == nil || !ship.Flags.OnPlanet() {
		return protocol.Badf("you are not on a planet")
	}
	ship.Flags &^= FlagOnPlanet | FlagInCitadel
	ship.PlanetID = 0
	w.sectorAddPlayer(ship.Sector, p.ID)
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "PLANET_QUIT", Sector: ship.Sector})
	return protocol.OK()
}

func (w *World) planetInfo(p *Player) string {
	ship := w.ships[p.ShipID]
	if ship == nil || !ship.Flags.OnPlanet() {
		return protocol.Badf("you are not on a planet")
	}
	pl := w.planets[ship.PlanetID]
	if pl == nil {
		return protocol.Bad()
	}
	class, _ := w.cats.PlanetClass(pl.Class)
	className := "?"
	if class != nil {
		className = class.Name
	}
	owner := "unclaimed"
	if o := w.players[pl.Owner]; o != nil {
		owner = o.Name
	}
	fields := []string{
		pl.Name,
		"class " + className,
		"owner " + owner,
		fmt.Sprintf("stock %d/%d/%d", pl.Stock[0], pl.Stock[1], pl.Stock[2]),
		fmt.Sprintf("colonists %d/%d/%d", pl.Colonists[0], pl.Colonists[1], pl.Colonists[2]),
		"fighters " + strconv.Itoa(pl.Fighters),
	}
	if cit := pl.Citadel; cit != nil && cit.Level > 0 {
		fields = append(fields, fmt.Sprintf("citadel %d treasury %d shields %d",
			cit.Level, cit.Treasury, cit.Shields))
		if cit.Upgrading() {
			fields = append(fields, fmt.Sprintf("upgrading to %d", cit.UpgradeTo))
		}
	}
	return protocol.OKFields(fields...)
}
