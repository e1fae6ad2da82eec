package world

import (
	"fmt"
	"sort"
	"time"

	"warptrade.io/internal/persistence/flatfile"
)

// Save image conversion. Session, negotiation and transit state are runtime
// only: a player saved mid-transit restores at the origin sector with the
// turn unspent.

// Export snapshots the world into a flat-file save image. Records are
// emitted in id order so consecutive saves of an unchanged world are
// byte-identical.
func (w *World) Export() *flatfile.Save {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := &flatfile.Save{}

	for _, id := range sortedKeys(w.sectors) {
		sec := w.sectors[id]
		s.Sectors = append(s.Sectors, flatfile.SectorV1{
			ID: sec.ID, Links: sec.Links, Beacon: sec.Beacon, Region: sec.Region,
		})
	}
	for _, id := range sortedKeys(w.ports) {
		p := w.ports[id]
		s.Ports = append(s.Ports, flatfile.PortV1{
			ID: p.ID, Name: p.Name, Type: p.Type, Sector: p.Sector,
			MaxStock: p.MaxStock, Stock: p.Stock, Credits: p.Credits,
			Invisible: p.Invisible,
		})
	}
	for _, id := range sortedKeys(w.planets) {
		pl := w.planets[id]
		v := flatfile.PlanetV1{
			ID: pl.ID, Name: pl.Name, Owner: pl.Owner, Sector: pl.Sector,
			Class: pl.Class, Colonists: pl.Colonists, Stock: pl.Stock,
			Fighters: pl.Fighters,
		}
		if cit := pl.Citadel; cit != nil {
			v.CitadelLevel = cit.Level
			v.Treasury = cit.Treasury
			v.CitShields = cit.Shields
			v.UpgradeTo = cit.UpgradeTo
			if !cit.UpgradeStart.IsZero() {
				v.UpgradeStartSec = cit.UpgradeStart.Unix()
			}
		}
		s.Planets = append(s.Planets, v)
	}
	for _, id := range sortedKeys(w.ships) {
		sh := w.ships[id]
		s.Ships = append(s.Ships, flatfile.ShipV1{
			ID: sh.ID, Name: sh.Name, Type: sh.Type, Sector: sh.Sector,
			Owner: sh.Owner, Cargo: sh.Cargo, Colonists: sh.Colonists,
			Fighters: sh.Fighters, Shields: sh.Shields, Holds: sh.Holds,
			Flags: int(sh.Flags), PlanetID: sh.PlanetID,
		})
	}
	for _, id := range sortedKeys(w.players) {
		p := w.players[id]
		s.Players = append(s.Players, flatfile.PlayerV1{
			ID: p.ID, Name: p.Name, PassHash: p.PassHash,
			Sector: p.Sector, ShipID: p.ShipID,
			Experience: p.Experience, Alignment: p.Alignment, Turns: p.Turns,
			Credits: p.Credits, Bank: p.Bank,
		})
	}
	return s
}

// Restore replaces the entire entity store with a save image and rebuilds
// every derived index: name maps, id counters and sector occupancy. Fails
// without mutating anything if the image is internally inconsistent.
func (w *World) Restore(s *flatfile.Save) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	sectors := make(map[int]*Sector, len(s.Sectors))
	for _, v := range s.Sectors {
		if _, dup := sectors[v.ID]; dup {
			return fmt.Errorf("duplicate sector %d", v.ID)
		}
		sectors[v.ID] = &Sector{
			ID: v.ID, Links: v.Links, Beacon: v.Beacon, Region: v.Region,
			Players: map[int]struct{}{}, Ships: map[int]struct{}{},
		}
	}
	for _, sec := range sectors {
		linked := false
		for _, l := range sec.Links {
			if l != 0 && sectors[l] == nil {
				return fmt.Errorf("sector %d links to missing sector %d", sec.ID, l)
			}
			if l != 0 {
				linked = true
			}
		}
		if !linked {
			return fmt.Errorf("sector %d has no outgoing links", sec.ID)
		}
	}

	ports := make(map[int]*Port, len(s.Ports))
	for _, v := range s.Ports {
		sec := sectors[v.Sector]
		if sec == nil {
			return fmt.Errorf("port %d in missing sector %d", v.ID, v.Sector)
		}
		if sec.PortID != 0 {
			return fmt.Errorf("sector %d has two ports", v.Sector)
		}
		ports[v.ID] = &Port{
			ID: v.ID, Name: v.Name, Type: v.Type, Sector: v.Sector,
			MaxStock: v.MaxStock, Stock: v.Stock, Credits: v.Credits,
			Invisible: v.Invisible,
		}
		sec.PortID = v.ID
	}

	planets := make(map[int]*Planet, len(s.Planets))
	nextPlanet := 0
	for _, v := range s.Planets {
		sec := sectors[v.Sector]
		if sec == nil {
			return fmt.Errorf("planet %d in missing sector %d", v.ID, v.Sector)
		}
		pl := &Planet{
			ID: v.ID, Name: v.Name, Owner: v.Owner, Sector: v.Sector,
			Class: v.Class, Colonists: v.Colonists, Stock: v.Stock,
			Fighters: v.Fighters,
		}
		if v.CitadelLevel > 0 || v.UpgradeTo > 0 {
			cit := &Citadel{
				Level: v.CitadelLevel, Treasury: v.Treasury, Shields: v.CitShields,
				UpgradeTo: v.UpgradeTo,
			}
			if v.UpgradeStartSec > 0 {
				cit.UpgradeStart = time.Unix(v.UpgradeStartSec, 0)
			}
			pl.Citadel = cit
		}
		planets[pl.ID] = pl
		sec.Planets = append(sec.Planets, pl.ID)
		if pl.ID > nextPlanet {
			nextPlanet = pl.ID
		}
	}

	ships := make(map[int]*Ship, len(s.Ships))
	shipNames := make(map[string]int, len(s.Ships))
	nextShip := 0
	for _, v := range s.Ships {
		if sectors[v.Sector] == nil {
			return fmt.Errorf("ship %d in missing sector %d", v.ID, v.Sector)
		}
		if _, dup := shipNames[v.Name]; dup {
			return fmt.Errorf("duplicate ship name %q", v.Name)
		}
		ships[v.ID] = &Ship{
			ID: v.ID, Name: v.Name, Type: v.Type, Sector: v.Sector,
			Owner: v.Owner, Cargo: v.Cargo, Colonists: v.Colonists,
			Fighters: v.Fighters, Shields: v.Shields, Holds: v.Holds,
			Flags: ShipFlags(v.Flags), PlanetID: v.PlanetID,
		}
		shipNames[v.Name] = v.ID
		if v.ID > nextShip {
			nextShip = v.ID
		}
	}

	players := make(map[int]*Player, len(s.Players))
	playerNames := make(map[string]int, len(s.Players))
	nextPlayer := 0
	for _, v := range s.Players {
		if _, dup := playerNames[v.Name]; dup {
			return fmt.Errorf("duplicate player name %q", v.Name)
		}
		if v.ShipID != 0 && ships[v.ShipID] == nil {
			return fmt.Errorf("player %q owns missing ship %d", v.Name, v.ShipID)
		}
		players[v.ID] = &Player{
			ID: v.ID, Name: v.Name, PassHash: v.PassHash,
			Sector: v.Sector, ShipID: v.ShipID,
			Experience: v.Experience, Alignment: v.Alignment, Turns: v.Turns,
			Credits: v.Credits, Bank: v.Bank,
			TradeCommodity: -1,
		}
		playerNames[v.Name] = v.ID
		if v.ID > nextPlayer {
			nextPlayer = v.ID
		}
	}

	// Occupancy: owned, undocked ships put their player in open space;
	// ownerless ships sit derelict.
	for _, sh := range ships {
		if sh.Owner == 0 {
			w2 := sectors[sh.Sector]
			w2.Ships[sh.ID] = struct{}{}
			continue
		}
		p := players[sh.Owner]
		if p == nil {
			return fmt.Errorf("ship %q owned by missing player %d", sh.Name, sh.Owner)
		}
		if p.Sector == 0 && !sh.Flags.Docked() {
			sectors[sh.Sector].Players[p.ID] = struct{}{}
		}
	}

	w.sectors = sectors
	w.ports = ports
	w.planets = planets
	w.ships = ships
	w.players = players
	w.playerNames = playerNames
	w.shipNames = shipNames
	w.nextPlanet = nextPlanet
	w.nextShip = nextShip
	w.nextPlayer = nextPlayer
	w.log.Printf("restored world: %d sectors, %d ports, %d planets, %d ships, %d players",
		len(sectors), len(ports), len(planets), len(ships), len(players))
	return nil
}

// SaveDir writes the current world image to dir.
func (w *World) SaveDir(dir string) error {
	img := w.Export()
	if err := flatfile.WriteDir(dir, img); err != nil {
		return err
	}
	w.log.Printf("saved world to %s", dir)
	return nil
}

// LoadDir restores the world from the save files in dir.
func (w *World) LoadDir(dir string) error {
	img, err := flatfile.ReadDir(dir)
	if err != nil {
		return err
	}
	return w.Restore(img)
}

func sortedKeys[V any](m map[int]V) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
