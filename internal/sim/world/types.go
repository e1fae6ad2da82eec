package world

import "time"

// Commodity indexes. Every per-commodity array in the store is ordered this
// way, matching the field order of the flat data files.
const (
	Ore = iota
	Organics
	Equipment
)

var commodityNames = [3]string{"Ore", "Organics", "Equipment"}

// CommodityName returns the display name for a commodity index.
func CommodityName(c int) string {
	if c < 0 || c > 2 {
		return "?"
	}
	return commodityNames[c]
}

// Port types 0..8 trade commodities; bit N set means the port SELLS
// commodity N, clear means it BUYS it. 9 and 10 are special stations.
const (
	PortTypeStardock = 9
	PortTypeNodeHub  = 10
)

// Sector is a node in the warp graph. Links are immutable after galaxy
// generation; the occupant sets mutate continuously.
type Sector struct {
	ID     int
	Links  [6]int // 0 = unused slot
	Beacon string
	Region string

	PortID  int   // 0 = none
	Planets []int // planet ids, insertion order

	Players map[int]struct{} // players visible in open space
	Ships   map[int]struct{} // unmanned ships adrift here
}

// LinkTo reports whether s has a direct warp to target.
func (s *Sector) LinkTo(target int) bool {
	for _, l := range s.Links {
		if l == target && l != 0 {
			return true
		}
	}
	return false
}

// LinkList returns the non-empty links in slot order.
func (s *Sector) LinkList() []int {
	out := make([]int, 0, 6)
	for _, l := range s.Links {
		if l != 0 {
			out = append(out, l)
		}
	}
	return out
}

// Port is an NPC trading post. Credits act as its wallet and cap what it can
// pay out.
type Port struct {
	ID        int
	Name      string
	Type      int
	MaxStock  [3]int
	Stock     [3]int
	Credits   int64
	Invisible bool
	Sector    int
}

// Sells reports whether the port currently sells commodity c to players.
func (p *Port) Sells(c int) bool {
	if p.Type > 8 {
		return false
	}
	return p.Type&(1<<c) != 0
}

// Buys reports whether the port currently buys commodity c from players.
func (p *Port) Buys(c int) bool {
	if p.Type > 8 {
		return false
	}
	return p.Type&(1<<c) == 0
}

// Planet is a claimable resource-producing body.
type Planet struct {
	ID        int
	Name      string
	Owner     int // player id, 0 = unclaimed
	Sector    int
	Class     int // planet class id
	Colonists [3]int
	Stock     [3]int
	Fighters  int
	Citadel   *Citadel // nil = none
}

// Citadel is the planet-side structure unlocking banking, defense and
// transport, upgraded through levels.
type Citadel struct {
	Level        int
	Treasury     int64
	Reaction     int
	QCannon      int
	Shields      int
	Transporter  int
	Interdictor  int
	UpgradeStart time.Time // zero = no upgrade in progress
	UpgradeTo    int
}

// Upgrading reports whether a level upgrade is in flight.
func (c *Citadel) Upgrading() bool { return c != nil && !c.UpgradeStart.IsZero() }

// ShipFlags is the docked/landed status of a ship.
type ShipFlags uint8

const (
	FlagPorted ShipFlags = 1 << iota
	FlagOnStardock
	FlagOnNode
	FlagOnPlanet
	FlagInCitadel
)

func (f ShipFlags) Ported() bool     { return f&FlagPorted != 0 }
func (f ShipFlags) OnStardock() bool { return f&FlagOnStardock != 0 }
func (f ShipFlags) OnNode() bool     { return f&FlagOnNode != 0 }
func (f ShipFlags) OnPlanet() bool   { return f&FlagOnPlanet != 0 }
func (f ShipFlags) InCitadel() bool  { return f&FlagInCitadel != 0 }

// Docked reports whether the ship is attached to anything that hides it from
// the open sector view.
func (f ShipFlags) Docked() bool { return f != 0 }

// Ship physically occupies a sector. A ship with Owner 0 sits derelict.
type Ship struct {
	ID        int
	Name      string // globally unique
	Type      int    // ship type id
	Sector    int
	Owner     int // player id, 0 = unowned
	Cargo     [3]int
	Colonists [3]int
	Fighters  int
	Shields   int
	Holds     int
	Flags     ShipFlags
	PlanetID  int // set while landed
}

// CargoUsed is how many holds are occupied by cargo and colonists.
func (s *Ship) CargoUsed() int {
	n := 0
	for c := 0; c < 3; c++ {
		n += s.Cargo[c] + s.Colonists[c]
	}
	return n
}

// HoldsFree is remaining cargo capacity.
func (s *Ship) HoldsFree() int { return s.Holds - s.CargoUsed() }

// Player location: Sector nonzero means the player walks around a planet or
// station in that sector; zero means embodied in their ship, whose Sector is
// then authoritative.
type Player struct {
	ID       int
	Name     string // globally unique
	PassHash string
	Sector   int
	ShipID   int

	Experience int
	Alignment  int
	Turns      int
	Credits    int64
	Bank       int64

	LoggedIn bool

	// Trade negotiation state, reset when a trade concludes or the
	// commodity changes.
	TradeCommodity int // -1 = none
	TradeQty       int
	FirstOffer     float64
	LastOffer      float64

	// Transit state.
	InTransit    bool
	TransitTo    int
	TransitStart time.Time

	// Pending realtime notifications, drained by UPDATE.
	Msgs []string

	// Memoized planet class from a GENESIS preview, consumed on confirm.
	GenesisClass int // 0 = no preview pending
}

// ResetTrade clears any in-flight negotiation.
func (p *Player) ResetTrade() {
	p.TradeCommodity = -1
	p.TradeQty = 0
	p.FirstOffer = 0
	p.LastOffer = 0
}

// Notify queues a realtime message for the player's next UPDATE poll.
func (p *Player) Notify(msg string) {
	p.Msgs = append(p.Msgs, msg)
}
