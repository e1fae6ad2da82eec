// Package catalogs loads the immutable template data the simulation shares
// across many entity instances: ship types and planet classes. Loaded once at
// startup from the flat data files; never mutated at runtime.
package catalogs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"os"
	"path/filepath"

	"warptrade.io/internal/persistence/flatfile"
)

// CitadelLevels is the number of citadel upgrade steps a planet class
// defines, indexed 0..6. Level 0 carries zero cost.
const CitadelLevels = 7

type Catalogs struct {
	ShipTypes     []ShipType
	PlanetClasses []PlanetClass

	shipByID  map[int]*ShipType
	classByID map[int]*PlanetClass

	Digest string
}

// ShipType is the immutable template a Ship instantiates.
type ShipType struct {
	ID           int
	Name         string
	Cost         int64
	InitialHolds int
	MaxHolds     int
	MaxFighters  int
	MaxShields   int
	TurnsPerWarp int
}

// PlanetClass is the immutable template a Planet instantiates: capacity
// ceilings, production divisors, breeding rate and per-level citadel costs.
type PlanetClass struct {
	ID   int
	Name string

	MaxStock     [3]int // ore, organics, equipment
	MaxColonists [3]int
	MaxFighters  int

	// Production: one unit per this many colonists per hourly tick.
	ProdDivisor    [3]int
	FighterDivisor int

	// Colonist growth per hourly tick, e.g. 0.005 = 0.5%.
	BreedRate float64

	Citadel [CitadelLevels]CitadelCost
}

// CitadelCost is what one citadel level costs to build.
type CitadelCost struct {
	TimeHours int
	Ore       int
	Organics  int
	Equipment int
	Colonists int
}

func (c *Catalogs) ShipType(id int) (*ShipType, bool) {
	t, ok := c.shipByID[id]
	return t, ok
}

func (c *Catalogs) PlanetClass(id int) (*PlanetClass, bool) {
	p, ok := c.classByID[id]
	return p, ok
}

// New builds a catalog set from already-decoded templates. Load is the
// normal entry point; New exists for generators and tests.
func New(ships []ShipType, classes []PlanetClass) (*Catalogs, error) {
	c := Catalogs{ShipTypes: ships, PlanetClasses: classes}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads shiptypes.data and planettypes.data from dataDir.
func Load(dataDir string) (*Catalogs, error) {
	var c Catalogs
	h := sha256.New()

	if err := loadShipTypes(filepath.Join(dataDir, "shiptypes.data"), &c, h); err != nil {
		return nil, err
	}
	if err := loadPlanetClasses(filepath.Join(dataDir, "planettypes.data"), &c, h); err != nil {
		return nil, err
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	c.Digest = hex.EncodeToString(h.Sum(nil))
	return &c, nil
}

func (c *Catalogs) index() error {
	c.shipByID = make(map[int]*ShipType, len(c.ShipTypes))
	for i := range c.ShipTypes {
		t := &c.ShipTypes[i]
		if _, dup := c.shipByID[t.ID]; dup {
			return fmt.Errorf("shiptypes.data: duplicate ship type id %d", t.ID)
		}
		c.shipByID[t.ID] = t
	}
	c.classByID = make(map[int]*PlanetClass, len(c.PlanetClasses))
	for i := range c.PlanetClasses {
		p := &c.PlanetClasses[i]
		if _, dup := c.classByID[p.ID]; dup {
			return fmt.Errorf("planettypes.data: duplicate planet class id %d", p.ID)
		}
		c.classByID[p.ID] = p
	}
	if len(c.ShipTypes) == 0 {
		return fmt.Errorf("shiptypes.data: no ship types defined")
	}
	if len(c.PlanetClasses) == 0 {
		return fmt.Errorf("planettypes.data: no planet classes defined")
	}
	return nil
}

func loadShipTypes(path string, c *Catalogs, h hash.Hash) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ship types: %w", err)
	}
	_, _ = h.Write(raw)
	recs, err := flatfile.ReadRecords(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for i, rec := range recs {
		f := flatfile.NewFields(rec)
		t := ShipType{
			ID:           f.Int(),
			Name:         f.String(),
			Cost:         f.Int64(),
			InitialHolds: f.Int(),
			MaxHolds:     f.Int(),
			MaxFighters:  f.Int(),
			MaxShields:   f.Int(),
			TurnsPerWarp: f.Int(),
		}
		if err := f.Err(); err != nil {
			return fmt.Errorf("%s: record %d: %w", path, i+1, err)
		}
		if t.TurnsPerWarp < 1 {
			return fmt.Errorf("%s: record %d: turns per warp must be >= 1", path, i+1)
		}
		if t.InitialHolds > t.MaxHolds {
			return fmt.Errorf("%s: record %d: initial holds exceed max holds", path, i+1)
		}
		c.ShipTypes = append(c.ShipTypes, t)
	}
	return nil
}

func loadPlanetClasses(path string, c *Catalogs, h hash.Hash) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read planet classes: %w", err)
	}
	_, _ = h.Write(raw)
	recs, err := flatfile.ReadRecords(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for i, rec := range recs {
		f := flatfile.NewFields(rec)
		p := PlanetClass{
			ID:   f.Int(),
			Name: f.String(),
		}
		for k := 0; k < 3; k++ {
			p.MaxStock[k] = f.Int()
		}
		for k := 0; k < 3; k++ {
			p.MaxColonists[k] = f.Int()
		}
		p.MaxFighters = f.Int()
		for k := 0; k < 3; k++ {
			p.ProdDivisor[k] = f.Int()
		}
		p.FighterDivisor = f.Int()
		p.BreedRate = f.Float()
		for lvl := 0; lvl < CitadelLevels; lvl++ {
			p.Citadel[lvl] = CitadelCost{
				TimeHours: f.Int(),
				Ore:       f.Int(),
				Organics:  f.Int(),
				Equipment: f.Int(),
				Colonists: f.Int(),
			}
		}
		if err := f.Err(); err != nil {
			return fmt.Errorf("%s: record %d: %w", path, i+1, err)
		}
		for k := 0; k < 3; k++ {
			if p.ProdDivisor[k] < 1 {
				return fmt.Errorf("%s: record %d: production divisor must be >= 1", path, i+1)
			}
		}
		if p.FighterDivisor < 1 {
			return fmt.Errorf("%s: record %d: fighter divisor must be >= 1", path, i+1)
		}
		c.PlanetClasses = append(c.PlanetClasses, p)
	}
	return nil
}
