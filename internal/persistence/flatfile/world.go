package flatfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// File names inside a save directory. universe.data carries the warp graph,
// the others one entity kind each.
const (
	UniverseFile = "universe.data"
	PortsFile    = "ports.data"
	PlanetsFile  = "planets.data"
	ShipsFile    = "ships.data"
	PlayersFile  = "players.data"
)

// SectorV1 is one warp-graph node record.
type SectorV1 struct {
	ID     int
	Links  [6]int
	Beacon string
	Region string
}

// PortV1 is one trading post record. Invisible ports exist in the data but
// never show up in sector scans.
type PortV1 struct {
	ID        int
	Name      string
	Type      int
	Sector    int
	MaxStock  [3]int
	Stock     [3]int
	Credits   int64
	Invisible bool
}

// PlanetV1 is one planet record; the citadel rides along in the same line,
// level 0 meaning none.
type PlanetV1 struct {
	ID        int
	Name      string
	Owner     int
	Sector    int
	Class     int
	Colonists [3]int
	Stock     [3]int
	Fighters  int

	CitadelLevel    int
	Treasury        int64
	CitShields      int
	UpgradeTo       int
	UpgradeStartSec int64 // unix seconds, 0 = no upgrade running
}

// ShipV1 is one ship record.
type ShipV1 struct {
	ID        int
	Name      string
	Type      int
	Sector    int
	Owner     int
	Cargo     [3]int
	Colonists [3]int
	Fighters  int
	Shields   int
	Holds     int
	Flags     int
	PlanetID  int
}

// PlayerV1 is one player record. Session and negotiation state is runtime
// only and never written.
type PlayerV1 struct {
	ID         int
	Name       string
	PassHash   string
	Sector     int
	ShipID     int
	Experience int
	Alignment  int
	Turns      int
	Credits    int64
	Bank       int64
}

// Save is a whole world image, ready to be written or just read.
type Save struct {
	Sectors []SectorV1
	Ports   []PortV1
	Planets []PlanetV1
	Ships   []ShipV1
	Players []PlayerV1
}

func (s SectorV1) record() Record {
	b := new(RecordBuilder).Int(s.ID)
	for _, l := range s.Links {
		b.Int(l)
	}
	return b.String(s.Beacon).String(s.Region).Record()
}

func sectorFromRecord(rec Record) (SectorV1, error) {
	f := NewFields(rec)
	var s SectorV1
	s.ID = f.Int()
	for k := range s.Links {
		s.Links[k] = f.Int()
	}
	s.Beacon = f.String()
	s.Region = f.String()
	return s, f.Done()
}

func (p PortV1) record() Record {
	b := new(RecordBuilder).Int(p.ID).String(p.Name).Int(p.Type).Int(p.Sector)
	for k := 0; k < 3; k++ {
		b.Int(p.MaxStock[k])
	}
	for k := 0; k < 3; k++ {
		b.Int(p.Stock[k])
	}
	return b.Int64(p.Credits).Bool(p.Invisible).Record()
}

func portFromRecord(rec Record) (PortV1, error) {
	f := NewFields(rec)
	var p PortV1
	p.ID = f.Int()
	p.Name = f.String()
	p.Type = f.Int()
	p.Sector = f.Int()
	for k := 0; k < 3; k++ {
		p.MaxStock[k] = f.Int()
	}
	for k := 0; k < 3; k++ {
		p.Stock[k] = f.Int()
	}
	p.Credits = f.Int64()
	p.Invisible = f.Bool()
	return p, f.Done()
}

func (p PlanetV1) record() Record {
	b := new(RecordBuilder).Int(p.ID).String(p.Name).Int(p.Owner).Int(p.Sector).Int(p.Class)
	for k := 0; k < 3; k++ {
		b.Int(p.Colonists[k])
	}
	for k := 0; k < 3; k++ {
		b.Int(p.Stock[k])
	}
	return b.Int(p.Fighters).
		Int(p.CitadelLevel).Int64(p.Treasury).Int(p.CitShields).
		Int(p.UpgradeTo).Int64(p.UpgradeStartSec).Record()
}

func planetFromRecord(rec Record) (PlanetV1, error) {
	f := NewFields(rec)
	var p PlanetV1
	p.ID = f.Int()
	p.Name = f.String()
	p.Owner = f.Int()
	p.Sector = f.Int()
	p.Class = f.Int()
	for k := 0; k < 3; k++ {
		p.Colonists[k] = f.Int()
	}
	for k := 0; k < 3; k++ {
		p.Stock[k] = f.Int()
	}
	p.Fighters = f.Int()
	p.CitadelLevel = f.Int()
	p.Treasury = f.Int64()
	p.CitShields = f.Int()
	p.UpgradeTo = f.Int()
	p.UpgradeStartSec = f.Int64()
	return p, f.Done()
}

func (s ShipV1) record() Record {
	b := new(RecordBuilder).Int(s.ID).String(s.Name).Int(s.Type).Int(s.Sector).Int(s.Owner)
	for k := 0; k < 3; k++ {
		b.Int(s.Cargo[k])
	}
	for k := 0; k < 3; k++ {
		b.Int(s.Colonists[k])
	}
	return b.Int(s.Fighters).Int(s.Shields).Int(s.Holds).Int(s.Flags).Int(s.PlanetID).Record()
}

func shipFromRecord(rec Record) (ShipV1, error) {
	f := NewFields(rec)
	var s ShipV1
	s.ID = f.Int()
	s.Name = f.String()
	s.Type = f.Int()
	s.Sector = f.Int()
	s.Owner = f.Int()
	for k := 0; k < 3; k++ {
		s.Cargo[k] = f.Int()
	}
	for k := 0; k < 3; k++ {
		s.Colonists[k] = f.Int()
	}
	s.Fighters = f.Int()
	s.Shields = f.Int()
	s.Holds = f.Int()
	s.Flags = f.Int()
	s.PlanetID = f.Int()
	return s, f.Done()
}

func (p PlayerV1) record() Record {
	return new(RecordBuilder).
		Int(p.ID).String(p.Name).String(p.PassHash).Int(p.Sector).Int(p.ShipID).
		Int(p.Experience).Int(p.Alignment).Int(p.Turns).
		Int64(p.Credits).Int64(p.Bank).Record()
}

func playerFromRecord(rec Record) (PlayerV1, error) {
	f := NewFields(rec)
	var p PlayerV1
	p.ID = f.Int()
	p.Name = f.String()
	p.PassHash = f.String()
	p.Sector = f.Int()
	p.ShipID = f.Int()
	p.Experience = f.Int()
	p.Alignment = f.Int()
	p.Turns = f.Int()
	p.Credits = f.Int64()
	p.Bank = f.Int64()
	return p, f.Done()
}

// WriteDir rewrites every save file in dir from s. Each file is written to a
// temp name first and renamed into place so a crash mid-save leaves the old
// image intact.
func WriteDir(dir string, s *Save) error {
	if err := writeFile(dir, UniverseFile, len(s.Sectors), func(i int) Record { return s.Sectors[i].record() }); err != nil {
		return err
	}
	if err := writeFile(dir, PortsFile, len(s.Ports), func(i int) Record { return s.Ports[i].record() }); err != nil {
		return err
	}
	if err := writeFile(dir, PlanetsFile, len(s.Planets), func(i int) Record { return s.Planets[i].record() }); err != nil {
		return err
	}
	if err := writeFile(dir, ShipsFile, len(s.Ships), func(i int) Record { return s.Ships[i].record() }); err != nil {
		return err
	}
	return writeFile(dir, PlayersFile, len(s.Players), func(i int) Record { return s.Players[i].record() })
}

func writeFile(dir, name string, n int, rec func(int) Record) error {
	recs := make([]Record, n)
	for i := 0; i < n; i++ {
		recs[i] = rec(i)
	}
	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := WriteRecords(f, recs); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%s: %w", name, err)
	}
	return os.Rename(tmp, path)
}

// ReadDir loads a whole save image. Missing ship, planet and player files
// are treated as empty so a freshly generated galaxy loads cleanly; the
// universe and port files are mandatory.
func ReadDir(dir string) (*Save, error) {
	s := &Save{}
	err := readFile(dir, UniverseFile, true, func(rec Record) error {
		v, err := sectorFromRecord(rec)
		if err == nil {
			s.Sectors = append(s.Sectors, v)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readFile(dir, PortsFile, true, func(rec Record) error {
		v, err := portFromRecord(rec)
		if err == nil {
			s.Ports = append(s.Ports, v)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readFile(dir, PlanetsFile, false, func(rec Record) error {
		v, err := planetFromRecord(rec)
		if err == nil {
			s.Planets = append(s.Planets, v)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readFile(dir, ShipsFile, false, func(rec Record) error {
		v, err := shipFromRecord(rec)
		if err == nil {
			s.Ships = append(s.Ships, v)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readFile(dir, PlayersFile, false, func(rec Record) error {
		v, err := playerFromRecord(rec)
		if err == nil {
			s.Players = append(s.Players, v)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func readFile(dir, name string, required bool, add func(Record) error) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	defer f.Close()
	recs, err := ReadRecords(f)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for i, rec := range recs {
		if err := add(rec); err != nil {
			return fmt.Errorf("%s: record %d: %w", name, i+1, err)
		}
	}
	return nil
}
