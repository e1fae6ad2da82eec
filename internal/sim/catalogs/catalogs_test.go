package catalogs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	c, err := Load("testdata")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.ShipTypes) != 3 {
		t.Fatalf("ship types=%d want 3", len(c.ShipTypes))
	}
	if len(c.PlanetClasses) != 2 {
		t.Fatalf("planet classes=%d want 2", len(c.PlanetClasses))
	}
	if c.Digest == "" {
		t.Fatalf("missing digest")
	}

	st, ok := c.ShipType(1)
	if !ok {
		t.Fatalf("ship type 1 missing")
	}
	if st.Name != "Merchant Cruiser" || st.Cost != 41300 || st.TurnsPerWarp != 3 {
		t.Fatalf("ship type 1: %+v", st)
	}

	pc, ok := c.PlanetClass(1)
	if !ok {
		t.Fatalf("planet class 1 missing")
	}
	if pc.MaxStock != [3]int{100000, 100000, 100000} {
		t.Fatalf("class 1 max stock: %v", pc.MaxStock)
	}
	if pc.BreedRate != 0.005 {
		t.Fatalf("class 1 breed rate: %v", pc.BreedRate)
	}
	if pc.Citadel[1].TimeHours != 4 || pc.Citadel[1].Colonists != 1000 {
		t.Fatalf("class 1 level 1 cost: %+v", pc.Citadel[1])
	}
	if pc.Citadel[6].Ore != 8800 {
		t.Fatalf("class 1 level 6 cost: %+v", pc.Citadel[6])
	}
}

func TestLoad_RejectsBadRecords(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	good, err := os.ReadFile(filepath.Join("testdata", "planettypes.data"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	write("shiptypes.data", "1:Tub:100:ten:20:5:5:1:\n")
	write("planettypes.data", string(good))
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error for non-numeric holds")
	}

	write("shiptypes.data", "1:Tub:100:10:20:5:5:0:\n")
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error for zero turns per warp")
	}

	write("shiptypes.data", "1:Tub:100:10:20:5:5:1:\n1:Tub II:100:10:20:5:5:1:\n")
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error for duplicate id")
	}
}

func TestNew_IndexesTemplates(t *testing.T) {
	c, err := New(
		[]ShipType{{ID: 7, Name: "Probe", Cost: 1, InitialHolds: 1, MaxHolds: 1, TurnsPerWarp: 1}},
		[]PlanetClass{{ID: 3, Name: "Rock", ProdDivisor: [3]int{1, 1, 1}, FighterDivisor: 1}},
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := c.ShipType(7); !ok {
		t.Fatalf("ship type 7 missing")
	}
	if _, ok := c.PlanetClass(3); !ok {
		t.Fatalf("planet class 3 missing")
	}
}
