package world

import (
	"testing"
)

func TestHourlyTurnRefill(t *testing.T) {
	w, clk := newTestWorld(t)
	p := addTestPlayer(t, w, "Ada", 1)
	p.Turns = 5
	q := addTestPlayer(t, w, "Bob", 1)
	q.Turns = 235

	w.HourlyTick(clk.t)
	if p.Turns != 15 { // +240/24
		t.Fatalf("turns=%d, want 15", p.Turns)
	}
	if q.Turns != 240 {
		t.Fatalf("turns=%d, want the 240 cap", q.Turns)
	}
}

func TestDailyRemainder(t *testing.T) {
	w, clk := newTestWorld(t)
	w.cfg.TurnsPerDay = 250 // remainder 10 over the 24 hourly refills
	p := addTestPlayer(t, w, "Ada", 1)
	p.Turns = 100

	w.DailyTick(clk.t)
	if p.Turns != 110 {
		t.Fatalf("turns=%d, want 110", p.Turns)
	}
	p.Turns = 245
	w.DailyTick(clk.t)
	if p.Turns != 250 {
		t.Fatalf("turns=%d, want the 250 cap", p.Turns)
	}
}

func TestPlanetProductionAndBreeding(t *testing.T) {
	w, clk := newTestWorld(t)
	pl := addTestPlanet(w, 1, 0)
	pl.Colonists = [3]int{1000, 2000, 500}

	w.HourlyTick(clk.t)
	if pl.Stock != [3]int{100, 200, 50} { // colonists / divisor 10
		t.Fatalf("production wrong: %v", pl.Stock)
	}
	if pl.Fighters != 175 { // 3500 total / divisor 20
		t.Fatalf("fighters=%d, want 175", pl.Fighters)
	}
	if pl.Colonists != [3]int{1050, 2100, 525} { // 5% breeding
		t.Fatalf("breeding wrong: %v", pl.Colonists)
	}
}

func TestPlanetTickClampsAtClassMaxima(t *testing.T) {
	w, clk := newTestWorld(t)
	pl := addTestPlanet(w, 1, 0)
	pl.Colonists = [3]int{49999, 50000, 50000}
	pl.Stock = [3]int{9999, 10000, 10000}
	pl.Fighters = 99999

	w.HourlyTick(clk.t)
	class, _ := w.cats.PlanetClass(1)
	for c := 0; c < 3; c++ {
		if pl.Stock[c] > class.MaxStock[c] {
			t.Fatalf("stock[%d]=%d over max", c, pl.Stock[c])
		}
		if pl.Colonists[c] > class.MaxColonists[c] {
			t.Fatalf("colonists[%d]=%d over max", c, pl.Colonists[c])
		}
	}
	if pl.Fighters > class.MaxFighters {
		t.Fatalf("fighters=%d over max", pl.Fighters)
	}
}

func TestTreasuryInterest(t *testing.T) {
	w, clk := newTestWorld(t)
	pl := addTestPlanet(w, 1, 0)
	pl.Citadel = &Citadel{Level: 1, Treasury: 1000}

	w.HourlyTick(clk.t)
	if pl.Citadel.Treasury != 1100 {
		t.Fatalf("treasury=%d, want 1100", pl.Citadel.Treasury)
	}
}

func TestTickSkipsBrokenPlanet(t *testing.T) {
	w, clk := newTestWorld(t)
	broken := addTestPlanet(w, 1, 0)
	broken.Class = 99
	healthy := addTestPlanet(w, 1, 0)
	healthy.Colonists = [3]int{100, 0, 0}

	// The broken record must not stop the healthy one from producing.
	w.HourlyTick(clk.t)
	if healthy.Stock[Ore] != 10 {
		t.Fatalf("healthy planet skipped: %v", healthy.Stock)
	}
}
