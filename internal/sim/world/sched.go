package world

import (
	"context"
	"fmt"
	"time"
)

// Background scheduler. One goroutine for the whole process; every pass
// takes the same world lock the command handlers do, so its mutations are
// linearized with theirs. Per-entity failures log and skip, never abort a
// tick.

// RunScheduler polls until the context ends, firing the hourly pass on each
// hour boundary and the daily catch-up on each day boundary.
func (w *World) RunScheduler(ctx context.Context, poll time.Duration) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	last := w.now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := w.now()
			if now.Truncate(time.Hour).After(last.Truncate(time.Hour)) {
				w.HourlyTick(now)
			}
			if now.Truncate(24 * time.Hour).After(last.Truncate(24 * time.Hour)) {
				w.DailyTick(now)
			}
			last = now
		}
	}
}

// HourlyTick refills turns and advances every planet.
func (w *World) HourlyTick(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	refill := w.cfg.TurnsPerDay / 24
	for _, p := range w.players {
		p.Turns += refill
		if p.Turns > w.cfg.TurnsPerDay {
			p.Turns = w.cfg.TurnsPerDay
		}
	}

	for _, pl := range w.planets {
		if err := w.tickPlanet(pl, now); err != nil {
			w.log.Printf("sched: planet %d (%s): %v", pl.ID, pl.Name, err)
		}
	}
	w.auditWrite(AuditEntry{Action: "TICK_HOURLY"})
}

// DailyTick applies the remainder the 24 hourly passes drop by integer
// division, then re-clamps.
func (w *World) DailyTick(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	remainder := w.cfg.TurnsPerDay % 24
	for _, p := range w.players {
		p.Turns += remainder
		if p.Turns > w.cfg.TurnsPerDay {
			p.Turns = w.cfg.TurnsPerDay
		}
	}
	for _, pl := range w.planets {
		if err := w.clampPlanet(pl); err != nil {
			w.log.Printf("sched: planet %d (%s): %v", pl.ID, pl.Name, err)
		}
	}
	w.auditWrite(AuditEntry{Action: "TICK_DAILY"})
}

// tickPlanet runs one hourly step for a planet: citadel completion,
// production, breeding, treasury interest, clamping.
func (w *World) tickPlanet(pl *Planet, now time.Time) error {
	class, ok := w.cats.PlanetClass(pl.Class)
	if !ok {
		return fmt.Errorf("unknown planet class %d", pl.Class)
	}

	if cit := pl.Citadel; cit.Upgrading() {
		need := time.Duration(class.Citadel[cit.UpgradeTo].TimeHours) * time.Hour
		if now.Sub(cit.UpgradeStart) >= need {
			cit.Level = cit.UpgradeTo
			cit.UpgradeStart = time.Time{}
			cit.UpgradeTo = 0
			if owner := w.players[pl.Owner]; owner != nil {
				owner.Notify(fmt.Sprintf("Citadel on %s is now level %d", pl.Name, cit.Level))
			}
			w.auditWrite(AuditEntry{Action: "CITADEL_DONE", Sector: pl.Sector, Detail: pl.Name})
		}
	}

	// Production: colonists make goods at the class's divisor rates.
	for c := 0; c < 3; c++ {
		pl.Stock[c] += pl.Colonists[c] / class.ProdDivisor[c]
	}
	total := pl.Colonists[0] + pl.Colonists[1] + pl.Colonists[2]
	pl.Fighters += total / class.FighterDivisor

	// Breeding.
	for c := 0; c < 3; c++ {
		pl.Colonists[c] += int(float64(pl.Colonists[c]) * class.BreedRate)
	}

	// Treasury interest.
	if cit := pl.Citadel; cit != nil && cit.Level > 0 {
		cit.Treasury += cit.Treasury / 10
	}

	return w.clampPlanet(pl)
}

// clampPlanet enforces the class ceilings after any mutation path.
func (w *World) clampPlanet(pl *Planet) error {
	class, ok := w.cats.PlanetClass(pl.Class)
	if !ok {
		return fmt.Errorf("unknown planet class %d", pl.Class)
	}
	for c := 0; c < 3; c++ {
		if pl.Stock[c] > class.MaxStock[c] {
			pl.Stock[c] = class.MaxStock[c]
		}
		if pl.Stock[c] < 0 {
			pl.Stock[c] = 0
		}
		if pl.Colonists[c] > class.MaxColonists[c] {
			pl.Colonists[c] = class.MaxColonists[c]
		}
		if pl.Colonists[c] < 0 {
			pl.Colonists[c] = 0
		}
	}
	if pl.Fighters > class.MaxFighters {
		pl.Fighters = class.MaxFighters
	}
	if pl.Fighters < 0 {
		pl.Fighters = 0
	}
	return nil
}
