// Command bigbang seeds a fresh galaxy: it builds a random warp graph inside
// each node's sector range, scatters trading ports, places the stardock and
// the hub ports named by config.data, and writes the save directory the
// server loads on boot. One shot, offline; rerunning overwrites the universe.
package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"warptrade.io/internal/persistence/flatfile"
	"warptrade.io/internal/sim/catalogs"
	"warptrade.io/internal/sim/gamecfg"
	"warptrade.io/internal/sim/world"
)

func main() {
	var (
		configDir = flag.String("configs", "./configs", "config directory (config.data names the node table)")
		outDir    = flag.String("out", "./data", "output save directory")
		seed      = flag.Int64("seed", 1, "galaxy seed")
		portRate  = flag.Int("port_rate", 3, "one port per this many sectors")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bigbang] ", log.LstdFlags)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	cfg, err := gamecfg.Load(filepath.Join(*configDir, "config.data"))
	if err != nil {
		logger.Fatalf("load game config: %v", err)
	}
	if len(cfg.Nodes) == 0 {
		logger.Fatalf("config.data has no node table; bigbang needs sector ranges to fill")
	}
	for _, n := range cfg.Nodes {
		if n.Min == n.Max {
			logger.Fatalf("node %d is a single sector; nothing to warp-link it to", n.ID)
		}
	}

	rng := rand.New(rand.NewSource(*seed))
	save := generate(cfg, rng, *portRate)

	// Restore into a throwaway world first so a generator bug can never
	// produce a universe the server refuses to load.
	w := world.New(cfg, cats, logger)
	if err := w.Restore(save); err != nil {
		logger.Fatalf("generated universe failed validation: %v", err)
	}

	if err := flatfile.WriteDir(*outDir, save); err != nil {
		logger.Fatalf("write save: %v", err)
	}
	logger.Printf("created %d sectors, %d ports in %s", len(save.Sectors), len(save.Ports), *outDir)
}

func generate(cfg gamecfg.Config, rng *rand.Rand, portRate int) *flatfile.Save {
	s := &flatfile.Save{}

	for _, n := range cfg.Nodes {
		generateNode(s, n, rng)
	}

	// Trading ports, spread across the whole galaxy. Ids above the hub
	// range so they never collide with the port ids config.data names.
	nextPort := 1
	for _, n := range cfg.Nodes {
		if n.HubPort >= nextPort {
			nextPort = n.HubPort + 1
		}
	}
	taken := map[int]bool{}
	for _, n := range cfg.Nodes {
		span := n.Max - n.Min + 1
		count := span / portRate
		for i := 0; i < count; i++ {
			sec := n.Min + rng.Intn(span)
			if sec == cfg.StartSector || taken[sec] {
				continue
			}
			taken[sec] = true
			s.Ports = append(s.Ports, randomPort(nextPort, sec, rng))
			nextPort++
		}
	}

	// Stardock: one per galaxy, in the first node, never on the start
	// sector or an existing port.
	first := cfg.Nodes[0]
	dock := first.Min + rng.Intn(first.Max-first.Min+1)
	for dock == cfg.StartSector || taken[dock] {
		dock = first.Min + rng.Intn(first.Max-first.Min+1)
	}
	taken[dock] = true
	s.Ports = append(s.Ports, flatfile.PortV1{
		ID:     nextPort,
		Name:   "Stardock",
		Type:   9,
		Sector: dock,
	})
	nextPort++

	// Hub ports, with the exact ids the node table promises.
	for _, n := range cfg.Nodes {
		if n.HubPort == 0 {
			continue
		}
		sec := n.Min + rng.Intn(n.Max-n.Min+1)
		for sec == cfg.StartSector || taken[sec] {
			sec = n.Min + rng.Intn(n.Max-n.Min+1)
		}
		taken[sec] = true
		s.Ports = append(s.Ports, flatfile.PortV1{
			ID:     n.HubPort,
			Name:   "Hub " + name(n.ID, rng),
			Type:   10,
			Sector: sec,
		})
	}
	return s
}

// generateNode fills one node's sector range: a spanning chain so every
// sector is reachable, then random extra warps for shortcuts. Warps never
// cross a node boundary; that is what hubs are for.
func generateNode(s *flatfile.Save, n gamecfg.Node, rng *rand.Rand) {
	for id := n.Min; id <= n.Max; id++ {
		sec := flatfile.SectorV1{ID: id}
		k := 0
		if id > n.Min {
			sec.Links[k] = id - 1
			k++
		}
		if id < n.Max {
			sec.Links[k] = id + 1
			k++
		}
		s.Sectors = append(s.Sectors, sec)
	}
	base := len(s.Sectors) - (n.Max - n.Min + 1)
	extra := (n.Max - n.Min + 1) / 2
	for i := 0; i < extra; i++ {
		a := n.Min + rng.Intn(n.Max-n.Min+1)
		b := n.Min + rng.Intn(n.Max-n.Min+1)
		if a == b {
			continue
		}
		link(&s.Sectors[base+a-n.Min], b)
		link(&s.Sectors[base+b-n.Min], a)
	}
}

func link(sec *flatfile.SectorV1, to int) {
	for k, l := range sec.Links {
		if l == to {
			return
		}
		if l == 0 {
			sec.Links[k] = to
			return
		}
	}
}

func randomPort(id, sector int, rng *rand.Rand) flatfile.PortV1 {
	p := flatfile.PortV1{
		ID:      id,
		Name:    "Port " + name(id, rng),
		Type:    1 + rng.Intn(7), // 1..7: at least one commodity sold
		Sector:  sector,
		Credits: 1_000_000,
		// A few hidden outposts per galaxy; they never show in scans.
		Invisible: rng.Intn(20) == 0,
	}
	for c := 0; c < 3; c++ {
		p.MaxStock[c] = 1000 + rng.Intn(2000)
		if p.Type&(1<<c) != 0 {
			// Sells this commodity: starts well stocked.
			p.Stock[c] = p.MaxStock[c] - rng.Intn(p.MaxStock[c]/4)
		} else {
			p.Stock[c] = rng.Intn(p.MaxStock[c] / 4)
		}
	}
	return p
}

var nameParts = [...]string{
	"Ceres", "Vega", "Altair", "Rigel", "Orion", "Lyra", "Deneb", "Antares",
	"Castor", "Pollux", "Sirius", "Procyon", "Arcturus", "Capella", "Mira",
}

func name(salt int, rng *rand.Rand) string {
	base := nameParts[rng.Intn(len(nameParts))]
	if salt > len(nameParts) {
		return base + " " + strconv.Itoa(1+rng.Intn(99))
	}
	return base
}
