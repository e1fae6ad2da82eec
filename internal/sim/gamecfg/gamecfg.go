// Package gamecfg loads config.data: the game-rule constants and the node
// partition table. These numbers are game economics, not server tuning, and
// are deliberately kept out of tuning.yaml.
package gamecfg

import (
	"fmt"
	"os"

	"warptrade.io/internal/persistence/flatfile"
)

type Config struct {
	StartingCredits  int64
	StartingTurns    int
	StartingHolds    int
	StartingFighters int
	StartingShields  int
	TurnsPerDay      int
	WarpWaitSeconds  int
	MaxCitadelLevel  int
	StartSector      int

	// Bcrypt hash of the sysop console password. Empty disables SYSOP.
	SysopPassHash string

	Nodes []Node
}

// Node is a contiguous partition [Min,Max] of the sector id space. Every
// node except a single default one designates a type-10 hub port.
type Node struct {
	ID      int
	Min     int
	Max     int
	HubPort int
}

// NodeOf resolves which node a sector belongs to. With no node table the
// whole galaxy is one implicit node.
func (c *Config) NodeOf(sector int) (Node, bool) {
	if len(c.Nodes) == 0 {
		return Node{ID: 1, Min: 1, Max: 1 << 30}, true
	}
	for _, n := range c.Nodes {
		if sector >= n.Min && sector <= n.Max {
			return n, true
		}
	}
	return Node{}, false
}

// Load parses config.data: one header record followed by zero or more node
// records.
func Load(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("read game config: %w", err)
	}
	defer f.Close()

	recs, err := flatfile.ReadRecords(f)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if len(recs) == 0 {
		return cfg, fmt.Errorf("%s: empty config", path)
	}

	h := flatfile.NewFields(recs[0])
	cfg.StartingCredits = h.Int64()
	cfg.StartingTurns = h.Int()
	cfg.StartingHolds = h.Int()
	cfg.StartingFighters = h.Int()
	cfg.StartingShields = h.Int()
	cfg.TurnsPerDay = h.Int()
	cfg.WarpWaitSeconds = h.Int()
	cfg.MaxCitadelLevel = h.Int()
	cfg.StartSector = h.Int()
	cfg.SysopPassHash = h.String()
	if err := h.Err(); err != nil {
		return cfg, fmt.Errorf("%s: header: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	for i, rec := range recs[1:] {
		f := flatfile.NewFields(rec)
		n := Node{ID: f.Int(), Min: f.Int(), Max: f.Int(), HubPort: f.Int()}
		if err := f.Err(); err != nil {
			return cfg, fmt.Errorf("%s: node record %d: %w", path, i+1, err)
		}
		if n.Min > n.Max {
			return cfg, fmt.Errorf("%s: node record %d: min > max", path, i+1)
		}
		cfg.Nodes = append(cfg.Nodes, n)
	}
	if len(cfg.Nodes) > 1 {
		for i, n := range cfg.Nodes {
			if n.HubPort == 0 {
				return cfg, fmt.Errorf("%s: node %d has no hub port", path, n.ID)
			}
			for _, m := range cfg.Nodes[:i] {
				if n.Min <= m.Max && m.Min <= n.Max {
					return cfg, fmt.Errorf("%s: nodes %d and %d overlap", path, m.ID, n.ID)
				}
			}
		}
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StartingTurns <= 0 || c.TurnsPerDay <= 0 {
		return fmt.Errorf("turn allowances must be positive")
	}
	if c.WarpWaitSeconds < 0 {
		return fmt.Errorf("warp wait must not be negative")
	}
	if c.MaxCitadelLevel < 0 || c.MaxCitadelLevel > 6 {
		return fmt.Errorf("max citadel level out of range 0..6")
	}
	if c.StartSector <= 0 {
		return fmt.Errorf("start sector must be positive")
	}
	return nil
}
