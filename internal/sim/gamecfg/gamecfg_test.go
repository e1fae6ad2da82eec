package gamecfg

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.data")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, ""+
		"1000:60:20:10:0:240:5:6:1:$2a$10$fakehash:\n"+
		"1:1:500:0:\n"+
		"2:501:900:812:\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StartingCredits != 1000 || cfg.StartingTurns != 60 || cfg.TurnsPerDay != 240 {
		t.Fatalf("header: %+v", cfg)
	}
	if cfg.WarpWaitSeconds != 5 || cfg.MaxCitadelLevel != 6 || cfg.StartSector != 1 {
		t.Fatalf("header: %+v", cfg)
	}
	if len(cfg.Nodes) != 2 || cfg.Nodes[1].HubPort != 812 {
		t.Fatalf("nodes: %+v", cfg.Nodes)
	}

	n, ok := cfg.NodeOf(600)
	if !ok || n.ID != 2 {
		t.Fatalf("NodeOf(600): %+v ok=%v", n, ok)
	}
	if _, ok := cfg.NodeOf(5000); ok {
		t.Fatalf("NodeOf(5000) should miss")
	}
}

func TestLoad_DefaultSingleNode(t *testing.T) {
	p := writeConfig(t, "1000:60:20:10:0:240:5:6:1::\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	n, ok := cfg.NodeOf(123456)
	if !ok || n.ID != 1 {
		t.Fatalf("implicit node: %+v ok=%v", n, ok)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"zero turns":      "1000:0:20:10:0:240:5:6:1:x:\n",
		"bad citadel max": "1000:60:20:10:0:240:5:9:1:x:\n",
		"node overlap":    "1000:60:20:10:0:240:5:6:1:x:\n1:1:500:7:\n2:400:900:8:\n",
		"hubless node":    "1000:60:20:10:0:240:5:6:1:x:\n1:1:500:7:\n2:501:900:0:\n",
		"short header":    "1000:60:20:\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
