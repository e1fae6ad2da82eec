package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "read_timeout_seconds: 120\ncommands_per_second: 4\ncommand_burst: 8\naudit_log: false\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tn, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.ReadTimeoutSeconds != 120 || tn.CommandsPerSecond != 4 || tn.AuditLog {
		t.Fatalf("unexpected tuning: %+v", tn)
	}
	// Unset keys keep their defaults.
	if tn.MaxLineBytes != Defaults().MaxLineBytes {
		t.Fatalf("max_line_bytes default lost: %+v", tn)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("read_timeout_seconds: -1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error")
	}
}
