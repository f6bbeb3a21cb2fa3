package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/var/lib/ledgerctl/store.json")

	if cfg.Type != "ledgerctl" {
		t.Errorf("Type = %q, want %q", cfg.Type, "ledgerctl")
	}
	if cfg.Version != CurrentConfigVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentConfigVersion)
	}
	if cfg.StorePath != "/var/lib/ledgerctl/store.json" {
		t.Errorf("StorePath = %q, want the path passed in", cfg.StorePath)
	}
	if cfg.ChangeFeedLimit <= 0 {
		t.Errorf("ChangeFeedLimit = %d, want a positive default page size", cfg.ChangeFeedLimit)
	}
	if cfg.GC.MaxVersions <= 0 {
		t.Errorf("GC.MaxVersions = %d, want a positive default", cfg.GC.MaxVersions)
	}
	if cfg.GC.MaxAge != "" {
		t.Errorf("GC.MaxAge = %q, want empty (no age cutoff by default)", cfg.GC.MaxAge)
	}
}

func TestDefaultGCPolicy(t *testing.T) {
	gc := DefaultGCPolicy()
	if gc.MaxVersions != 10 {
		t.Errorf("MaxVersions = %d, want 10", gc.MaxVersions)
	}
	if gc.MaxAge != "" {
		t.Errorf("MaxAge = %q, want empty", gc.MaxAge)
	}
}
