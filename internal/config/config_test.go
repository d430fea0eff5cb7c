package config

import "testing"

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StationsFile != "./data/stations.yaml" {
		t.Fatalf("unexpected stations file: %q", cfg.StationsFile)
	}
	if cfg.PlayerBin != "ffplay" {
		t.Fatalf("unexpected player binary: %q", cfg.PlayerBin)
	}
	if cfg.RepeatBias != 0.25 {
		t.Fatalf("unexpected repeat bias: %v", cfg.RepeatBias)
	}
}

func TestLoadReadsEnvKeys(t *testing.T) {
	t.Setenv("RADIOPORT_DATA_ROOT", "/srv/radio")
	t.Setenv("RADIOPORT_HISTORY_DSN", "file:history.db")
	t.Setenv("RADIOPORT_REPEAT_BIAS", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DataRoot != "/srv/radio" {
		t.Fatalf("unexpected data root: %q", cfg.DataRoot)
	}
	if cfg.StationsFile != "/srv/radio/stations.yaml" {
		t.Fatalf("stations file did not follow data root: %q", cfg.StationsFile)
	}
	if cfg.HistoryDSN != "file:history.db" {
		t.Fatalf("unexpected history DSN: %q", cfg.HistoryDSN)
	}
	if cfg.RepeatBias != 0.5 {
		t.Fatalf("unexpected repeat bias: %v", cfg.RepeatBias)
	}
}

func TestLoadRejectsOutOfRangeRepeatBias(t *testing.T) {
	t.Setenv("RADIOPORT_REPEAT_BIAS", "1.5")
	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail for repeat bias > 1")
	}
}

func TestLoadRejectsUnknownUrgency(t *testing.T) {
	t.Setenv("RADIOPORT_NOTIFY_URGENCY", "shouty")
	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail for unknown urgency")
	}
}
