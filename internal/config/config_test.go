package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBPath != "./data/stellarsave.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.LedgerDBPath != "./data/ledger.db" {
		t.Errorf("LedgerDBPath = %q", cfg.LedgerDBPath)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
	if cfg.SchedulerInterval != time.Minute {
		t.Errorf("SchedulerInterval = %v, want 1m", cfg.SchedulerInterval)
	}
	if cfg.CustodyAddress != "custody" || cfg.OperatorAddress != "operator" {
		t.Errorf("addresses = %q, %q", cfg.CustodyAddress, cfg.OperatorAddress)
	}
	if cfg.OTELEndpoint != "" {
		t.Errorf("OTELEndpoint = %q, want tracing off", cfg.OTELEndpoint)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("SCHEDULER_INTERVAL", "0s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("OTEL_ENDPOINT", "http://collector:4318")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9090 || cfg.SchedulerInterval != 0 || cfg.RateLimitRPS != 2.5 || cfg.OTELEndpoint != "http://collector:4318" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"port out of range", map[string]string{"JWT_SECRET": "s", "PORT": "70000"}},
		{"custody is operator", map[string]string{"JWT_SECRET": "s", "CUSTODY_ADDRESS": "ops", "OPERATOR_ADDRESS": "ops"}},
		{"negative interval", map[string]string{"JWT_SECRET": "s", "SCHEDULER_INTERVAL": "-1m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestLoadLedgerNeedsNoSecret(t *testing.T) {
	t.Setenv("LEDGER_DB_PATH", "/tmp/ledger.db")

	cfg, err := LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger() error = %v", err)
	}
	if cfg.LedgerDBPath != "/tmp/ledger.db" {
		t.Errorf("LedgerDBPath = %q", cfg.LedgerDBPath)
	}
}
