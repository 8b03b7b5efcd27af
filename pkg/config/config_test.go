package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadBindsClickHouseAsyncFlags(t *testing.T) {
	path := writeConfig(t, `environment: test
clickhouse:
  enabled: true
  host: localhost
  async_insert: true
  wait_for_async_insert: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.ClickHouse.AsyncInsert {
		t.Error("async_insert did not bind")
	}
	if !cfg.ClickHouse.WaitForAsync {
		t.Error("wait_for_async_insert did not bind")
	}
}

func TestValidateRequiresBrokersWhenKafkaEnabled(t *testing.T) {
	path := writeConfig(t, `environment: test
kafka:
  enabled: true
  topic: position-events
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing brokers")
	}
}
