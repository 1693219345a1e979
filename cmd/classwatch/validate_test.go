package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFindUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  http_port: 8080
  htpp_port: 8081
storage:
  type: redis
  redis:
    password: secret
client:
  server_url: http://10.0.0.5:5000
  report_intervall: 5s
detection:
  face:
    min_size: 60
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	unknown, err := findUnknownKeys(path)
	if err != nil {
		t.Fatalf("findUnknownKeys failed: %v", err)
	}

	want := []string{"client.report_intervall", "server.htpp_port"}
	if !reflect.DeepEqual(unknown, want) {
		t.Errorf("Expected %v, got %v", want, unknown)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := getDefaultConfig()
	if cfg.Server.HTTPPort != 5000 {
		t.Errorf("Expected default port 5000, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Client.ReportInterval != "3s" {
		t.Errorf("Expected default report interval 3s, got %q", cfg.Client.ReportInterval)
	}
}
