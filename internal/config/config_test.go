package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/test")
	os.Setenv("JWT_SECRET", "test-secret")
	t.Cleanup(func() {
		os.Unsetenv("MYSQL_DSN")
		os.Unsetenv("JWT_SECRET")
	})
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.MySQL.DSN == "" {
		t.Error("MySQL DSN should not be empty")
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}

	if cfg.Edge.CNAMETarget != "edge.sitehost.net" {
		t.Errorf("Expected default CNAME target edge.sitehost.net, got %s", cfg.Edge.CNAMETarget)
	}
}

func TestLoad_MissingMySQLDSN(t *testing.T) {
	os.Unsetenv("MYSQL_DSN")
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when MYSQL_DSN is missing")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/test")
	os.Unsetenv("JWT_SECRET")
	defer os.Unsetenv("MYSQL_DSN")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when JWT_SECRET is missing")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("EDGE_API_TOKEN", "cf-token")
	os.Setenv("EDGE_ZONE_ID", "zone-123")
	os.Setenv("EDGE_CNAME_TARGET", "dv.provider.net")
	os.Setenv("SITES_BASE_DOMAIN", "pages.example.net")
	os.Setenv("HTTP_ADDR", ":9090")

	defer func() {
		os.Unsetenv("EDGE_API_TOKEN")
		os.Unsetenv("EDGE_ZONE_ID")
		os.Unsetenv("EDGE_CNAME_TARGET")
		os.Unsetenv("SITES_BASE_DOMAIN")
		os.Unsetenv("HTTP_ADDR")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Edge.APIToken != "cf-token" {
		t.Errorf("Expected edge API token cf-token, got %s", cfg.Edge.APIToken)
	}
	if cfg.Edge.ZoneID != "zone-123" {
		t.Errorf("Expected zone zone-123, got %s", cfg.Edge.ZoneID)
	}
	if cfg.Edge.CNAMETarget != "dv.provider.net" {
		t.Errorf("Expected CNAME target dv.provider.net, got %s", cfg.Edge.CNAMETarget)
	}
	if cfg.Sites.BaseDomain != "pages.example.net" {
		t.Errorf("Expected base domain pages.example.net, got %s", cfg.Sites.BaseDomain)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("Expected HTTPAddr :9090, got %s", cfg.HTTPAddr)
	}
}

func TestLoadFromINI(t *testing.T) {
	dir := t.TempDir()
	iniPath := filepath.Join(dir, "config.ini")
	content := `[mysql]
dsn = ini:pass@tcp(localhost:3306)/ini

[jwt]
secret = ini-secret

[edge]
api_token = ini-token
zone_id = ini-zone

[http]
addr = :7070
`
	if err := os.WriteFile(iniPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write ini file: %v", err)
	}

	os.Unsetenv("MYSQL_DSN")
	os.Unsetenv("JWT_SECRET")

	cfg, err := LoadFromINI(iniPath)
	if err != nil {
		t.Fatalf("LoadFromINI() failed: %v", err)
	}

	if cfg.MySQL.DSN != "ini:pass@tcp(localhost:3306)/ini" {
		t.Errorf("Expected INI DSN, got %s", cfg.MySQL.DSN)
	}
	if cfg.Edge.APIToken != "ini-token" {
		t.Errorf("Expected INI edge token, got %s", cfg.Edge.APIToken)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Errorf("Expected HTTPAddr :7070, got %s", cfg.HTTPAddr)
	}
}

func TestLoadFromINI_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	iniPath := filepath.Join(dir, "config.ini")
	content := `[mysql]
dsn = ini-dsn

[jwt]
secret = ini-secret
`
	if err := os.WriteFile(iniPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write ini file: %v", err)
	}

	os.Setenv("MYSQL_DSN", "env-dsn")
	defer os.Unsetenv("MYSQL_DSN")

	cfg, err := LoadFromINI(iniPath)
	if err != nil {
		t.Fatalf("LoadFromINI() failed: %v", err)
	}

	if cfg.MySQL.DSN != "env-dsn" {
		t.Errorf("Expected env override env-dsn, got %s", cfg.MySQL.DSN)
	}
}
