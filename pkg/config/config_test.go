package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

const validConfig = `
database:
  host: localhost
  user: bridge
  password: secret
l1:
  bridge_address: "0x00000000000000000000000000000000000000b1"
  admin_address: "0x00000000000000000000000000000000000000ad"
l2:
  bridge_address: "0x00000000000000000000000000000000000000b2"
  admin_address: "0x00000000000000000000000000000000000000ad"
fees:
  flat_fee_recipient: "0x00000000000000000000000000000000000000fc"
api:
  jwt_secret: test-secret
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected database host localhost, got %s", cfg.Database.Host)
	}
	if cfg.L1.BridgeAddress != "0x00000000000000000000000000000000000000b1" {
		t.Errorf("Unexpected l1 bridge address %s", cfg.L1.BridgeAddress)
	}
	if cfg.API.JWTSecret != "test-secret" {
		t.Errorf("Unexpected jwt secret %s", cfg.API.JWTSecret)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Bridge.ProtocolVersion != 2 {
		t.Errorf("Expected default protocol version 2, got %d", cfg.Bridge.ProtocolVersion)
	}
	if cfg.Fees.BridgingFeeNumerator != 3 {
		t.Errorf("Expected default bridging fee numerator 3, got %d", cfg.Fees.BridgingFeeNumerator)
	}
	if cfg.L1.DefaultGasLimit != 200000 {
		t.Errorf("Expected default gas limit 200000, got %d", cfg.L1.DefaultGasLimit)
	}
	if cfg.L2.Name != "l2" {
		t.Errorf("Expected default l2 name, got %s", cfg.L2.Name)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		mutate  string
		message string
	}{
		{
			name:    "missing jwt secret",
			mutate:  strings.Replace(validConfig, "jwt_secret: test-secret", "jwt_secret: \"\"", 1),
			message: "api.jwt_secret",
		},
		{
			name:    "missing l1 bridge",
			mutate:  strings.Replace(validConfig, "bridge_address: \"0x00000000000000000000000000000000000000b1\"", "bridge_address: \"\"", 1),
			message: "l1.bridge_address",
		},
		{
			name:    "missing fee recipient",
			mutate:  strings.Replace(validConfig, "flat_fee_recipient: \"0x00000000000000000000000000000000000000fc\"", "flat_fee_recipient: \"\"", 1),
			message: "fees.flat_fee_recipient",
		},
		{
			name:    "bad protocol version",
			mutate:  validConfig + "bridge:\n  protocol_version: 3\n",
			message: "protocol_version",
		},
		{
			name:    "bridging fee at denominator",
			mutate:  strings.Replace(validConfig, "flat_fee_recipient:", "bridging_fee_numerator: 1000\n  flat_fee_recipient:", 1),
			message: "bridging_fee_numerator",
		},
		{
			name:    "fast enabled without backend",
			mutate:  validConfig + "fast:\n  enabled: true\n",
			message: "fast.backend_address",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.mutate))
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("Expected error mentioning %q, got %v", tc.message, err)
			}
		})
	}
}

func TestLoad_FastWithKeySeed(t *testing.T) {
	content := validConfig + "fast:\n  enabled: true\n  key_seed: c2VlZC1zZWVkLXNlZWQtc2VlZC1zZWVkLXNlZWQtMDE=\n"
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Fast.Enabled || cfg.Fast.KeySeed == "" {
		t.Errorf("Expected fast path enabled with key seed, got %+v", cfg.Fast)
	}
}

func TestGetConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "bridge",
		Password: "secret",
		Database: "standard_bridge",
		SSLMode:  "disable",
	}
	want := "host=localhost port=5432 user=bridge password=secret dbname=standard_bridge sslmode=disable"
	if got := db.GetConnectionString(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected debug level enabled")
	}

	if _, err := NewLogger(LoggingConfig{Level: "shouting", Format: "json"}); err == nil {
		t.Error("Expected error for invalid log level")
	}
}
