package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plc.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := write(t, `
name = "mlz"
master_id = 1
cycle_freq_hz = 2
listen_addr = "0.0.0.0:5020"
diag_addr = "127.0.0.1:9100"

[sdo.threshold]
bits = 16
value = 4096
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "mlz" || cfg.MasterID != 1 || cfg.CycleFreqHz != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.ListenAddr != "0.0.0.0:5020" || cfg.DiagAddr != "127.0.0.1:9100" {
		t.Fatalf("addrs = %q, %q", cfg.ListenAddr, cfg.DiagAddr)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(write(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "ecatplc" {
		t.Fatalf("name = %q", cfg.Name)
	}
	if cfg.CycleFreqHz != 1000 {
		t.Fatalf("cycle_freq_hz = %d", cfg.CycleFreqHz)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateSdoWidth(t *testing.T) {
	_, err := Load(write(t, `
[sdo.bad]
bits = 12
value = 1
`))
	if err == nil {
		t.Fatal("expected error for unsupported width")
	}
}

func TestSdoVar(t *testing.T) {
	cfg := Config{Sdo: map[string]SdoOverride{
		"threshold": {Bits: 16, Value: 0x1234},
		"mode":      {Bits: 8, Value: 7},
	}}

	got, ok := cfg.SdoVar("threshold")
	if !ok || !bytes.Equal(got, []byte{0x34, 0x12}) {
		t.Fatalf("threshold = %v, %v", got, ok)
	}
	got, ok = cfg.SdoVar("mode")
	if !ok || !bytes.Equal(got, []byte{7}) {
		t.Fatalf("mode = %v, %v", got, ok)
	}
	if _, ok := cfg.SdoVar("absent"); ok {
		t.Fatal("resolved an absent name")
	}
}
