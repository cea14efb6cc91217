// Package config loads the TOML runtime configuration: bus master id,
// cycle frequency, access-bridge listen address and named SDO override
// values.
package config

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// SdoOverride is one named SDO value: a little-endian integer of the given
// bit width.
type SdoOverride struct {
	Bits  int    `toml:"bits"`
	Value uint64 `toml:"value"`
}

type Config struct {
	Name        string                 `toml:"name"`
	MasterID    uint32                 `toml:"master_id"`
	CycleFreqHz uint32                 `toml:"cycle_freq_hz"`
	ListenAddr  string                 `toml:"listen_addr"`
	DiagAddr    string                 `toml:"diag_addr"`
	Sdo         map[string]SdoOverride `toml:"sdo"`
}

func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if cfg.Name == "" {
		cfg.Name = "ecatplc"
	}
	if cfg.CycleFreqHz == 0 {
		cfg.CycleFreqHz = 1000
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config missing name")
	}
	for name, o := range cfg.Sdo {
		switch o.Bits {
		case 8, 16, 32, 64:
		default:
			return fmt.Errorf("sdo %q has unsupported width %d", name, o.Bits)
		}
	}
	return nil
}

// SdoVar implements image.ConfigSource over the [sdo] table.
func (c Config) SdoVar(name string) ([]byte, bool) {
	o, ok := c.Sdo[name]
	if !ok {
		return nil, false
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, o.Value)
	return buf[:o.Bits/8], true
}
