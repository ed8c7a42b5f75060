package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

// Config carries the daemon settings. Addresses are 0x-prefixed hex strings.
type Config struct {
	RPCAddress    string `toml:"RPCAddress"`
	DataDir       string `toml:"DataDir"`
	Env           string `toml:"Env"`
	LogFile       string `toml:"LogFile"`
	VaultAddress  string `toml:"VaultAddress"`
	BadgeOwner    string `toml:"BadgeOwner"`
	MintAuthority string `toml:"MintAuthority"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./bountyboard-data"
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "local"
	}
}

// Validate checks the configured addresses parse and required fields are set.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil config")
	}
	for name, value := range map[string]string{
		"VaultAddress":  c.VaultAddress,
		"BadgeOwner":    c.BadgeOwner,
		"MintAuthority": c.MintAuthority,
	} {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return fmt.Errorf("config: %s is required", name)
		}
		if !common.IsHexAddress(trimmed) {
			return fmt.Errorf("config: %s is not a valid address: %s", name, trimmed)
		}
	}
	return nil
}

// Address decodes a configured 0x-hex address into its raw form.
func Address(value string) ([20]byte, error) {
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("config: invalid address: %s", value)
	}
	return common.HexToAddress(trimmed), nil
}

// createDefault creates and saves a default configuration file. The generated
// addresses are placeholders the operator must replace before first run.
func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.VaultAddress = common.Address{0x01}.Hex()
	cfg.BadgeOwner = common.Address{0x02}.Hex()
	cfg.MintAuthority = common.Address{0x03}.Hex()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}
