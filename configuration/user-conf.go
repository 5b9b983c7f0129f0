package configuration

import (
	"encoding/json"
	"os"
	"path"
)

type UserConfig struct {
	HttpPort       int    `json:"httpPort"`
	BlockstorePath string `json:"blockstorePath"`
	InMemory       bool   `json:"inMemory,omitempty"`
}

func LoadUserConfig() *UserConfig {
	configDir, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}

	cfgDir := path.Join(configDir, "blockgate")
	cfgPath := path.Join(cfgDir, "config.json")
	f, err := os.Open(cfgPath)
	if err != nil {
		cfg := defaultUserConfig()
		_ = os.MkdirAll(cfgDir, 0o755)
		if data, mErr := json.MarshalIndent(cfg, "", "  "); mErr == nil {
			_ = os.WriteFile(cfgPath, data, 0o644)
		}
		return cfg
	}
	defer f.Close()

	var cfg UserConfig
	dec := json.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		cfg2 := defaultUserConfig()
		_ = f.Close()
		_ = os.MkdirAll(cfgDir, 0o755)
		if data, mErr := json.MarshalIndent(cfg2, "", "  "); mErr == nil {
			_ = os.WriteFile(cfgPath, data, 0o644)
		}
		return cfg2
	}

	return &cfg
}

func defaultUserConfig() *UserConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	return &UserConfig{
		HttpPort:       5001,
		BlockstorePath: path.Join(home, ".blockgate", "blockstore"),
	}
}
