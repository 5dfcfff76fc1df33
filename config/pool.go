package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// PoolConfig holds the Pool Engine process's runtime configuration.
type PoolConfig struct {
	ListenAddress     string `toml:"ListenAddress"`
	MetricsAddress    string `toml:"MetricsAddress"`
	DataDir           string `toml:"DataDir"`
	Environment       string `toml:"Environment"`
	MainAccountOwner  string `toml:"MainAccountOwner"`
	ExecutorPrincipal string `toml:"ExecutorPrincipal"`
	JWTSecretHex      string `toml:"JWTSecretHex"`
	OTLPEndpoint      string `toml:"OTLPEndpoint"`
}

// LoadPoolConfig loads the Pool Engine configuration from path, writing a
// freshly generated default file if none exists yet.
func LoadPoolConfig(path string) (*PoolConfig, error) {
	cfg := &PoolConfig{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefaultPoolConfig(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecretHex == "" {
		secret, err := randomSecretHex()
		if err != nil {
			return nil, err
		}
		cfg.JWTSecretHex = secret

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, os.ModePerm)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := toml.NewEncoder(f).Encode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func createDefaultPoolConfig(path string) (*PoolConfig, error) {
	secret, err := randomSecretHex()
	if err != nil {
		return nil, err
	}

	cfg := &PoolConfig{
		ListenAddress:  ":7001",
		MetricsAddress: ":9101",
		DataDir:        "./poolengine-data",
		Environment:    "development",
		JWTSecretHex:   secret,
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func randomSecretHex() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("config: generating jwt secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
