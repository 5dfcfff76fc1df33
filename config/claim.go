package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// ClaimConfig holds the Claim Engine process's runtime configuration.
type ClaimConfig struct {
	ListenAddress           string `toml:"ListenAddress"`
	MetricsAddress          string `toml:"MetricsAddress"`
	DataDir                 string `toml:"DataDir"`
	Environment             string `toml:"Environment"`
	OwnAccountOwner         string `toml:"OwnAccountOwner"`
	OwnerPrincipal          string `toml:"OwnerPrincipal"`
	ExecutorPrincipal       string `toml:"ExecutorPrincipal"`
	LedgerCanisterID        string `toml:"LedgerCanisterID"`
	PoolEngineAddress       string `toml:"PoolEngineAddress"`
	JWTSecretHex            string `toml:"JWTSecretHex"`
	ApprovalPeriodSeconds   int64  `toml:"ApprovalPeriodSeconds"`
	ExecutionTimeoutSeconds int64  `toml:"ExecutionTimeoutSeconds"`
	ClaimDepositAtomic      string `toml:"ClaimDepositAtomic"`
	OTLPEndpoint            string `toml:"OTLPEndpoint"`
}

// LoadClaimConfig loads the Claim Engine configuration from path, writing a
// freshly generated default file if none exists yet.
func LoadClaimConfig(path string) (*ClaimConfig, error) {
	cfg := &ClaimConfig{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefaultClaimConfig(path)
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

func createDefaultClaimConfig(path string) (*ClaimConfig, error) {
	secret, err := randomSecretHex()
	if err != nil {
		return nil, err
	}

	cfg := &ClaimConfig{
		ListenAddress:           ":7002",
		MetricsAddress:          ":9102",
		DataDir:                 "./claimengine-data",
		Environment:             "development",
		JWTSecretHex:            secret,
		ApprovalPeriodSeconds:   24 * 3600,
		ExecutionTimeoutSeconds: 24 * 3600,
		ClaimDepositAtomic:      "0",
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
