package config

import "fmt"

// ValidatePoolConfig rejects a Pool Engine configuration missing the
// fields required to wire the engine's ledger, clock and executor auth.
func ValidatePoolConfig(c *PoolConfig) error {
	if c.MainAccountOwner == "" {
		return fmt.Errorf("config: pool.MainAccountOwner is required")
	}
	if c.ExecutorPrincipal == "" {
		return fmt.Errorf("config: pool.ExecutorPrincipal is required")
	}
	if c.JWTSecretHex == "" {
		return fmt.Errorf("config: pool.JWTSecretHex is required")
	}
	return nil
}

// ValidateClaimConfig rejects a Claim Engine configuration missing the
// fields required to wire governance and the cross-process slash call.
func ValidateClaimConfig(c *ClaimConfig) error {
	if c.OwnAccountOwner == "" {
		return fmt.Errorf("config: claim.OwnAccountOwner is required")
	}
	if c.OwnerPrincipal == "" {
		return fmt.Errorf("config: claim.OwnerPrincipal is required")
	}
	if c.ExecutorPrincipal == "" {
		return fmt.Errorf("config: claim.ExecutorPrincipal is required")
	}
	if c.PoolEngineAddress == "" {
		return fmt.Errorf("config: claim.PoolEngineAddress is required")
	}
	if c.JWTSecretHex == "" {
		return fmt.Errorf("config: claim.JWTSecretHex is required")
	}
	if c.ApprovalPeriodSeconds <= 0 {
		return fmt.Errorf("config: claim.ApprovalPeriodSeconds must be positive")
	}
	if c.ExecutionTimeoutSeconds <= 0 {
		return fmt.Errorf("config: claim.ExecutionTimeoutSeconds must be positive")
	}
	return nil
}
