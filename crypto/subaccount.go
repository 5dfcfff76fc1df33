package crypto

import (
	"crypto/sha256"
	"encoding/binary"
)

// Subaccount is a 32-byte digest identifying a derived ledger subaccount.
// Subaccounts are never stored; they are recomputed from their preimage on
// every sweep so the owning workflow is the only caller able to produce the
// matching digest.
type Subaccount [32]byte

// rewardSubaccountPreimage is the literal domain tag for the pool's reward
// sweep address.
const rewardSubaccountPreimage = "REWARD_SUBACCOUNT"

// claimDepositDomainTag prefixes the per-proposer claim deposit subaccount
// preimage.
const claimDepositDomainTag = "claim_deposit"

func be64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// DepositSubaccount derives the per-(user, episode) deposit sweep address:
// SHA-256(user ‖ BE64(episode_id)).
func DepositSubaccount(user Address, episodeID uint64) Subaccount {
	h := sha256.New()
	h.Write(user.Bytes())
	h.Write(be64(episodeID))
	var out Subaccount
	copy(out[:], h.Sum(nil))
	return out
}

// RewardSubaccount derives the pool's fixed reward sweep address:
// SHA-256("REWARD_SUBACCOUNT").
func RewardSubaccount() Subaccount {
	h := sha256.New()
	h.Write([]byte(rewardSubaccountPreimage))
	var out Subaccount
	copy(out[:], h.Sum(nil))
	return out
}

// ClaimDepositSubaccount derives the per-proposer claim deposit address:
// SHA-256("claim_deposit" ‖ proposer).
func ClaimDepositSubaccount(proposer Address) Subaccount {
	h := sha256.New()
	h.Write([]byte(claimDepositDomainTag))
	h.Write(proposer.Bytes())
	var out Subaccount
	copy(out[:], h.Sum(nil))
	return out
}

// PurchaseSubaccount derives the per-(user, product) coverage purchase
// address: SHA-256(user ‖ BE64(product_id)).
func PurchaseSubaccount(user Address, productID uint64) Subaccount {
	h := sha256.New()
	h.Write(user.Bytes())
	h.Write(be64(productID))
	var out Subaccount
	copy(out[:], h.Sum(nil))
	return out
}
