package common

import (
	"errors"
	"fmt"
	"math"
)

// Quota guards a narrow class of abuse: an approver hammering
// approve_claim/mark_as_spam far faster than a human reviewer could
// plausibly evaluate a claim. It is deliberately generic (requests-per-epoch
// only) since the claim engine has no per-action monetary amount to cap.
var (
	ErrQuotaRequestsExceeded = errors.New("quota: requests exceeded for epoch")
	ErrQuotaCounterOverflow  = errors.New("quota: counter overflow")
)

// Store provides persistence for quota counters, keyed by module and the
// acting principal's address bytes.
type Store interface {
	Load(module string, epoch uint64, addr []byte) (QuotaNow, bool, error)
	Save(module string, epoch uint64, addr []byte, counters QuotaNow) error
}

// QuotaNow captures the current quota usage counters for an address within
// the active epoch.
type QuotaNow struct {
	ReqCount uint32
	EpochID  uint64
}

// Quota defines the limit enforced for a module interaction per address.
type Quota struct {
	MaxRequestsPerEpoch uint32
	EpochSeconds        uint32
}

// CheckQuota verifies whether one additional request fits within the
// configured quota, rolling the counters over when a new epoch has begun.
func CheckQuota(q Quota, nowEpoch uint64, prev QuotaNow, addReq uint32) (QuotaNow, error) {
	next := prev
	if prev.EpochID != nowEpoch {
		next = QuotaNow{EpochID: nowEpoch}
	}
	if addReq > 0 {
		if next.ReqCount > math.MaxUint32-addReq {
			return prev, ErrQuotaCounterOverflow
		}
		next.ReqCount += addReq
	}
	if q.MaxRequestsPerEpoch > 0 && next.ReqCount > q.MaxRequestsPerEpoch {
		return prev, ErrQuotaRequestsExceeded
	}
	return next, nil
}

// Apply loads the persisted counters for the provided address, applies one
// request's increment, and persists the result when within quota. On
// rejection the stored counters are left untouched.
func Apply(store Store, module string, nowEpoch uint64, addr []byte, q Quota) (QuotaNow, error) {
	if store == nil {
		return QuotaNow{}, fmt.Errorf("quota: store unavailable")
	}
	if len(addr) == 0 {
		return QuotaNow{}, fmt.Errorf("quota: address required")
	}
	prev, _, err := store.Load(module, nowEpoch, addr)
	if err != nil {
		return QuotaNow{}, err
	}
	next, err := CheckQuota(q, nowEpoch, prev, 1)
	if err != nil {
		return prev, err
	}
	if err := store.Save(module, nowEpoch, addr, next); err != nil {
		return QuotaNow{}, err
	}
	return next, nil
}
