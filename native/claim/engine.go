package claim

import (
	"encoding/hex"
	"sync"

	claimerrors "github.com/satsurance/pool/core/errors"
	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
	nativecommon "github.com/satsurance/pool/native/common"
	"github.com/satsurance/pool/native/pool"
)

const moduleName = "claim"

func addrKey(addr crypto.Address) string { return hex.EncodeToString(addr.Bytes()) }

// Engine orchestrates the Claim Engine's governed claim lifecycle. As
// with the Pool Engine, all mutable state lives behind a single mutex.
type Engine struct {
	mu sync.Mutex

	state  engineState
	ledger ledger.Client
	clock  nativecommon.Clock
	pauses nativecommon.PauseView

	ownAccount  ledger.Account
	slashCaller pool.SlashCaller

	approverQuota      nativecommon.Quota
	approverQuotaStore nativecommon.Store
	approverRateLimit  *nativecommon.ApproverRateLimiter
}

// NewEngine constructs an unconfigured Claim Engine; SetState, SetLedger
// and SetSlashCaller must be called before use.
func NewEngine(ownAccount ledger.Account) *Engine {
	return &Engine{
		ownAccount: ownAccount,
		clock:      nativecommon.SystemClock{},
		approverQuota: nativecommon.Quota{
			MaxRequestsPerEpoch: 20,
			EpochSeconds:        3600,
		},
		approverRateLimit: nativecommon.NewApproverRateLimiter(1, 5),
	}
}

// SetState wires the engine to its persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger wires the engine to the Ledger Adapter collaborator.
func (e *Engine) SetLedger(client ledger.Client) { e.ledger = client }

// SetClock overrides the time source.
func (e *Engine) SetClock(clock nativecommon.Clock) {
	if clock != nil {
		e.clock = clock
	}
}

// SetPauses wires the pausable-module guard view.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetSlashCaller wires the dispatch target for execute_claim's outbound
// slash call.
func (e *Engine) SetSlashCaller(caller pool.SlashCaller) { e.slashCaller = caller }

// SetApproverQuotaStore wires the abuse-guard rate-limit persistence used
// to bound how often a single approver may call approve_claim or
// mark_as_spam per epoch, grounded in native/potso's heartbeat
// rate-limiting pattern.
func (e *Engine) SetApproverQuotaStore(store nativecommon.Store) { e.approverQuotaStore = store }

// SetApproverQuota overrides the default approver abuse-guard quota.
func (e *Engine) SetApproverQuota(q nativecommon.Quota) { e.approverQuota = q }

// SetApproverRateLimit overrides the default in-memory per-approver burst
// limiter.
func (e *Engine) SetApproverRateLimit(l *nativecommon.ApproverRateLimiter) {
	e.approverRateLimit = l
}

func (e *Engine) now() int64 {
	return e.clock.Now().Unix()
}

func (e *Engine) guard() error {
	return nativecommon.Guard(e.pauses, moduleName)
}

func (e *Engine) checkApproverQuota(approver crypto.Address) error {
	if !e.approverRateLimit.Allow(addrKey(approver)) {
		return claimerrors.ErrApproverRateLimited
	}
	if e.approverQuotaStore == nil {
		return nil
	}
	nowEpoch := uint64(e.now()) / uint64(e.approverQuota.EpochSeconds)
	_, err := nativecommon.Apply(e.approverQuotaStore, moduleName, nowEpoch, approver.Bytes(), e.approverQuota)
	return err
}
