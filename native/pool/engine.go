package pool

import (
	"sync"

	poolerrors "github.com/satsurance/pool/core/errors"
	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
	nativecommon "github.com/satsurance/pool/native/common"
)

const moduleName = "pool"

// Engine orchestrates the Pool Engine's state transitions. All mutable
// state lives behind a single mutex: there is no cross-goroutine sharing,
// matching the single-threaded cooperative scheduling model of the host
// this engine was designed for.
type Engine struct {
	mu sync.Mutex

	state  engineState
	ledger ledger.Client
	clock  nativecommon.Clock
	pauses nativecommon.PauseView

	mainAccount        ledger.Account
	executorPrincipal  crypto.Address
	poolManagerPrincipal crypto.Address
}

// NewEngine constructs an unconfigured Pool Engine; SetState and
// SetLedger must be called before use.
func NewEngine(mainAccount ledger.Account) *Engine {
	return &Engine{
		mainAccount: mainAccount,
		clock:       nativecommon.SystemClock{},
	}
}

// SetState wires the engine to its persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger wires the engine to the Ledger Adapter collaborator.
func (e *Engine) SetLedger(client ledger.Client) { e.ledger = client }

// SetClock overrides the time source; production wiring leaves the
// default SystemClock, tests substitute a FakeClock.
func (e *Engine) SetClock(clock nativecommon.Clock) {
	if clock != nil {
		e.clock = clock
	}
}

// SetPauses wires the pausable-module guard view.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetExecutorPrincipal configures the single principal permitted to
// invoke slash (normally the Claim Engine's identity).
func (e *Engine) SetExecutorPrincipal(addr crypto.Address) { e.executorPrincipal = addr }

// SetPoolManagerPrincipal configures the principal permitted to create
// and update products.
func (e *Engine) SetPoolManagerPrincipal(addr crypto.Address) { e.poolManagerPrincipal = addr }

func (e *Engine) now() int64 {
	return e.clock.Now().Unix()
}

func (e *Engine) guard() error {
	return nativecommon.Guard(e.pauses, moduleName)
}

func (e *Engine) requireLedger() error {
	if e.ledger == nil {
		return poolerrors.ErrLedgerNotSet
	}
	return nil
}
