package claim_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	claimerrors "github.com/satsurance/pool/core/errors"
	"github.com/satsurance/pool/crypto"
	"github.com/satsurance/pool/ledger"
	"github.com/satsurance/pool/native/claim"
	nativecommon "github.com/satsurance/pool/native/common"
)

func testAddr(t *testing.T, seed byte) crypto.Address {
	t.Helper()
	b := make([]byte, 20)
	b[0] = seed
	addr, err := crypto.NewAddress(crypto.SinsPrefix, b)
	require.NoError(t, err)
	return addr
}

// fakeSlashCaller stands in for the Pool Engine's SlashCaller surface in
// unit tests, letting tests force an execute_claim outbound failure.
type fakeSlashCaller struct {
	fail   bool
	calls  int
	amount *big.Int
}

func (f *fakeSlashCaller) Slash(ctx context.Context, caller, receiver crypto.Address, amount *big.Int) (*big.Int, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("pool unreachable")
	}
	f.amount = amount
	return amount, nil
}

type harness struct {
	engine *claim.Engine
	ledger *ledger.InMemory
	clock  *nativecommon.FakeClock
	slash  *fakeSlashCaller
	own    ledger.Account
	owner  crypto.Address
}

func newHarness(t *testing.T, start time.Time, claimDeposit *big.Int) *harness {
	t.Helper()
	ownAddr := testAddr(t, 0xee)
	own := ledger.Account{Owner: ownAddr}
	owner := testAddr(t, 0x01)
	executor := testAddr(t, 0x02)

	mem := ledger.NewInMemory(big.NewInt(10))
	clock := nativecommon.NewFakeClock(start)
	slash := &fakeSlashCaller{}

	gov := claim.NewGovernance(owner, executor, "ledger-canister")
	gov.ClaimDeposit = claimDeposit

	e := claim.NewEngine(own)
	e.SetState(claim.NewMemStore(gov))
	e.SetLedger(mem)
	e.SetClock(clock)
	e.SetSlashCaller(slash)

	return &harness{engine: e, ledger: mem, clock: clock, slash: slash, own: own, owner: owner}
}

func (h *harness) fundDeposit(t *testing.T, proposer crypto.Address, amount *big.Int) {
	t.Helper()
	sub := crypto.ClaimDepositSubaccount(proposer)
	h.ledger.Credit(ledger.Account{Owner: h.own.Owner, Subaccount: &sub}, amount)
}

func TestClaimHappyPathNoDeposit(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start, big.NewInt(0))

	proposer := testAddr(t, 0x10)
	receiver := testAddr(t, 0x11)
	amount := big.NewInt(1_000_000)

	c, err := h.engine.AddClaim(context.Background(), proposer, receiver, amount, "pool-canister", "fire damage")
	require.NoError(t, err)
	require.Equal(t, claim.StatusPending, c.Status)

	require.NoError(t, h.engine.AddApprover(h.owner, testAddr(t, 0x02)))
	approver := testAddr(t, 0x02)

	c, err = h.engine.ApproveClaim(context.Background(), approver, c.ID)
	require.NoError(t, err)
	require.Equal(t, claim.StatusApproved, c.Status)

	h.clock.Advance(time.Duration(claim.DefaultTimelockDuration+1) * time.Second)

	c, err = h.engine.ExecuteClaim(context.Background(), approver, c.ID)
	require.NoError(t, err)
	require.Equal(t, claim.StatusExecuted, c.Status)
	require.Equal(t, 1, h.slash.calls)
	require.Equal(t, 0, amount.Cmp(h.slash.amount))
}

func TestClaimDepositGate(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	deposit := big.NewInt(5_000)
	h := newHarness(t, start, deposit)

	proposer := testAddr(t, 0x10)
	receiver := testAddr(t, 0x11)
	amount := big.NewInt(1_000_000)

	_, err := h.engine.AddClaim(context.Background(), proposer, receiver, amount, "pool-canister", "")
	require.ErrorIs(t, err, claimerrors.ErrInsufficientDeposit)

	h.fundDeposit(t, proposer, deposit)
	c, err := h.engine.AddClaim(context.Background(), proposer, receiver, amount, "pool-canister", "")
	require.NoError(t, err)
	require.Equal(t, 0, deposit.Cmp(c.DepositAmount))
}

func TestApprovalRefundsDepositImmediately(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	deposit := big.NewInt(5_000)
	h := newHarness(t, start, deposit)

	proposer := testAddr(t, 0x10)
	receiver := testAddr(t, 0x11)
	h.fundDeposit(t, proposer, deposit)

	c, err := h.engine.AddClaim(context.Background(), proposer, receiver, big.NewInt(1_000_000), "pool-canister", "")
	require.NoError(t, err)

	require.NoError(t, h.engine.AddApprover(h.owner, testAddr(t, 0x02)))
	approver := testAddr(t, 0x02)

	c, err = h.engine.ApproveClaim(context.Background(), approver, c.ID)
	require.NoError(t, err)
	require.Equal(t, 0, big.NewInt(0).Cmp(c.DepositAmount))

	balance, err := h.ledger.BalanceOf(context.Background(), ledger.Account{Owner: proposer})
	require.NoError(t, err)
	require.True(t, balance.Sign() > 0)
}

func TestExecuteRetriesAfterPoolFailure(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start, big.NewInt(0))

	proposer := testAddr(t, 0x10)
	receiver := testAddr(t, 0x11)
	amount := big.NewInt(1_000_000)

	c, err := h.engine.AddClaim(context.Background(), proposer, receiver, amount, "pool-canister", "")
	require.NoError(t, err)

	require.NoError(t, h.engine.AddApprover(h.owner, testAddr(t, 0x02)))
	approver := testAddr(t, 0x02)

	c, err = h.engine.ApproveClaim(context.Background(), approver, c.ID)
	require.NoError(t, err)

	h.clock.Advance(time.Duration(claim.DefaultTimelockDuration+1) * time.Second)

	h.slash.fail = true
	_, err = h.engine.ExecuteClaim(context.Background(), approver, c.ID)
	var poolErr *claimerrors.PoolCallFailedError
	require.True(t, errors.As(err, &poolErr))

	c, err = h.engine.GetClaim(c.ID)
	require.NoError(t, err)
	require.Equal(t, claim.StatusApproved, c.Status)

	h.slash.fail = false
	c, err = h.engine.ExecuteClaim(context.Background(), approver, c.ID)
	require.NoError(t, err)
	require.Equal(t, claim.StatusExecuted, c.Status)
}

func TestExecuteBeforeTimeoutFails(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start, big.NewInt(0))

	proposer := testAddr(t, 0x10)
	receiver := testAddr(t, 0x11)

	c, err := h.engine.AddClaim(context.Background(), proposer, receiver, big.NewInt(1_000_000), "pool-canister", "")
	require.NoError(t, err)

	require.NoError(t, h.engine.AddApprover(h.owner, testAddr(t, 0x02)))
	approver := testAddr(t, 0x02)

	c, err = h.engine.ApproveClaim(context.Background(), approver, c.ID)
	require.NoError(t, err)

	_, err = h.engine.ExecuteClaim(context.Background(), approver, c.ID)
	require.ErrorIs(t, err, claimerrors.ErrExecutionTimeoutNotExpired)
}

func TestApproveAfterApprovalPeriodExpiredFails(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start, big.NewInt(0))

	proposer := testAddr(t, 0x10)
	receiver := testAddr(t, 0x11)

	c, err := h.engine.AddClaim(context.Background(), proposer, receiver, big.NewInt(1_000_000), "pool-canister", "")
	require.NoError(t, err)

	require.NoError(t, h.engine.AddApprover(h.owner, testAddr(t, 0x02)))
	approver := testAddr(t, 0x02)

	h.clock.Advance(time.Duration(claim.DefaultTimelockDuration+1) * time.Second)

	_, err = h.engine.ApproveClaim(context.Background(), approver, c.ID)
	require.ErrorIs(t, err, claimerrors.ErrApprovalPeriodExpired)
}

func TestMarkAsSpamForfeitsDeposit(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	deposit := big.NewInt(5_000)
	h := newHarness(t, start, deposit)

	proposer := testAddr(t, 0x10)
	receiver := testAddr(t, 0x11)
	h.fundDeposit(t, proposer, deposit)

	c, err := h.engine.AddClaim(context.Background(), proposer, receiver, big.NewInt(1_000_000), "pool-canister", "")
	require.NoError(t, err)

	require.NoError(t, h.engine.AddApprover(h.owner, testAddr(t, 0x02)))
	approver := testAddr(t, 0x02)

	c, err = h.engine.MarkAsSpam(approver, c.ID)
	require.NoError(t, err)
	require.Equal(t, claim.StatusSpam, c.Status)

	_, err = h.engine.WithdrawDeposit(context.Background(), proposer, c.ID)
	require.ErrorIs(t, err, claimerrors.ErrCannotWithdrawSpamClaim)
}

func TestWithdrawDepositBeforeApprovalPeriodExpiredFails(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	deposit := big.NewInt(5_000)
	h := newHarness(t, start, deposit)

	proposer := testAddr(t, 0x10)
	receiver := testAddr(t, 0x11)
	h.fundDeposit(t, proposer, deposit)

	c, err := h.engine.AddClaim(context.Background(), proposer, receiver, big.NewInt(1_000_000), "pool-canister", "")
	require.NoError(t, err)

	_, err = h.engine.WithdrawDeposit(context.Background(), proposer, c.ID)
	require.ErrorIs(t, err, claimerrors.ErrApprovalPeriodNotExpired)

	h.clock.Advance(time.Duration(claim.DefaultTimelockDuration+1) * time.Second)

	amount, err := h.engine.WithdrawDeposit(context.Background(), proposer, c.ID)
	require.NoError(t, err)
	require.True(t, amount.Sign() > 0)
}

func TestStatusDAGForbidsIllegalTransitions(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start, big.NewInt(0))

	proposer := testAddr(t, 0x10)
	receiver := testAddr(t, 0x11)

	c, err := h.engine.AddClaim(context.Background(), proposer, receiver, big.NewInt(1_000_000), "pool-canister", "")
	require.NoError(t, err)

	require.NoError(t, h.engine.AddApprover(h.owner, testAddr(t, 0x02)))
	approver := testAddr(t, 0x02)

	// Cannot execute a Pending claim.
	_, err = h.engine.ExecuteClaim(context.Background(), approver, c.ID)
	require.ErrorIs(t, err, claimerrors.ErrNotApproved)

	c, err = h.engine.ApproveClaim(context.Background(), approver, c.ID)
	require.NoError(t, err)

	// Cannot approve twice.
	_, err = h.engine.ApproveClaim(context.Background(), approver, c.ID)
	require.ErrorIs(t, err, claimerrors.ErrAlreadyApproved)

	// Cannot mark an approved claim as spam.
	_, err = h.engine.MarkAsSpam(approver, c.ID)
	require.ErrorIs(t, err, claimerrors.ErrInvalidStatus)

	h.clock.Advance(time.Duration(claim.DefaultTimelockDuration+1) * time.Second)
	c, err = h.engine.ExecuteClaim(context.Background(), approver, c.ID)
	require.NoError(t, err)
	require.Equal(t, claim.StatusExecuted, c.Status)

	// Cannot execute twice.
	_, err = h.engine.ExecuteClaim(context.Background(), approver, c.ID)
	require.ErrorIs(t, err, claimerrors.ErrAlreadyExecuted)
}

func TestNonApproverCannotApprove(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start, big.NewInt(0))

	proposer := testAddr(t, 0x10)
	receiver := testAddr(t, 0x11)

	c, err := h.engine.AddClaim(context.Background(), proposer, receiver, big.NewInt(1_000_000), "pool-canister", "")
	require.NoError(t, err)

	_, err = h.engine.ApproveClaim(context.Background(), testAddr(t, 0x99), c.ID)
	require.ErrorIs(t, err, claimerrors.ErrNotApprover)
}

// TestOwnerIsApproverAtInit checks the deployment owner can approve claims
// without any prior call to AddApprover.
func TestOwnerIsApproverAtInit(t *testing.T) {
	start := time.Unix(2_000_000_000, 0)
	h := newHarness(t, start, big.NewInt(0))

	proposer := testAddr(t, 0x10)
	receiver := testAddr(t, 0x11)

	c, err := h.engine.AddClaim(context.Background(), proposer, receiver, big.NewInt(1_000_000), "pool-canister", "")
	require.NoError(t, err)

	c, err = h.engine.ApproveClaim(context.Background(), h.owner, c.ID)
	require.NoError(t, err)
	require.Equal(t, claim.StatusApproved, c.Status)
}
