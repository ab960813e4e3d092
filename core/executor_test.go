package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/annchain/settler/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addrEffects(tx types.Transaction, delta types.BalanceDelta) Settlement {
	return Settlement{Transaction: tx, Effects: types.Effects{AddressDelta: delta}}
}

func objEffects(tx types.Transaction, delta types.BalanceDelta) Settlement {
	return Settlement{Transaction: tx, Effects: types.Effects{ObjectDelta: delta}}
}

func d(balance, cursed int64) types.BalanceDelta {
	return types.BalanceDelta{Balance: balance, Cursed: cursed}
}

func TestAddressWithdraw(t *testing.T) {
	e := NewExecutor()

	require.NoError(t, e.Schedule(types.AddressDeposit(100)))
	// the deposit has not settled yet
	assert.Equal(t, ErrRejected, e.Schedule(types.AddressWithdraw(100)))

	assert.Equal(t, []Settlement{
		addrEffects(types.AddressDeposit(100), d(100, 0)),
	}, e.Settle())
	assert.Equal(t, types.NewBalance(100, 0), e.State().Address)

	require.NoError(t, e.Schedule(types.AddressWithdraw(100)))
	assert.Equal(t, []Settlement{
		addrEffects(types.AddressWithdraw(100), d(-100, 0)),
	}, e.Settle())
	assert.Equal(t, types.NewBalance(0, 0), e.State().Address)
}

func TestObjectWithdraw(t *testing.T) {
	e := NewExecutor()

	// object withdraws are not checked at schedule time
	require.NoError(t, e.Schedule(types.ObjectDeposit(100)))
	require.NoError(t, e.Schedule(types.ObjectWithdraw(100)))

	settled := e.Settle()
	assert.Equal(t, []Settlement{
		objEffects(types.ObjectDeposit(100), d(100, 0)),
		// checked against the state before the deposit
		objEffects(types.ObjectWithdraw(100), d(0, 0)),
	}, settled)
	assert.False(t, settled[0].Cleared())
	assert.True(t, settled[1].Cleared())
	assert.Equal(t, types.NewBalance(100, 0), e.State().Object)

	require.NoError(t, e.Schedule(types.ObjectWithdraw(100)))
	assert.Equal(t, []Settlement{
		objEffects(types.ObjectWithdraw(100), d(-100, 0)),
	}, e.Settle())
	assert.Equal(t, types.NewBalance(0, 0), e.State().Object)
}

func TestObjectClawback(t *testing.T) {
	e := NewExecutor()

	require.NoError(t, e.Schedule(types.ObjectDeposit(100)))
	// nothing is cursed yet
	assert.Equal(t, ErrRejected, e.Schedule(types.ObjectClawback(50)))
	assert.Equal(t, []Settlement{
		objEffects(types.ObjectDeposit(100), d(100, 0)),
	}, e.Settle())

	require.NoError(t, e.Schedule(types.ObjectCurse(50)))
	assert.Equal(t, []Settlement{
		objEffects(types.ObjectCurse(50), d(0, 50)),
	}, e.Settle())
	assert.Equal(t, types.NewBalance(100, 50), e.State().Object)

	require.NoError(t, e.Schedule(types.ObjectWithdraw(60)))
	require.NoError(t, e.Schedule(types.ObjectWithdraw(50)))
	assert.Equal(t, ErrRejected, e.Schedule(types.ObjectClawback(60)))
	require.NoError(t, e.Schedule(types.ObjectClawback(50)))

	assert.Equal(t, []Settlement{
		objEffects(types.ObjectWithdraw(60), d(0, 0)),
		objEffects(types.ObjectWithdraw(50), d(-50, 0)),
		objEffects(types.ObjectClawback(50), d(-50, -50)),
	}, e.Settle())
	assert.Equal(t, types.NewBalance(0, 0), e.State().Object)
}

func TestAddressClawback(t *testing.T) {
	e := NewExecutor()

	require.NoError(t, e.Schedule(types.AddressDeposit(100)))
	assert.Equal(t, ErrRejected, e.Schedule(types.AddressClawback(100)))
	e.Settle()
	assert.Equal(t, types.NewBalance(100, 0), e.State().Address)

	require.NoError(t, e.Schedule(types.AddressCurse(50)))
	assert.Equal(t, []Settlement{
		addrEffects(types.AddressCurse(50), d(0, 50)),
	}, e.Settle())
	assert.Equal(t, types.NewBalance(100, 50), e.State().Address)

	assert.Equal(t, ErrRejected, e.Schedule(types.AddressWithdraw(60)))
	assert.Equal(t, ErrRejected, e.Schedule(types.AddressClawback(60)))
	require.NoError(t, e.Schedule(types.AddressClawback(50)))
	require.NoError(t, e.Schedule(types.AddressWithdraw(50)))
	assert.Equal(t, []Settlement{
		addrEffects(types.AddressClawback(50), d(-50, -50)),
		addrEffects(types.AddressWithdraw(50), d(-50, 0)),
	}, e.Settle())
	assert.Equal(t, types.NewBalance(0, 0), e.State().Address)

	// curse ahead of the deposit
	require.NoError(t, e.Schedule(types.AddressCurse(100)))
	require.NoError(t, e.Schedule(types.AddressDeposit(110)))
	assert.Equal(t, []Settlement{
		addrEffects(types.AddressCurse(100), d(0, 100)),
		addrEffects(types.AddressDeposit(110), d(110, 0)),
	}, e.Settle())
	assert.Equal(t, types.NewBalance(110, 100), e.State().Address)

	assert.Equal(t, ErrRejected, e.Schedule(types.AddressWithdraw(11)))
	require.NoError(t, e.Schedule(types.AddressWithdraw(10)))
	require.NoError(t, e.Schedule(types.AddressClawback(50)))
	assert.Equal(t, []Settlement{
		addrEffects(types.AddressWithdraw(10), d(-10, 0)),
		addrEffects(types.AddressClawback(50), d(-50, -50)),
	}, e.Settle())
	// the rest stays cursed
	assert.Equal(t, types.NewBalance(50, 50), e.State().Address)
}

func TestScenarioDepositFromEmpty(t *testing.T) {
	e := NewExecutor()
	require.NoError(t, e.Schedule(types.AddressDeposit(100)))
	assert.Equal(t, []Settlement{addrEffects(types.AddressDeposit(100), d(100, 0))}, e.Settle())
	assert.Equal(t, State{Address: types.NewBalance(100, 0)}, e.State())
}

func TestScenarioStaleSnapshotObjectWithdraws(t *testing.T) {
	e := NewExecutorWithState(State{Object: types.NewBalance(100, 50)})
	require.NoError(t, e.Schedule(types.ObjectWithdraw(60)))
	require.NoError(t, e.Schedule(types.ObjectWithdraw(50)))
	assert.Equal(t, []Settlement{
		objEffects(types.ObjectWithdraw(60), d(0, 0)),
		objEffects(types.ObjectWithdraw(50), d(-50, 0)),
	}, e.Settle())
	assert.Equal(t, types.NewBalance(50, 50), e.State().Object)
}

func TestScenarioPreCursedAddress(t *testing.T) {
	e := NewExecutorWithState(State{Address: types.NewBalance(110, 100)})
	assert.Equal(t, ErrRejected, e.Schedule(types.AddressWithdraw(11)))
	require.NoError(t, e.Schedule(types.AddressWithdraw(10)))
	require.NoError(t, e.Schedule(types.AddressClawback(50)))
	assert.Equal(t, []Settlement{
		addrEffects(types.AddressWithdraw(10), d(-10, 0)),
		addrEffects(types.AddressClawback(50), d(-50, -50)),
	}, e.Settle())
	assert.Equal(t, types.NewBalance(50, 50), e.State().Address)
}

func TestRejectedTransactionsAreNotSettled(t *testing.T) {
	e := NewExecutorWithState(State{Address: types.NewBalance(5, 0)})
	assert.Equal(t, ErrRejected, e.Schedule(types.AddressWithdraw(6)))
	assert.Empty(t, e.Pending())
	assert.Empty(t, e.Settle())
	assert.Equal(t, types.NewBalance(5, 0), e.State().Address)
}

func TestMalformedTransactionRejected(t *testing.T) {
	e := NewExecutor()
	assert.Equal(t, ErrRejected, e.Schedule(types.ObjectDeposit(1<<63)))
	assert.Equal(t, ErrRejected, e.Schedule(types.NewTransaction(types.Target(7), types.Deposit(1))))
	assert.Empty(t, e.Pending())
}

func TestAddressOperationsAreSequencedWithinRound(t *testing.T) {
	e := NewExecutorWithState(State{Address: types.NewBalance(100, 0)})
	require.NoError(t, e.Schedule(types.AddressCurse(30)))
	require.NoError(t, e.Schedule(types.AddressWithdraw(70)))
	e.Settle()
	assert.Equal(t, types.NewBalance(30, 30), e.State().Address)
}

func TestObjectClawbackIgnoresStaleSnapshot(t *testing.T) {
	// the clawback was proven at schedule time and applies unconditionally
	e := NewExecutorWithState(State{Object: types.NewBalance(100, 40)})
	require.NoError(t, e.Schedule(types.ObjectClawback(40)))
	require.NoError(t, e.Schedule(types.ObjectWithdraw(60)))
	assert.Equal(t, []Settlement{
		objEffects(types.ObjectClawback(40), d(-40, -40)),
		objEffects(types.ObjectWithdraw(60), d(-60, 0)),
	}, e.Settle())
	assert.Equal(t, types.NewBalance(0, 0), e.State().Object)
}

func TestTargetsEvolveIndependently(t *testing.T) {
	e := NewExecutor()
	require.NoError(t, e.Schedule(types.AddressDeposit(10)))
	require.NoError(t, e.Schedule(types.ObjectDeposit(20)))
	require.NoError(t, e.Schedule(types.ObjectCurse(5)))
	assert.Equal(t, []Settlement{
		addrEffects(types.AddressDeposit(10), d(10, 0)),
		objEffects(types.ObjectDeposit(20), d(20, 0)),
		objEffects(types.ObjectCurse(5), d(0, 5)),
	}, e.Settle())
	assert.Equal(t, State{Address: types.NewBalance(10, 0), Object: types.NewBalance(20, 5)}, e.State())
}

func TestSettleDrainsQueue(t *testing.T) {
	e := NewExecutor()
	require.NoError(t, e.Schedule(types.ObjectWithdraw(1)))
	assert.Len(t, e.Pending(), 1)
	e.Settle()
	assert.Empty(t, e.Pending())
	assert.Empty(t, e.Settle())
}

func TestPendingIsACopy(t *testing.T) {
	e := NewExecutor()
	require.NoError(t, e.Schedule(types.ObjectDeposit(1)))
	p := e.Pending()
	p[0] = types.ObjectWithdraw(99)
	assert.Equal(t, types.ObjectDeposit(1), e.Pending()[0])
}

// Two object withdraws that each pass against the same pre-batch snapshot can
// jointly exceed the balance. The second application breaks the invariant and
// Settle panics, leaving the committed state and the queue untouched.
func TestSettleObjectWithdrawsJointlyExceedingSnapshotPanics(t *testing.T) {
	e := NewExecutorWithState(State{Object: types.NewBalance(100, 0)})
	require.NoError(t, e.Schedule(types.ObjectWithdraw(60)))
	require.NoError(t, e.Schedule(types.ObjectWithdraw(60)))

	var recovered interface{}
	func() {
		defer func() { recovered = recover() }()
		e.Settle()
	}()

	violation, ok := recovered.(*types.InvariantViolation)
	require.True(t, ok, "expected an invariant violation, got %v", recovered)
	assert.Equal(t, "balance", violation.Field)
	assert.Equal(t, types.NewBalance(40, 0), violation.Before)
	assert.Equal(t, d(-60, 0), violation.Delta)

	assert.Equal(t, types.NewBalance(100, 0), e.State().Object)
	assert.Len(t, e.Pending(), 2)
}

// Address withdraws are each proven against the committed balance only, so two
// of them in one round hit the same limit.
func TestSettleAddressWithdrawsJointlyExceedingCommittedPanics(t *testing.T) {
	e := NewExecutorWithState(State{Address: types.NewBalance(100, 0)})
	require.NoError(t, e.Schedule(types.AddressWithdraw(100)))
	require.NoError(t, e.Schedule(types.AddressWithdraw(100)))
	assert.Panics(t, func() { e.Settle() })
	assert.Equal(t, types.NewBalance(100, 0), e.State().Address)
}

// Withdraws that fit together are fine even though both are checked against the
// stale snapshot.
func TestSettleObjectWithdrawsJointlyWithinSnapshot(t *testing.T) {
	e := NewExecutorWithState(State{Object: types.NewBalance(100, 0)})
	require.NoError(t, e.Schedule(types.ObjectWithdraw(60)))
	require.NoError(t, e.Schedule(types.ObjectWithdraw(40)))
	require.NotPanics(t, func() { e.Settle() })
	assert.Equal(t, types.NewBalance(0, 0), e.State().Object)
}

func TestDepositAlwaysAdmitted(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	e := NewExecutor()
	for i := 0; i < 200; i++ {
		amount := uint64(r.Int63n(1 << 20))
		assert.NoError(t, e.Schedule(types.AddressDeposit(amount)))
		assert.NoError(t, e.Schedule(types.ObjectDeposit(amount)))
	}
}

// Credits are admitted until the committed field plus every pending credit
// to it would overflow; the round then settles without a violation.
func TestCreditsBoundedByBalanceRange(t *testing.T) {
	for _, c := range []struct {
		name   string
		credit func(uint64) types.Transaction
		field  func(types.Balance) uint64
	}{
		{"address deposit", types.AddressDeposit, func(b types.Balance) uint64 { return b.Balance }},
		{"object deposit", types.ObjectDeposit, func(b types.Balance) uint64 { return b.Balance }},
		{"address curse", types.AddressCurse, func(b types.Balance) uint64 { return b.Cursed }},
		{"object curse", types.ObjectCurse, func(b types.Balance) uint64 { return b.Cursed }},
	} {
		e := NewExecutor()
		require.NoError(t, e.Schedule(c.credit(math.MaxInt64)), c.name)
		require.NoError(t, e.Schedule(c.credit(math.MaxInt64)), c.name)
		assert.Equal(t, ErrRejected, e.Schedule(c.credit(math.MaxInt64)), c.name)
		// exactly fills the field
		require.NoError(t, e.Schedule(c.credit(1)), c.name)
		assert.Equal(t, ErrRejected, e.Schedule(c.credit(1)), c.name)
		assert.Len(t, e.Pending(), 3, c.name)

		require.NotPanics(t, func() { e.Settle() }, c.name)
		tx := c.credit(0)
		assert.Equal(t, uint64(math.MaxUint64), c.field(e.State().Balance(tx.Target)), c.name)

		// the committed amount counts in the next round
		assert.Equal(t, ErrRejected, e.Schedule(c.credit(1)), c.name)
		assert.NoError(t, e.Schedule(c.credit(0)), c.name)
	}
}

func TestCreditBoundIgnoresOtherFieldAndTarget(t *testing.T) {
	e := NewExecutorWithState(State{Address: types.NewBalance(math.MaxUint64, 0)})
	assert.Equal(t, ErrRejected, e.Schedule(types.AddressDeposit(1)))
	assert.NoError(t, e.Schedule(types.AddressCurse(1)))
	assert.NoError(t, e.Schedule(types.ObjectDeposit(1)))
}

func TestAdmissionBounds(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		balance := types.NewBalance(uint64(r.Intn(200)), uint64(r.Intn(200)))
		amount := uint64(r.Intn(250))
		e := NewExecutorWithState(State{Address: balance, Object: balance})

		withdrawErr := e.Schedule(types.AddressWithdraw(amount))
		assert.Equal(t, amount <= balance.Spendable(), withdrawErr == nil, "address withdraw %d on %s", amount, balance)

		for _, tx := range []types.Transaction{types.AddressClawback(amount), types.ObjectClawback(amount)} {
			err := e.Schedule(tx)
			assert.Equal(t, amount <= balance.Reclaimable(), err == nil, "%s on %s", tx, balance)
		}

		// object optimism
		assert.NoError(t, e.Schedule(types.ObjectWithdraw(amount)))
	}
}

func TestObjectWithdrawAllOrNothing(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 300; i++ {
		start := types.NewBalance(uint64(r.Intn(100)), uint64(r.Intn(100)))
		amount := uint64(r.Intn(120))
		e := NewExecutorWithState(State{Object: start})
		require.NoError(t, e.Schedule(types.ObjectWithdraw(amount)))
		settled := e.Settle()
		require.Len(t, settled, 1)

		got := e.State().Object
		if settled[0].Cleared() {
			assert.Equal(t, start, got)
		} else {
			assert.Equal(t, start.Balance-amount, got.Balance)
			assert.Equal(t, start.Cursed, got.Cursed)
		}
	}
}

// The committed state after Settle is the start state plus every applied delta.
func TestSettlementAtomicity(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	makers := []func(uint64) types.Transaction{
		types.AddressDeposit, types.ObjectDeposit,
		types.AddressWithdraw, types.ObjectWithdraw,
		types.AddressCurse, types.ObjectCurse,
		types.AddressClawback, types.ObjectClawback,
	}
	e := NewExecutor()
	for round := 0; round < 50; round++ {
		start := e.State()
		for i := 0; i < 10; i++ {
			tx := makers[r.Intn(len(makers))](uint64(r.Intn(50)))
			// one debit per target and round, otherwise the committed-state
			// checks can jointly overdraw
			if isDebit(tx) && hasDebit(e.Pending(), tx.Target) {
				continue
			}
			_ = e.Schedule(tx)
		}
		settled := e.Settle()
		assert.Empty(t, e.Pending())

		expected := start
		for _, s := range settled {
			expected.Address.ApplyDelta(s.Effects.AddressDelta)
			expected.Object.ApplyDelta(s.Effects.ObjectDelta)
		}
		assert.Equal(t, expected, e.State())
	}
}

func isDebit(tx types.Transaction) bool {
	return tx.Kind.Type == types.KindWithdraw || tx.Kind.Type == types.KindClawback
}

func hasDebit(txs []types.Transaction, target types.Target) bool {
	for _, tx := range txs {
		if tx.Target == target && isDebit(tx) {
			return true
		}
	}
	return false
}

func TestStateMsgp(t *testing.T) {
	s := State{Address: types.NewBalance(110, 100), Object: types.NewBalance(3, 9)}
	b, err := s.MarshalMsg(nil)
	require.NoError(t, err)

	var decoded State
	rest, err := decoded.UnmarshalMsg(b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, s, decoded)
}
