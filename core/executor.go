// Copyright © 2019 Annchain Authors <EMAIL ADDRESS>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package core

import (
	"errors"
	"math/bits"

	"github.com/annchain/settler/types"
	log "github.com/sirupsen/logrus"
)

var ErrRejected = errors.New("transaction rejected")

// Settlement pairs a drained transaction with what settling it actually did.
type Settlement struct {
	Transaction types.Transaction `json:"transaction"`
	Effects     types.Effects     `json:"effects"`
}

// Cleared reports whether the transaction settled for nothing because its
// deferred check failed.
func (s Settlement) Cleared() bool {
	return s.Effects.IsZero() && !s.Transaction.Delta().IsZero()
}

// Executor admits transactions against the committed State and settles them in
// batches. It is not safe for concurrent use; callers serialize access.
type Executor struct {
	scheduled []types.Transaction
	state     State
}

func NewExecutor() *Executor {
	return &Executor{}
}

func NewExecutorWithState(state State) *Executor {
	return &Executor{state: state}
}

// State returns the committed state.
func (e *Executor) State() State {
	return e.state
}

// Pending returns a copy of the transactions waiting for the next Settle.
func (e *Executor) Pending() []types.Transaction {
	pending := make([]types.Transaction, len(e.scheduled))
	copy(pending, e.scheduled)
	return pending
}

// Schedule queues tx for the next settlement or rejects it with ErrRejected.
// Address transactions and all clawbacks are checked against the committed
// balance now; object deposits, withdraws and curses are checked at settlement.
// Deposits and curses are admitted unless the committed field plus every
// pending credit to it would no longer fit a uint64.
func (e *Executor) Schedule(tx types.Transaction) error {
	if err := tx.Validate(); err != nil {
		log.WithError(err).WithField("tx", tx).Debug("rejected malformed transaction")
		return ErrRejected
	}
	if !e.creditFits(tx) {
		log.WithField("tx", tx).WithField("balance", e.state.Balance(tx.Target)).
			Debug("rejected credit that would overflow the balance")
		return ErrRejected
	}

	switch {
	case tx.Target == types.TargetAddress:
		return e.scheduleChecked(tx, e.state.Address)
	case tx.IsClawback():
		// clawbacks are unsequenced against each other and against withdraws
		// on the same cursed amount, so non-underflow is proven here
		return e.scheduleChecked(tx, e.state.Object)
	default:
		e.scheduled = append(e.scheduled, tx)
		log.WithField("tx", tx).Trace("scheduled unchecked object transaction")
		return nil
	}
}

// creditFits bounds deposits and curses by the worst case of the round: every
// pending credit to the same field applies and no debit does.
func (e *Executor) creditFits(tx types.Transaction) bool {
	committed := e.state.Balance(tx.Target)
	var total uint64
	switch tx.Kind.Type {
	case types.KindDeposit:
		total = committed.Balance
	case types.KindCurse:
		total = committed.Cursed
	default:
		return true
	}
	var carry uint64
	for _, p := range e.scheduled {
		if p.Target == tx.Target && p.Kind.Type == tx.Kind.Type {
			if total, carry = bits.Add64(total, p.Kind.Amount, 0); carry != 0 {
				return false
			}
		}
	}
	_, carry = bits.Add64(total, tx.Kind.Amount, 0)
	return carry == 0
}

func (e *Executor) scheduleChecked(tx types.Transaction, committed types.Balance) error {
	if !committed.CheckLimit(tx) {
		log.WithFields(log.Fields{
			"tx":          tx,
			"balance":     committed,
			"spendable":   committed.Spendable(),
			"reclaimable": committed.Reclaimable(),
		}).Debug("rejected transaction over limit")
		return ErrRejected
	}
	e.scheduled = append(e.scheduled, tx)
	log.WithField("tx", tx).Trace("scheduled checked transaction")
	return nil
}

// Settle drains every scheduled transaction in order and commits the resulting
// state. Object deposits, withdraws and curses are checked against the state
// committed when Settle was called; a failing one clears to zero effects.
//
// A broken admission proof panics with *types.InvariantViolation. In that case
// neither the committed state nor the queue is changed.
func (e *Executor) Settle() []Settlement {
	check := e.state
	next := e.state

	settlements := make([]Settlement, 0, len(e.scheduled))
	cleared := 0
	for _, tx := range e.scheduled {
		s := Settlement{Transaction: tx, Effects: settleOne(check, &next, tx)}
		if s.Cleared() {
			cleared++
			log.WithField("tx", tx).WithField("snapshot", check.Object).Debug("object transaction cleared to zero")
		}
		settlements = append(settlements, s)
	}

	e.state = next
	e.scheduled = nil

	log.WithFields(log.Fields{
		"settled": len(settlements),
		"cleared": cleared,
		"state":   next,
	}).Debug("settlement committed")
	return settlements
}

// settleOne checks against the fixed snapshot and applies to the accumulating
// next state.
func settleOne(check State, next *State, tx types.Transaction) types.Effects {
	if tx.Target == types.TargetObject && !tx.IsClawback() {
		if !check.Object.CheckLimit(tx) {
			return types.Effects{}
		}
	}
	return next.Apply(tx)
}
