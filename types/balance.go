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
package types

import (
	"fmt"
	"math"
)

//msgp:tuple Balance BalanceDelta

// BalanceDelta is a signed change to both fields of a Balance.
type BalanceDelta struct {
	Balance int64 `json:"balance"`
	Cursed  int64 `json:"cursed"`
}

func (d BalanceDelta) IsZero() bool {
	return d.Balance == 0 && d.Cursed == 0
}

func (d BalanceDelta) Add(o BalanceDelta) BalanceDelta {
	return BalanceDelta{Balance: d.Balance + o.Balance, Cursed: d.Cursed + o.Cursed}
}

func (d BalanceDelta) String() string {
	return fmt.Sprintf("(%+d,%+d)", d.Balance, d.Cursed)
}

// Balance is the committed amount of an account together with the part of it that
// is cursed (frozen). Cursed may exceed Balance when an account is cursed ahead of
// a deposit.
type Balance struct {
	Balance uint64 `json:"balance"`
	Cursed  uint64 `json:"cursed"`
}

func NewBalance(balance uint64, cursed uint64) Balance {
	return Balance{Balance: balance, Cursed: cursed}
}

// Spendable is the amount a withdraw may take: everything that is not cursed.
func (b Balance) Spendable() uint64 {
	if b.Cursed >= b.Balance {
		return 0
	}
	return b.Balance - b.Cursed
}

// Reclaimable is the amount a clawback may take.
func (b Balance) Reclaimable() uint64 {
	if b.Balance < b.Cursed {
		return b.Balance
	}
	return b.Cursed
}

// CheckLimit tells whether tx can be applied to this snapshot without underflow.
func (b Balance) CheckLimit(tx Transaction) bool {
	switch tx.Kind.Type {
	// adding to a balance never fails
	case KindDeposit, KindCurse:
		return true
	case KindWithdraw:
		return tx.Kind.Amount <= b.Spendable()
	case KindClawback:
		return tx.Kind.Amount <= b.Reclaimable()
	default:
		panic(fmt.Sprintf("unknown transaction kind %d", tx.Kind.Type))
	}
}

// ApplyDelta adds delta to both fields. A delta that would drive a field negative
// means an admission proof was broken; it panics with *InvariantViolation.
func (b *Balance) ApplyDelta(delta BalanceDelta) {
	balance, ok := addDelta(b.Balance, delta.Balance)
	if !ok {
		panic(&InvariantViolation{Field: "balance", Before: *b, Delta: delta})
	}
	cursed, ok := addDelta(b.Cursed, delta.Cursed)
	if !ok {
		panic(&InvariantViolation{Field: "cursed", Before: *b, Delta: delta})
	}
	b.Balance = balance
	b.Cursed = cursed
}

func (b Balance) String() string {
	return fmt.Sprintf("(%d,%d)", b.Balance, b.Cursed)
}

func addDelta(v uint64, d int64) (uint64, bool) {
	if d >= 0 {
		if v > math.MaxUint64-uint64(d) {
			return 0, false
		}
		return v + uint64(d), true
	}
	// -d overflows for MinInt64, but the conversion below still yields 1<<63
	neg := uint64(-d)
	if v < neg {
		return 0, false
	}
	return v - neg, true
}

// InvariantViolation is the panic value raised when a delta would leave a
// balance field negative or out of range.
type InvariantViolation struct {
	Field  string
	Before Balance
	Delta  BalanceDelta
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("balance invariant violated: %s field of %s cannot take delta %s", e.Field, e.Before, e.Delta)
}
