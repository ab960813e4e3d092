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
	"strings"
)

//go:generate msgp
//msgp:tuple Transaction TransactionKind

// Target selects which of the two balances a transaction works on.
type Target uint8

const (
	TargetAddress Target = iota
	TargetObject
)

func (t Target) String() string {
	switch t {
	case TargetAddress:
		return "address"
	case TargetObject:
		return "object"
	default:
		return fmt.Sprintf("target(%d)", uint8(t))
	}
}

func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Target) UnmarshalText(text []byte) error {
	v, err := ParseTarget(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "address", "addr":
		return TargetAddress, nil
	case "object", "obj":
		return TargetObject, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

type KindType uint8

const (
	KindDeposit KindType = iota
	KindWithdraw
	KindCurse
	KindClawback
)

func (k KindType) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdraw:
		return "withdraw"
	case KindCurse:
		return "curse"
	case KindClawback:
		return "clawback"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k KindType) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *KindType) UnmarshalText(text []byte) error {
	v, err := ParseKindType(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func ParseKindType(s string) (KindType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return KindDeposit, nil
	case "withdraw":
		return KindWithdraw, nil
	case "curse":
		return KindCurse, nil
	case "clawback":
		return KindClawback, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// TransactionKind is one of the four operations together with its amount.
type TransactionKind struct {
	Type   KindType `json:"type" yaml:"type"`
	Amount uint64   `json:"amount" yaml:"amount"`
}

func Deposit(amount uint64) TransactionKind  { return TransactionKind{Type: KindDeposit, Amount: amount} }
func Withdraw(amount uint64) TransactionKind { return TransactionKind{Type: KindWithdraw, Amount: amount} }
func Curse(amount uint64) TransactionKind    { return TransactionKind{Type: KindCurse, Amount: amount} }
func Clawback(amount uint64) TransactionKind { return TransactionKind{Type: KindClawback, Amount: amount} }

func (k TransactionKind) String() string {
	return fmt.Sprintf("%s(%d)", k.Type, k.Amount)
}

// Transaction is an immutable request against one of the two balances.
type Transaction struct {
	Kind   TransactionKind `json:"kind" yaml:"kind"`
	Target Target          `json:"target" yaml:"target"`
}

func NewTransaction(target Target, kind TransactionKind) Transaction {
	return Transaction{Kind: kind, Target: target}
}

func AddressDeposit(amount uint64) Transaction  { return NewTransaction(TargetAddress, Deposit(amount)) }
func ObjectDeposit(amount uint64) Transaction   { return NewTransaction(TargetObject, Deposit(amount)) }
func AddressWithdraw(amount uint64) Transaction { return NewTransaction(TargetAddress, Withdraw(amount)) }
func ObjectWithdraw(amount uint64) Transaction  { return NewTransaction(TargetObject, Withdraw(amount)) }
func AddressCurse(amount uint64) Transaction    { return NewTransaction(TargetAddress, Curse(amount)) }
func ObjectCurse(amount uint64) Transaction     { return NewTransaction(TargetObject, Curse(amount)) }
func AddressClawback(amount uint64) Transaction { return NewTransaction(TargetAddress, Clawback(amount)) }
func ObjectClawback(amount uint64) Transaction  { return NewTransaction(TargetObject, Clawback(amount)) }

func (t Transaction) IsClawback() bool {
	return t.Kind.Type == KindClawback
}

func (t Transaction) Amount() uint64 {
	return t.Kind.Amount
}

// Validate reports transactions whose kind, target or amount cannot be represented
// as a signed delta.
func (t Transaction) Validate() error {
	if t.Target != TargetAddress && t.Target != TargetObject {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, t.Target)
	}
	switch t.Kind.Type {
	case KindDeposit, KindWithdraw, KindCurse, KindClawback:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, t.Kind.Type)
	}
	if t.Kind.Amount > math.MaxInt64 {
		return fmt.Errorf("%w: %d", ErrAmountOverflow, t.Kind.Amount)
	}
	return nil
}

// Delta is the change this transaction applies to its target balance when it fully
// settles. Clawback always takes from both fields, otherwise the account would be
// left permanently cursed.
func (t Transaction) Delta() BalanceDelta {
	a := int64(t.Kind.Amount)
	switch t.Kind.Type {
	case KindDeposit:
		return BalanceDelta{Balance: a}
	case KindWithdraw:
		return BalanceDelta{Balance: -a}
	case KindCurse:
		return BalanceDelta{Cursed: a}
	case KindClawback:
		return BalanceDelta{Balance: -a, Cursed: -a}
	default:
		panic(fmt.Sprintf("unknown transaction kind %d", t.Kind.Type))
	}
}

// Effects wraps the realized delta in the slot matching the target.
func (t Transaction) Effects(delta BalanceDelta) Effects {
	switch t.Target {
	case TargetAddress:
		return Effects{AddressDelta: delta}
	case TargetObject:
		return Effects{ObjectDelta: delta}
	default:
		panic(fmt.Sprintf("unknown transaction target %d", t.Target))
	}
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s", t.Target, t.Kind)
}
