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
	"fmt"

	"github.com/annchain/settler/types"
)

//go:generate msgp
//msgp:tuple State

// State is the committed pair of balances between settlement rounds.
type State struct {
	Address types.Balance `json:"address"`
	Object  types.Balance `json:"object"`
}

// Balance returns the committed balance of target.
func (s State) Balance(target types.Target) types.Balance {
	return *s.balance(target)
}

func (s *State) balance(target types.Target) *types.Balance {
	switch target {
	case types.TargetAddress:
		return &s.Address
	case types.TargetObject:
		return &s.Object
	default:
		panic(fmt.Sprintf("unknown transaction target %d", target))
	}
}

// Apply applies the full delta of tx to its target and returns the effects.
// It panics with *types.InvariantViolation if tx was not proven safe.
func (s *State) Apply(tx types.Transaction) types.Effects {
	delta := tx.Delta()
	s.balance(tx.Target).ApplyDelta(delta)
	return tx.Effects(delta)
}

func (s State) String() string {
	return fmt.Sprintf("State{address:%s,object:%s}", s.Address, s.Object)
}
