// Package scenario loads batch scripts of schedule and settle steps and
// replays them against an executor.
package scenario

import (
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/annchain/settler/core"
	"github.com/annchain/settler/types"
	"gopkg.in/yaml.v2"
)

const (
	OpSchedule = "schedule"
	OpSettle   = "settle"

	ExpectAdmitted = "admitted"
	ExpectRejected = "rejected"
)

var ErrBadScript = errors.New("bad scenario script")

type Balance struct {
	Balance uint64 `yaml:"balance" json:"balance"`
	Cursed  uint64 `yaml:"cursed" json:"cursed"`
}

func (b Balance) toBalance() types.Balance {
	return types.NewBalance(b.Balance, b.Cursed)
}

type State struct {
	Address Balance `yaml:"address"`
	Object  Balance `yaml:"object"`
}

func (s State) toState() core.State {
	return core.State{Address: s.Address.toBalance(), Object: s.Object.toBalance()}
}

// Step is either a schedule of one transaction or a settle marker. Expect and
// State are optional checks applied after the step ran.
type Step struct {
	Op     string `yaml:"op"`
	Target string `yaml:"target,omitempty"`
	Kind   string `yaml:"kind,omitempty"`
	Amount uint64 `yaml:"amount,omitempty"`
	Expect string `yaml:"expect,omitempty"`
	State  *State `yaml:"state,omitempty"`
}

// Transaction builds the scheduled transaction of a schedule step.
func (s Step) Transaction() (types.Transaction, error) {
	target, err := types.ParseTarget(s.Target)
	if err != nil {
		return types.Transaction{}, err
	}
	kind, err := types.ParseKindType(s.Kind)
	if err != nil {
		return types.Transaction{}, err
	}
	return types.NewTransaction(target, types.TransactionKind{Type: kind, Amount: s.Amount}), nil
}

type Script struct {
	Name    string `yaml:"name"`
	Initial *State `yaml:"initial,omitempty"`
	Steps   []Step `yaml:"steps"`
}

// InitialState is the committed state the script starts from.
func (s *Script) InitialState() core.State {
	if s.Initial == nil {
		return core.State{}
	}
	return s.Initial.toState()
}

// NewExecutor returns a fresh executor holding the initial state of s.
func (s *Script) NewExecutor() *core.Executor {
	return core.NewExecutorWithState(s.InitialState())
}

func (s *Script) validate() error {
	for i, step := range s.Steps {
		switch step.Op {
		case OpSchedule:
			if _, err := step.Transaction(); err != nil {
				return fmt.Errorf("%w: step %d: %v", ErrBadScript, i, err)
			}
			switch step.Expect {
			case "", ExpectAdmitted, ExpectRejected:
			default:
				return fmt.Errorf("%w: step %d: unknown expectation %q", ErrBadScript, i, step.Expect)
			}
		case OpSettle:
			if step.Expect != "" {
				return fmt.Errorf("%w: step %d: settle steps take a state, not an expectation", ErrBadScript, i)
			}
		default:
			return fmt.Errorf("%w: step %d: unknown op %q", ErrBadScript, i, step.Op)
		}
	}
	return nil
}

func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadScript, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func Load(path string) (*Script, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
