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

// Package ledger puts a core.Executor behind a mutex, persists its committed
// state after every settlement round and reports what happened.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annchain/settler/core"
	"github.com/annchain/settler/ledgerdb"
	"github.com/annchain/settler/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// ErrInvariantBroken is returned once a settlement round hit a balance
// invariant violation. The ledger refuses all further work afterwards.
var ErrInvariantBroken = errors.New("ledger invariant broken")

// DefaultSettleInterval is used by Run when it is given no positive interval.
const DefaultSettleInterval = 5 * time.Second

// Round is one committed settlement.
type Round struct {
	ID          uuid.UUID         `json:"id"`
	SettledAt   time.Time         `json:"settled_at"`
	Settlements []core.Settlement `json:"settlements"`
	State       core.State        `json:"state"`
}

func (r *Round) Cleared() int {
	n := 0
	for _, s := range r.Settlements {
		if s.Cleared() {
			n++
		}
	}
	return n
}

type Ledger struct {
	name     string
	mu       sync.Mutex
	executor *core.Executor
	store    *ledgerdb.StateStore
	metrics  *metrics
	stats    Stats
	poisoned atomic.Bool
}

// New opens ledger name with the state last saved in store. Metrics are
// registered on reg unless it is nil.
func New(name string, store *ledgerdb.StateStore, reg prometheus.Registerer) (*Ledger, error) {
	state, err := store.Load(name)
	if err != nil {
		return nil, err
	}
	m := newMetrics(name)
	if reg != nil {
		if err := m.register(reg); err != nil {
			return nil, fmt.Errorf("register metrics of %s: %w", name, err)
		}
	}
	m.observeState(state)

	log.WithField("ledger", name).WithField("state", state).Info("ledger opened")
	return &Ledger{
		name:     name,
		executor: core.NewExecutorWithState(state),
		store:    store,
		metrics:  m,
	}, nil
}

func (l *Ledger) Name() string {
	return l.name
}

// Submit schedules tx. It returns core.ErrRejected when admission fails.
func (l *Ledger) Submit(tx types.Transaction) error {
	if l.poisoned.Load() {
		return ErrInvariantBroken
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	// a settle holding the lock may have poisoned the ledger meanwhile
	if l.poisoned.Load() {
		return ErrInvariantBroken
	}

	err := l.executor.Schedule(tx)
	outcome := "admitted"
	if err != nil {
		outcome = "rejected"
		l.stats.Rejected.Inc()
	} else {
		l.stats.Admitted.Inc()
	}
	l.metrics.scheduled.WithLabelValues(tx.Target.String(), tx.Kind.Type.String(), outcome).Inc()
	l.metrics.pending.Set(float64(len(l.executor.Pending())))
	return err
}

// Settle settles everything submitted so far and saves the new state.
// If saving fails the round is still returned together with the error; the
// in-memory state stays ahead of the store until the next successful save.
func (l *Ledger) Settle() (*Round, error) {
	if l.poisoned.Load() {
		return nil, ErrInvariantBroken
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.poisoned.Load() {
		return nil, ErrInvariantBroken
	}

	settlements, err := l.settle()
	if err != nil {
		return nil, err
	}
	round := &Round{
		ID:          uuid.New(),
		SettledAt:   time.Now(),
		Settlements: settlements,
		State:       l.executor.State(),
	}
	l.record(round)

	if err := l.store.Save(l.name, round.State); err != nil {
		log.WithError(err).WithField("ledger", l.name).WithField("round", round.ID).Error("failed to persist state")
		return round, err
	}
	return round, nil
}

func (l *Ledger) settle() (settlements []core.Settlement, err error) {
	defer func() {
		if r := recover(); r != nil {
			violation, ok := r.(*types.InvariantViolation)
			if !ok {
				panic(r)
			}
			l.poisoned.Store(true)
			log.WithError(violation).WithField("ledger", l.name).Error("settlement broke a balance invariant")
			err = fmt.Errorf("%w: %v", ErrInvariantBroken, violation)
		}
	}()
	return l.executor.Settle(), nil
}

func (l *Ledger) record(round *Round) {
	cleared := 0
	for _, s := range round.Settlements {
		outcome := "applied"
		if s.Cleared() {
			outcome = "cleared"
			cleared++
		}
		tx := s.Transaction
		l.metrics.settled.WithLabelValues(tx.Target.String(), tx.Kind.Type.String(), outcome).Inc()
	}
	l.stats.Applied.Add(uint64(len(round.Settlements) - cleared))
	l.stats.Cleared.Add(uint64(cleared))
	l.stats.Rounds.Inc()
	l.metrics.rounds.Inc()
	l.metrics.pending.Set(0)
	l.metrics.observeState(round.State)

	log.WithFields(log.Fields{
		"ledger":  l.name,
		"round":   round.ID,
		"settled": len(round.Settlements),
		"cleared": cleared,
		"state":   round.State,
	}).Info("settlement round committed")
}

func (l *Ledger) State() core.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.executor.State()
}

func (l *Ledger) Pending() []types.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.executor.Pending()
}

func (l *Ledger) Stats() StatsSnapshot {
	return l.stats.Snapshot()
}

func (l *Ledger) Poisoned() bool {
	return l.poisoned.Load()
}

// Run settles every interval until ctx is done or the ledger is poisoned.
// Rounds with nothing pending are skipped. Each committed round is passed to
// onRound if it is not nil. A non-positive interval means DefaultSettleInterval.
func (l *Ledger) Run(ctx context.Context, interval time.Duration, onRound func(*Round)) {
	if interval <= 0 {
		log.WithField("ledger", l.name).WithField("interval", interval).
			Warn("settle interval must be positive, using default")
		interval = DefaultSettleInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.WithField("ledger", l.name).WithField("interval", interval).Info("settlement loop started")
	for {
		select {
		case <-ctx.Done():
			log.WithField("ledger", l.name).Info("settlement loop stopped")
			return
		case <-ticker.C:
			if len(l.Pending()) == 0 {
				continue
			}
			round, err := l.Settle()
			if errors.Is(err, ErrInvariantBroken) {
				log.WithError(err).WithField("ledger", l.name).Error("settlement loop aborted")
				return
			}
			if round != nil && onRound != nil {
				onRound(round)
			}
		}
	}
}
