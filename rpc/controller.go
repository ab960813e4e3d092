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
package rpc

import (
	"errors"
	"net/http"

	"github.com/annchain/settler/core"
	"github.com/annchain/settler/ledger"
	"github.com/annchain/settler/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type RpcController struct {
	Ledger   *ledger.Ledger
	Gatherer prometheus.Gatherer
	// Limiter throttles the ledger API per client. Nil means unlimited.
	Limiter *ClientLimiter
}

//ScheduleRequest for RPC request
type ScheduleRequest struct {
	Target string `json:"target" binding:"required"`
	Kind   string `json:"kind" binding:"required"`
	Amount uint64 `json:"amount"`
}

func (r ScheduleRequest) transaction() (types.Transaction, error) {
	target, err := types.ParseTarget(r.Target)
	if err != nil {
		return types.Transaction{}, err
	}
	kind, err := types.ParseKindType(r.Kind)
	if err != nil {
		return types.Transaction{}, err
	}
	tx := types.NewTransaction(target, types.TransactionKind{Type: kind, Amount: r.Amount})
	if err := tx.Validate(); err != nil {
		return types.Transaction{}, err
	}
	return tx, nil
}

type LedgerStatus struct {
	Name     string               `json:"name"`
	Poisoned bool                 `json:"poisoned"`
	Pending  int                  `json:"pending"`
	State    core.State           `json:"state"`
	Stats    ledger.StatsSnapshot `json:"stats"`
}

func Response(c *gin.Context, status int, err error, data interface{}) {
	var msg string
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, gin.H{
		"err":  msg,
		"data": data,
	})
}

// Schedule admits one transaction: 200 when admitted, 409 when rejected by
// its limit check, 400 when malformed.
func (rpc *RpcController) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}
	tx, err := req.transaction()
	if err != nil {
		Response(c, http.StatusBadRequest, err, nil)
		return
	}
	err = rpc.Ledger.Submit(tx)
	switch {
	case err == nil:
		Response(c, http.StatusOK, nil, tx)
	case errors.Is(err, core.ErrRejected):
		Response(c, http.StatusConflict, err, tx)
	case errors.Is(err, ledger.ErrInvariantBroken):
		Response(c, http.StatusServiceUnavailable, err, nil)
	default:
		logrus.WithError(err).WithField("tx", tx).Error("unexpected submit error")
		Response(c, http.StatusInternalServerError, err, nil)
	}
}

func (rpc *RpcController) Settle(c *gin.Context) {
	round, err := rpc.Ledger.Settle()
	switch {
	case err == nil:
		Response(c, http.StatusOK, nil, round)
	case errors.Is(err, ledger.ErrInvariantBroken):
		Response(c, http.StatusServiceUnavailable, err, nil)
	default:
		// settled in memory but not persisted
		Response(c, http.StatusInternalServerError, err, round)
	}
}

func (rpc *RpcController) State(c *gin.Context) {
	Response(c, http.StatusOK, nil, rpc.Ledger.State())
}

func (rpc *RpcController) Pending(c *gin.Context) {
	Response(c, http.StatusOK, nil, rpc.Ledger.Pending())
}

func (rpc *RpcController) Status(c *gin.Context) {
	Response(c, http.StatusOK, nil, LedgerStatus{
		Name:     rpc.Ledger.Name(),
		Poisoned: rpc.Ledger.Poisoned(),
		Pending:  len(rpc.Ledger.Pending()),
		State:    rpc.Ledger.State(),
		Stats:    rpc.Ledger.Stats(),
	})
}

func (rpc *RpcController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func (rpc *RpcController) metricsHandler() gin.HandlerFunc {
	gatherer := rpc.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
