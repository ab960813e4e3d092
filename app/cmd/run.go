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
package cmd

import (
	"context"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/annchain/settler/common/goroutine"
	"github.com/annchain/settler/common/utilfuncs"
	"github.com/annchain/settler/ledger"
	"github.com/annchain/settler/ledgerdb"
	"github.com/annchain/settler/mylog"
	"github.com/annchain/settler/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a settlement node",
	Long:  `Start a settlement node serving one ledger over http and settling it periodically`,
	Run: func(cmd *cobra.Command, args []string) {
		ensureFolder()
		initLogger()
		// init logs and other facilities before the node starts
		readConfig()
		writeConfig()
		goroutine.DumpDir = logFolder()

		log.WithField("pid", os.Getpid()).Info("settler node starting")
		node := newNode()
		node.Start()

		// prevent sudden stop. Do your clean up here
		var gracefulStop = make(chan os.Signal, 1)
		signal.Notify(gracefulStop, syscall.SIGTERM)
		signal.Notify(gracefulStop, syscall.SIGINT)

		sig := <-gracefulStop
		log.Warnf("caught sig: %+v", sig)
		log.Warn("Exiting... Please do no kill me")
		node.Stop()
		os.Exit(0)
	},
}

type node struct {
	db     *ledgerdb.LevelDB
	ledger *ledger.Ledger
	server *rpc.RpcServer
	cancel context.CancelFunc
	done   chan struct{}
}

func newNode() *node {
	db, err := ledgerdb.NewLevelDB(path.Join(dataFolder(), "ledger"),
		viper.GetInt("ledger.leveldb_cache"), viper.GetInt("ledger.leveldb_handles"))
	utilfuncs.PanicIfError(err, "open leveldb")

	store, err := ledgerdb.NewStateStore(db, viper.GetInt("ledger.cache_size"))
	utilfuncs.PanicIfError(err, "create state store")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	l, err := ledger.New(viper.GetString("ledger.name"), store, reg)
	utilfuncs.PanicIfError(err, "open ledger")

	n := &node{db: db, ledger: l, done: make(chan struct{})}
	if viper.GetBool("rpc.enabled") {
		n.server = &rpc.RpcServer{
			Controller: &rpc.RpcController{
				Ledger:   l,
				Gatherer: reg,
				Limiter:  rpc.NewClientLimiter(viper.GetFloat64("rpc.rate_limit"), viper.GetInt("rpc.rate_burst")),
			},
			Port: viper.GetInt("rpc.port"),
		}
		n.server.InitDefault()
	}
	return n
}

func (n *node) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	interval := viper.GetDuration("settle.interval")
	goroutine.New(func() {
		defer close(n.done)
		n.ledger.Run(ctx, interval, logRound)
	})
	if n.server != nil {
		n.server.Start()
		log.Info(n.server.Name() + " started")
	}
}

func (n *node) Stop() {
	if n.server != nil {
		n.server.Stop()
	}
	n.cancel()
	<-n.done
	n.db.Close()
}

func logRound(round *ledger.Round) {
	mylog.RoundLogger.WithFields(log.Fields{
		"state":   round.State.String(),
		"round":   round.ID.String(),
		"settled": len(round.Settlements),
		"cleared": round.Cleared(),
	}).Info("round")
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("ledger", "default", "Name of the ledger to serve")
	runCmd.Flags().Duration("settle-interval", 0, "Settlement interval, e.g. 5s")
	runCmd.Flags().Int("rpc-port", 8000, "Http port")
	runCmd.Flags().Bool("rpc-enabled", true, "Serve the http api")

	_ = viper.BindPFlag("ledger.name", runCmd.Flags().Lookup("ledger"))
	_ = viper.BindPFlag("settle.interval", runCmd.Flags().Lookup("settle-interval"))
	_ = viper.BindPFlag("rpc.port", runCmd.Flags().Lookup("rpc-port"))
	_ = viper.BindPFlag("rpc.enabled", runCmd.Flags().Lookup("rpc-enabled"))
}
