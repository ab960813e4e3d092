package goroutine

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

var running atomic.Int32

// DumpDir is where stack dumps of panicking goroutines are written.
var DumpDir = "."

// Running returns the number of goroutines started by New that are still alive.
func Running() int32 {
	return running.Load()
}

// New runs function in its own goroutine. A panic is dumped to a file and
// then re-raised.
func New(function func()) {
	running.Inc()
	go func() {
		defer running.Dec()
		defer DumpStack(true)
		function()
	}()
}

// WithRecover is New without re-raising the panic.
func WithRecover(function func()) {
	running.Inc()
	go func() {
		defer running.Dec()
		defer DumpStack(false)
		function()
	}()
}

// DumpStack must be deferred directly. It writes the stack of a recovered panic
// to a dump file and optionally panics again.
func DumpStack(rethrow bool) {
	if err := recover(); err != nil {
		logrus.WithField("obj", err).Error("fatal error occurred")
		var buf bytes.Buffer
		buf.WriteString(fmt.Sprintf("Panic: %v\n", err))
		buf.Write(debug.Stack())
		dumpName := filepath.Join(DumpDir, "dump_"+time.Now().Format("20060102-150405"))
		if werr := ioutil.WriteFile(dumpName, buf.Bytes(), 0644); werr != nil {
			logrus.WithError(werr).Error("failed to write dump file")
		}
		logrus.Errorf("panic %v ", buf.String())
		if rethrow {
			panic(err)
		}
	}
}
