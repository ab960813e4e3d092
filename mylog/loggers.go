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
package mylog

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/annchain/settler/common/utilfuncs"
	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/sirupsen/logrus"
)

const (
	MaxAge       = 7 * 24 * time.Hour
	RotationTime = 24 * time.Hour
)

// RoundLogger receives one line per committed settlement round when the
// node runs with a log folder. It discards everything until InitRoundLogger.
var RoundLogger = &logrus.Logger{
	Out:       ioutil.Discard,
	Formatter: new(logrus.JSONFormatter),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.InfoLevel,
}

// RotateLog opens abspath%Y%m%d%H%M.log rotated daily with abspath.log linked
// to the current file.
func RotateLog(abspath string) *rotatelogs.RotateLogs {
	logFile, err := rotatelogs.New(
		abspath+"%Y%m%d%H%M.log",
		rotatelogs.WithLinkName(abspath+".log"),
		rotatelogs.WithMaxAge(MaxAge),
		rotatelogs.WithRotationTime(RotationTime),
	)
	utilfuncs.PanicIfError(err, "err init log")
	return logFile
}

// InitLogger derives a logger from logger that additionally writes to a
// rotated file named outputFile under logdir. An empty logdir keeps the
// output of logger.
func InitLogger(logger *logrus.Logger, logdir string, outputFile string) *logrus.Logger {
	var writer io.Writer
	if logdir != "" {
		folderPath, err := filepath.Abs(logdir)
		utilfuncs.PanicIfError(err, fmt.Sprintf("Error on parsing log path: %s", logdir))

		abspath, err := filepath.Abs(path.Join(logdir, outputFile))
		utilfuncs.PanicIfError(err, fmt.Sprintf("Error on parsing log file path: %s", logdir))

		err = os.MkdirAll(folderPath, os.ModePerm)
		utilfuncs.PanicIfError(err, fmt.Sprintf("Error on creating log dir: %s", folderPath))

		logrus.WithField("path", abspath).Info("additional logger")
		writer = io.MultiWriter(logger.Out, RotateLog(abspath))
	} else {
		writer = logger.Out
	}
	return &logrus.Logger{
		Level:        logger.Level,
		Formatter:    logger.Formatter,
		Out:          writer,
		Hooks:        make(logrus.LevelHooks),
		ExitFunc:     logger.ExitFunc,
		ReportCaller: logger.ReportCaller,
	}
}

// InitRoundLogger points RoundLogger at logdir/rounds.
func InitRoundLogger(logdir string) {
	base := &logrus.Logger{
		Out:       ioutil.Discard,
		Formatter: new(logrus.JSONFormatter),
		Level:     logrus.InfoLevel,
	}
	RoundLogger = InitLogger(base, logdir, "rounds")
}

func LogInit(level logrus.Level) {
	Formatter := new(logrus.TextFormatter)
	Formatter.TimestampFormat = "15:04:05.000000"
	Formatter.FullTimestamp = true
	Formatter.ForceColors = true
	logrus.SetFormatter(Formatter)
	logrus.SetLevel(level)
}
