package cmd

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/annchain/settler/common/files"
	"github.com/annchain/settler/common/utilfuncs"
	"github.com/annchain/settler/mylog"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	LogDir    = "log"
	DataDir   = "data"
	ConfigDir = "config"
)

func DumpStack() {
	if err := recover(); err != nil {
		logrus.WithField("obj", err).Error("Fatal error occurred. Program will exit")
		var buf bytes.Buffer
		stack := debug.Stack()
		buf.WriteString(fmt.Sprintf("Panic: %v\n", err))
		buf.Write(stack)
		dumpName := "dump_" + time.Now().Format("20060102-150405")
		nerr := ioutil.WriteFile(dumpName, buf.Bytes(), 0644)
		if nerr != nil {
			fmt.Println("write dump file error", nerr)
			fmt.Println(buf.String())
		}
		logrus.WithField("stack ", buf.String()).Error("panic")
		os.Exit(1)
	}
}

func logFolder() string {
	return files.FolderOrDefault(viper.GetString("dir.root"), viper.GetString("dir.log"), LogDir)
}

func dataFolder() string {
	return files.FolderOrDefault(viper.GetString("dir.root"), viper.GetString("dir.data"), DataDir)
}

func configFolder() string {
	return files.FolderOrDefault(viper.GetString("dir.root"), viper.GetString("dir.config"), ConfigDir)
}

func parseLevel(level string) logrus.Level {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		fmt.Println("Unknown level: ", level, "Set to INFO")
		return logrus.InfoLevel
	}
	return l
}

// initLogger uses viper to get the log path and level. It should be called by all other commands
func initLogger() {
	doStdout := viper.GetBool("log.stdout")
	doFile := viper.GetBool("log.file")
	logdir := logFolder()

	var writers []io.Writer
	if doFile {
		folderPath, err := filepath.Abs(logdir)
		utilfuncs.PanicIfError(err, fmt.Sprintf("Error on parsing log path: %s", logdir))

		abspath, err := filepath.Abs(path.Join(logdir, "run"))
		utilfuncs.PanicIfError(err, fmt.Sprintf("Error on parsing log file path: %s", logdir))

		err = os.MkdirAll(folderPath, os.ModePerm)
		utilfuncs.PanicIfError(err, fmt.Sprintf("Error on creating log dir: %s", folderPath))
		writers = append(writers, mylog.RotateLog(abspath))
		fmt.Println("Will be logged to " + abspath + ".log")
	}
	if doStdout {
		writers = append(writers, os.Stdout)
	}
	switch len(writers) {
	case 0:
		logrus.SetOutput(ioutil.Discard)
	case 1:
		logrus.SetOutput(writers[0])
	default:
		logrus.SetOutput(io.MultiWriter(writers...))
	}

	logrus.SetLevel(parseLevel(viper.GetString("log.level")))

	Formatter := new(logrus.TextFormatter)
	Formatter.ForceColors = doStdout && !doFile
	Formatter.TimestampFormat = "2006-01-02 15:04:05.000000"
	Formatter.FullTimestamp = true
	logrus.StandardLogger().SetFormatter(Formatter)

	if viper.GetBool("log.line_number") {
		logrus.SetReportCaller(true)
	}
	if viper.GetBool("multifile_by_level") && doFile {
		writerMap := lfshook.WriterMap{}
		for _, level := range logrus.AllLevels {
			levelLog, _ := filepath.Abs(path.Join(logdir, level.String()))
			writerMap[level] = mylog.RotateLog(levelLog)
		}
		logrus.AddHook(lfshook.NewHook(writerMap, Formatter))
	}
	if doFile {
		mylog.InitRoundLogger(logdir)
	}
	logrus.Debug("Logger initialized.")
}

func ensureFolder() {
	root := viper.GetString("dir.root")
	err := files.MkDirIfNotExists(root)
	utilfuncs.PanicIfError(err, "creating root folder")

	for _, folder := range []string{logFolder(), dataFolder(), configFolder()} {
		err = files.MkDirIfNotExists(folder)
		utilfuncs.PanicIfError(err, "creating folder: "+folder)
	}
}
