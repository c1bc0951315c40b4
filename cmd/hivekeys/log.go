package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
	"github.com/mahdiidarabi/hivekeys/pkg/batchverify"
	"github.com/mahdiidarabi/hivekeys/pkg/hivekeys"
	"github.com/mahdiidarabi/hivekeys/pkg/hiverpc"
)

// logWriter implements an io.Writer that outputs to stderr and, when
// enabled, to the log rotator.  Stdout is reserved for command output.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stderr.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

var (
	// backendLog is the logging backend used to create all subsystem
	// loggers.
	backendLog = slog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs.  It is nil until
	// initLogRotator is called with a log directory.
	logRotator *rotator.Rotator

	hkeyLog = backendLog.Logger("HKEY")
	btchLog = backendLog.Logger("BTCH")
	hrpcLog = backendLog.Logger("HRPC")
	hcliLog = backendLog.Logger("HCLI")
)

// Initialize package-global logger variables.
func init() {
	hivekeys.UseLogger(hkeyLog)
	batchverify.UseLogger(btchLog)
	hiverpc.UseLogger(hrpcLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]slog.Logger{
	"HKEY": hkeyLog,
	"BTCH": btchLog,
	"HRPC": hrpcLog,
	"HCLI": hcliLog,
}

// logFilename is the name of the log file inside the log directory.
const logFilename = "hivekeys.log"

// initLogRotator initializes the logging rotator to write logs to logFile and
// create roll files in the same directory.  It must be called before the
// package-global log rotator variables are used.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	logRotator = r
	return nil
}

// closeLogRotator flushes and closes the rotator if one is in use.
func closeLogRotator() {
	if logRotator != nil {
		logRotator.Close()
	}
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.  An unknown level leaves the loggers untouched and reports false.
func setLogLevels(logLevel string) bool {
	level, ok := slog.LevelFromString(logLevel)
	if !ok {
		return false
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
	return true
}
