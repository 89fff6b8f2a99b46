// Package logging sets up the standard logger of the vtester command.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var fileLogger *lumberjack.Logger

// Init makes the standard logger write to stderr and, if logFile is not
// empty, to a rotating log file. Verbose logs carry the source location.
func Init(logFile string, verbose bool) error {
	flags := log.LstdFlags
	if verbose {
		flags |= log.Lmicroseconds | log.Lshortfile
	}

	log.SetFlags(flags)

	if logFile == "" {
		log.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return err
	}

	fileLogger = &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	log.SetOutput(io.MultiWriter(os.Stderr, fileLogger))

	return nil
}

// New creates a logger that shares the output and flags of the standard
// logger. The prefix is placed after the timestamp, right before the message.
func New(prefix string) *log.Logger {
	return log.New(log.Writer(), prefix, log.Flags()|log.Lmsgprefix)
}

// Close closes the log file and sends the standard logger back to stderr.
func Close() error {
	log.SetOutput(os.Stderr)

	if fileLogger == nil {
		return nil
	}

	err := fileLogger.Close()
	fileLogger = nil

	return err
}
