package utils

import (
	"io"
	"io/ioutil"
	"log"
	"os"
)

// Logger bundles the levelled loggers used across the service.
type Logger struct {
	Info    *log.Logger
	Warning *log.Logger
	Error   *log.Logger
}

// NewLogger returns loggers prefixed with prefix. Info output is
// discarded unless verbose is set.
func NewLogger(prefix string, verbose bool) *Logger {
	var info io.Writer = ioutil.Discard
	if verbose {
		info = os.Stdout
	}
	return NewLoggerTo(prefix, info, os.Stderr)
}

// NewLoggerTo is NewLogger with explicit destinations.
func NewLoggerTo(prefix string, info, errs io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		Info:    log.New(info, prefix+": ", flags),
		Warning: log.New(errs, prefix+": WARNING: ", flags),
		Error:   log.New(errs, prefix+": ERROR: ", flags),
	}
}

// DiscardLogger drops everything.
func DiscardLogger() *Logger {
	return NewLoggerTo("", ioutil.Discard, ioutil.Discard)
}
