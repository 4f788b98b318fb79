package probe

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/okian/bfhl/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initializes the global logger. With logFile set, lines go to
// stdout and the file.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return errors.Wrap(err, "initialize logger")
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the probe.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `bfhl probe
==========

Sends generated requests to a running bfhl service and checks every
response envelope against locally computed answers.

Usage:
  bfhl-probe [options]

Options:
  -url string        Base URL of the service (default "http://localhost:3000")
  -cases int         Number of requests to generate (default 1000)
  -workers int       Number of concurrent workers (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 15s)
  -seed uint         Generation seed; 0 uses the clock
  -skip-ai           Do not send AI questions
  -output string     Write the generated cases to this JSON file
  -log string        Also write log lines to this file
  -verbose           Log every mismatching case
  -help              Show this help message

Exit status is 1 when any response does not match.
`)
}
