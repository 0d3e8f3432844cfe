package common

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the package-wide structured logger. The buffer pool manager and
// the disk managers log through it rather than fmt.Printf so a caller can
// redirect or level-filter output.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.DebugLevel)
	return l
}

// Debugf emits a debug-level trace line, gated by EnableDebug so callers
// like NewPage don't pay for formatting when tracing is off.
func Debugf(format string, args ...interface{}) {
	if EnableDebug {
		Log.Debugf(format, args...)
	}
}
