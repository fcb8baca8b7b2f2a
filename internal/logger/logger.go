package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// WriterHook writes entries of the given levels to Writer using the
// logger's formatter.
type WriterHook struct {
	Writer    io.Writer
	LogLevels []logrus.Level

	mu sync.Mutex
}

func (h *WriterHook) Levels() []logrus.Level {
	return h.LogLevels
}

func (h *WriterHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Bytes()
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.Writer.Write(line)
	return err
}

var (
	errorLevels = []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
	infoLevels  = []logrus.Level{logrus.InfoLevel, logrus.DebugLevel, logrus.TraceLevel}
)

// Setup configures the global logrus logger. Warnings and errors go to
// stderr, everything else to out. Commands that print results on stdout
// pass os.Stderr as out.
func Setup(level string, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	std := logrus.StandardLogger()
	std.ReplaceHooks(make(logrus.LevelHooks))
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	if out == os.Stderr {
		logrus.SetOutput(os.Stderr)
		return
	}
	logrus.SetOutput(io.Discard)
	logrus.AddHook(&WriterHook{Writer: out, LogLevels: infoLevels})
	logrus.AddHook(&WriterHook{Writer: os.Stderr, LogLevels: errorLevels})
}
