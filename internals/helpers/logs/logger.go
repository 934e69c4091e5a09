// file: internals/helpers/logs/logger.go
package logs

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var (
	mu      sync.RWMutex
	current log.Logger = log.NewNopLogger()
)

// New membuat logger logfmt dengan filter level ("debug"|"info"|"warn"|"error").
// Level tidak dikenal → info.
func New(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, levelOption(lvl))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.Caller(3))
	return logger
}

// Init memasang logger global (stderr). Dipanggil sekali di main.
func Init(lvl string) log.Logger {
	l := New(os.Stderr, lvl)
	mu.Lock()
	current = l
	mu.Unlock()
	return l
}

// Logger mengembalikan logger global; sebelum Init → nop.
func Logger() log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// ValidLevel dipakai config untuk fail-fast.
func ValidLevel(lvl string) bool {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func levelOption(lvl string) level.Option {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
