package translator

import (
	"os"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Package-wide debug switch for verbose translator logging.
var (
	// DebugLogsEnabled toggles translator debug logs.
	DebugLogsEnabled = false
)

func init() {
	if os.Getenv("EVMTRANS_DEBUG") == "1" || os.Getenv("EVMTRANS_DEBUG") == "true" {
		DebugLogsEnabled = true
	}
}

// EnableDebugLogs toggles translator debug logs.
func EnableDebugLogs(on bool) { DebugLogsEnabled = on }

func shouldLog() bool { return DebugLogsEnabled }

// TranslatorDebugWarn emits a warning only if debug logging is enabled.
func TranslatorDebugWarn(msg string, ctx ...interface{}) {
	if shouldLog() {
		ethlog.Warn(msg, ctx...)
	}
}

// TranslatorDebugInfo emits info only if debug logging is enabled.
func TranslatorDebugInfo(msg string, ctx ...interface{}) {
	if shouldLog() {
		ethlog.Info(msg, ctx...)
	}
}
