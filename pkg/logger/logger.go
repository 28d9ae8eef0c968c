package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. Init must run before it is used; a nop
// logger is installed as a fallback so early calls never panic.
var Log = zap.NewNop()

// Init configures the global logger. Level and format may come from config;
// empty values fall back to WORKSTREAM_LOG_LEVEL / WORKSTREAM_LOG_FORMAT and
// finally to info-level text output.
func Init(level, format string) {
	if level == "" {
		level = os.Getenv("WORKSTREAM_LOG_LEVEL")
	}
	if format == "" {
		format = os.Getenv("WORKSTREAM_LOG_FORMAT")
	}

	var lv zapcore.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = zapcore.DebugLevel
	case "warn", "warning":
		lv = zapcore.WarnLevel
	case "error":
		lv = zapcore.ErrorLevel
	default:
		lv = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lv)
	Log = zap.New(core)
}

// Sync flushes buffered log entries; errors from stdout sync are ignored.
func Sync() { _ = Log.Sync() }
