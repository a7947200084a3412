// Package logger wraps zap with key/value helpers that redact secrets and
// pseudonymize learner identifiers.
package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured, leveled logger.
type Logger struct {
	sugar    *zap.SugaredLogger
	redact   bool
	hashSalt string
}

// New builds a logger for mode "dev" (console) or "prod" (JSON).
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if lvl := os.Getenv("ASSESSOR_LOG_LEVEL"); lvl != "" {
		level, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return FromZap(z), nil
}

// FromZap wraps an existing zap logger. Redaction is on unless
// ASSESSOR_LOG_REDACTION is set to a false value.
func FromZap(z *zap.Logger) *Logger {
	l := &Logger{sugar: z.Sugar(), redact: true, hashSalt: os.Getenv("ASSESSOR_LOG_HASH_SALT")}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ASSESSOR_LOG_REDACTION"))) {
	case "0", "false", "no", "off":
		l.redact = false
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar(), redact: true}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, l.sanitize(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, l.sanitize(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, l.sanitize(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, l.sanitize(kv)...) }

// With returns a child logger carrying the given fields.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{sugar: l.sugar.With(l.sanitize(kv)...), redact: l.redact, hashSalt: l.hashSalt}
}

func (l *Logger) sanitize(kv []any) []any {
	if !l.redact || len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		out = append(out, key, l.sanitizeValue(strings.ToLower(key), kv[i+1]))
	}
	return out
}

func (l *Logger) sanitizeValue(key string, val any) any {
	switch {
	case isSecretKey(key):
		return "[REDACTED]"
	case isLearnerKey(key):
		return l.hash(val)
	default:
		return val
	}
}

func isSecretKey(key string) bool {
	for _, s := range []string{"token", "password", "secret", "authorization", "api_key"} {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

func isLearnerKey(key string) bool {
	return strings.Contains(key, "learner_id")
}

// hash returns a short salted digest so log lines for one learner can be
// correlated without exposing the id.
func (l *Logger) hash(val any) string {
	raw := strings.TrimSpace(fmt.Sprint(val))
	if raw == "" {
		return ""
	}
	h := sha256.New()
	h.Write([]byte(l.hashSalt))
	h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}
