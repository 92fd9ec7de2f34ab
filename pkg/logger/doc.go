// Package logger provides structured logging for twtimg.
//
// It wraps zerolog behind a small Logger interface. Console output is
// human-readable and goes to stderr; when a log file is configured, JSON lines
// are also written to it through lumberjack, which rotates by size and age.
//
//	err := logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("user", "nasa")
//	log.InfoWithFields("page processed", map[string]interface{}{"tweets": 199})
//
// Tests inject NewTestLogger and assert on the captured messages, or NewNopLogger
// when the output is irrelevant.
package logger
