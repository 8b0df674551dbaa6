// Package logging initialises the process-wide structured logger, the
// same "one small package, one init call at startup" shape as the
// log.Printf-based logging.go this module grew from — upgraded to
// log/slog so orchestrator error reports can carry structured fields
// (err_kind, session_id, station_id) instead of formatted strings.
package logging

import (
	"log/slog"
	"os"
)

// Init installs a JSON slog handler on os.Stdout as the default logger,
// at the given minimum level.
func Init(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// ErrKind attaches an orchestrator error kind to a log record as a
// structured field, rather than folding it into the message string.
func ErrKind(kind string) slog.Attr {
	return slog.String("err_kind", kind)
}
