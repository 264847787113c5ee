package engine

import "log/slog"

// Attrs returns structured logging attributes describing err: its kind, the
// raw engine status when there is one, and the message.
func Attrs(err error) []any {
	attrs := []any{slog.String("kind", KindOf(err).String())}
	if st, ok := StatusOf(err); ok {
		attrs = append(attrs, slog.Int("status", int(st)))
	}
	return append(attrs, slog.String("error", err.Error()))
}
