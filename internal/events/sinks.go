package events

import (
	"log/slog"

	"github.com/fastprodman/coinledger/internal/infra/metrics"
)

type logSink struct{ log *slog.Logger }

// LogSink writes every event as a structured log record. Error events are
// logged at WARN.
func LogSink(log *slog.Logger) Sink {
	if log == nil {
		log = slog.Default()
	}
	return logSink{log: log}
}

func (s logSink) Emit(e Event) {
	attrs := []any{
		"event_id", e.ID.String(),
		"identity", e.Identity,
		"at", e.At,
	}
	if e.Platform != "" {
		attrs = append(attrs, "platform", e.Platform)
	}
	if e.ProductID != "" {
		attrs = append(attrs, "product_id", e.ProductID)
	}
	if e.Amount != 0 {
		attrs = append(attrs, "amount", e.Amount)
	}

	if e.Err != nil {
		s.log.Warn(e.Name, append(attrs, "error", e.Err.Error())...)
		return
	}

	s.log.Info(e.Name, attrs...)
}

// MetricsSink counts events by name.
func MetricsSink() Sink {
	m := metrics.Events()
	return SinkFunc(func(e Event) { m.Emitted(e.Name) })
}
