package dashboard

import (
	"go.uber.org/zap"

	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/projector"
)

// LogSinks returns a full sink set that writes each render as a structured
// log line. It backs the headless mode.
func LogSinks(logger *zap.Logger) Sinks {
	l := logger.Named("sink")
	return Sinks{
		Traffic: SinkFunc[[]float64](func(samples []float64) {
			l.Info("traffic", zap.Float64s("window", samples))
		}),
		Distribution: SinkFunc[model.Distribution](func(d model.Distribution) {
			fields := make([]zap.Field, 0, len(d))
			for i, info := range model.Categories {
				fields = append(fields, zap.Int64(string(info.Key), d[i]))
			}
			l.Info("distribution", fields...)
		}),
		Alerts: SinkFunc[[]projector.AlertRow](func(rows []projector.AlertRow) {
			l.Info("alerts", zap.Int("rows", len(rows)))
			for _, r := range rows {
				l.Info("alert",
					zap.String("time", r.Time),
					zap.String("ip", r.IP),
					zap.String("country", r.Country),
					zap.String("type", r.Type),
					zap.Float64("risk", r.Risk),
					zap.String("tier", string(r.Tier)),
					zap.String("link", r.Link))
			}
		}),
		Totals: SinkFunc[projector.Totals](func(t projector.Totals) {
			l.Info("totals", zap.Int64("total", t.Total), zap.Int64("critical", t.Critical))
		}),
		Map: SinkFunc[[]projector.Marker](func(markers []projector.Marker) {
			for _, m := range markers {
				l.Info("marker",
					zap.String("ip", m.IP),
					zap.Float64("lat", m.Lat),
					zap.Float64("lon", m.Lon),
					zap.String("color", m.Color))
			}
		}),
	}
}
