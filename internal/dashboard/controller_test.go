package dashboard

import (
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/tinytelemetry/soclens/internal/metrics"
	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/projector"
)

type recordSink[VM any] struct {
	calls int
	last  VM
}

func (r *recordSink[VM]) Render(vm VM) {
	r.calls++
	r.last = vm
}

type recorders struct {
	traffic      *recordSink[[]float64]
	distribution *recordSink[model.Distribution]
	alerts       *recordSink[[]projector.AlertRow]
	totals       *recordSink[projector.Totals]
	markers      *recordSink[[]projector.Marker]
}

func newRecorders() (recorders, Sinks) {
	r := recorders{
		traffic:      &recordSink[[]float64]{},
		distribution: &recordSink[model.Distribution]{},
		alerts:       &recordSink[[]projector.AlertRow]{},
		totals:       &recordSink[projector.Totals]{},
		markers:      &recordSink[[]projector.Marker]{},
	}
	return r, Sinks{
		Traffic:      r.traffic,
		Distribution: r.distribution,
		Alerts:       r.alerts,
		Totals:       r.totals,
		Map:          r.markers,
	}
}

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func alert(id int64, ts string, r float64) model.AlertPayload {
	return model.AlertPayload{
		ID:        i64(id),
		Timestamp: str(ts),
		IP:        str("10.0.0.1"),
		Type:      str("brute_force"),
		Risk:      f64(r),
	}
}

func TestStartRendersZeroState(t *testing.T) {
	t.Parallel()
	rec, sinks := newRecorders()
	c := New(Config{WindowSize: 4}, sinks, zap.NewNop())

	c.Start([]model.MapPoint{
		{IP: "1.2.3.4", Lat: 48.8, Lon: 2.3, Risk: 90},
		{IP: "10.0.0.1", Lat: 0, Lon: 0, Risk: 40},
	})

	if !reflect.DeepEqual(rec.traffic.last, []float64{0, 0, 0, 0}) {
		t.Fatalf("traffic = %v, want four zeros", rec.traffic.last)
	}
	if rec.distribution.last != (model.Distribution{}) || rec.distribution.calls != 1 {
		t.Fatalf("distribution = %v (%d calls)", rec.distribution.last, rec.distribution.calls)
	}
	if len(rec.alerts.last) != 0 || rec.alerts.calls != 1 {
		t.Fatalf("alerts = %v (%d calls)", rec.alerts.last, rec.alerts.calls)
	}
	if rec.totals.last != (projector.Totals{}) {
		t.Fatalf("totals = %+v", rec.totals.last)
	}
	if len(rec.markers.last) != 1 || rec.markers.last[0].Color != "#FF3B3B" {
		t.Fatalf("markers = %+v", rec.markers.last)
	}
}

func TestApplyStatsUpdatesDistributionAndTotals(t *testing.T) {
	t.Parallel()
	rec, sinks := newRecorders()
	c := New(Config{}, sinks, zap.NewNop())
	c.Start(nil)

	c.ApplyStats(model.StatsPayload{
		Total:       i64(12),
		Critical:    i64(2),
		AttackTypes: map[string]int64{"malware": 1, "normal": 11},
	})

	want := model.Distribution{0, 0, 0, 1, 11}
	if rec.distribution.last != want {
		t.Fatalf("distribution = %v, want %v", rec.distribution.last, want)
	}
	if rec.totals.last != (projector.Totals{Total: 12, Critical: 2}) {
		t.Fatalf("totals = %+v, want 12/2", rec.totals.last)
	}
	if st := c.State(); !st.StatsSeen || st.AlertsSeen {
		t.Fatalf("state flags = %+v", st)
	}
	// Stats alone must not redraw the table.
	if rec.alerts.calls != 1 {
		t.Fatalf("alerts rendered %d times, want 1", rec.alerts.calls)
	}
}

func TestApplyAlertsDropsMalformed(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	rec, sinks := newRecorders()
	c := New(Config{Metrics: m}, sinks, zap.NewNop())

	missingRisk := alert(3, "2026-01-01 10:00:03", 0)
	missingRisk.Risk = nil
	c.ApplyAlerts([]model.AlertPayload{
		alert(1, "2026-01-01 10:00:01", 95),
		missingRisk,
		alert(2, "2026-01-01 10:00:02", 20),
	})

	if len(rec.alerts.last) != 2 {
		t.Fatalf("rows = %d, want 2", len(rec.alerts.last))
	}
	if rec.alerts.last[0].Tier != "high" || rec.alerts.last[1].Tier != "low" {
		t.Fatalf("tiers = %s, %s", rec.alerts.last[0].Tier, rec.alerts.last[1].Tier)
	}
	if got := c.State().Malformed; got != 1 {
		t.Fatalf("malformed = %d, want 1", got)
	}
	if got := testutil.ToFloat64(m.MalformedRecords); got != 1 {
		t.Fatalf("malformed metric = %v, want 1", got)
	}
}

func TestApplyAlertsCapsRows(t *testing.T) {
	t.Parallel()
	rec, sinks := newRecorders()
	c := New(Config{AlertLimit: 8}, sinks, zap.NewNop())

	var records []model.AlertPayload
	for i := range 20 {
		records = append(records, alert(int64(i), "2026-01-01 10:00:00", 50))
	}
	c.ApplyAlerts(records)
	if len(rec.alerts.last) != 8 {
		t.Fatalf("rows = %d, want 8", len(rec.alerts.last))
	}
	if rec.alerts.last[0].ID != 0 || rec.alerts.last[7].ID != 7 {
		t.Fatal("rows are not the first eight in received order")
	}

	c.ApplyAlerts(nil)
	if len(rec.alerts.last) != 0 {
		t.Fatal("empty alert list did not clear the table")
	}
}

func TestNilSinksAreSkipped(t *testing.T) {
	t.Parallel()
	rec, sinks := newRecorders()
	sinks.Map = nil
	sinks.Alerts = nil
	c := New(Config{}, sinks, zap.NewNop())

	c.Start([]model.MapPoint{{IP: "1.1.1.1", Lat: 1, Lon: 1, Risk: 10}})
	c.ApplyAlerts([]model.AlertPayload{alert(1, "2026-01-01 10:00:00", 10)})

	if rec.markers.calls != 0 || rec.alerts.calls != 0 {
		t.Fatal("unmounted sinks were rendered")
	}
	if len(c.State().Alerts) != 1 {
		t.Fatal("state not updated when the table is unmounted")
	}
}

func TestSamplePushesWindow(t *testing.T) {
	t.Parallel()
	rec, sinks := newRecorders()
	c := New(Config{WindowSize: 3, Source: NewSynthetic(7)}, sinks, zap.NewNop())
	c.Start(nil)

	for range 5 {
		c.Sample()
	}
	got := rec.traffic.last
	if len(got) != 3 {
		t.Fatalf("window length = %d, want 3", len(got))
	}
	for _, v := range got {
		if v < 10 || v > 59 {
			t.Fatalf("sample %v outside [10, 59]", v)
		}
	}
}

func TestStatsDeltaSource(t *testing.T) {
	t.Parallel()
	rec, sinks := newRecorders()
	c := New(Config{WindowSize: 3, Source: &StatsDelta{}}, sinks, zap.NewNop())
	c.Start(nil)

	c.Sample() // no-op for stats-delta
	for _, total := range []int64{100, 104, 110, 3} {
		c.ApplyStats(model.StatsPayload{Total: i64(total)})
	}
	if want := []float64{4, 6, 0}; !reflect.DeepEqual(rec.traffic.last, want) {
		t.Fatalf("traffic = %v, want %v", rec.traffic.last, want)
	}
}

func TestSinksAreIdempotent(t *testing.T) {
	t.Parallel()
	stats := model.StatsPayload{Total: i64(5), Critical: i64(1), AttackTypes: map[string]int64{"ddos": 3}}
	records := []model.AlertPayload{alert(1, "2026-01-01 10:00:01", 81)}

	rec, sinks := newRecorders()
	c := New(Config{}, sinks, zap.NewNop())
	c.ApplyStats(stats)
	c.ApplyAlerts(records)
	first := c.State()
	firstDist, firstRows := rec.distribution.last, rec.alerts.last

	c.ApplyStats(stats)
	c.ApplyAlerts(records)
	if !reflect.DeepEqual(first, c.State()) {
		t.Fatal("reapplying the same snapshot changed state")
	}
	if rec.distribution.last != firstDist || !reflect.DeepEqual(rec.alerts.last, firstRows) {
		t.Fatal("reapplying the same snapshot changed sink output")
	}
	if firstDist != (model.Distribution{0, 3, 0, 0, 0}) {
		t.Fatalf("distribution = %v", firstDist)
	}
}

func TestApplyRoutesByType(t *testing.T) {
	t.Parallel()
	c := New(Config{}, Sinks{}, nil)

	if err := c.Apply(model.StatsPayload{Total: i64(3)}); err != nil {
		t.Fatalf("Apply(stats): %v", err)
	}
	if err := c.Apply([]model.AlertPayload{alert(1, "2026-01-01 00:00:01", 1)}); err != nil {
		t.Fatalf("Apply(alerts): %v", err)
	}
	if err := c.Apply("nope"); err == nil {
		t.Fatal("Apply accepted an unknown type")
	}
	st := c.State()
	if st.Totals.Total != 3 || len(st.Alerts) != 1 {
		t.Fatalf("state = %+v", st)
	}
}

func TestNewSampleSource(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"", SourceSynthetic, SourceStatsDelta} {
		if _, err := NewSampleSource(name, 1); err != nil {
			t.Errorf("NewSampleSource(%q): %v", name, err)
		}
	}
	if _, err := NewSampleSource("random", 1); err == nil {
		t.Error("unknown source accepted")
	}
}
