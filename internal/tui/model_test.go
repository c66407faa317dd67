package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tinytelemetry/soclens/internal/dashboard"
	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/poll"
)

type fakeFeed struct {
	mu         sync.Mutex
	alerts     []model.AlertPayload
	stats      model.StatsPayload
	alertsErr  error
	statsErr   error
	alertCalls int
	statsCalls int
}

func (f *fakeFeed) FetchAlerts(_ context.Context) ([]model.AlertPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alertCalls++
	return f.alerts, f.alertsErr
}

func (f *fakeFeed) FetchStats(_ context.Context) (model.StatsPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	return f.stats, f.statsErr
}

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func testAlert(id int64, r float64) model.AlertPayload {
	return model.AlertPayload{
		ID:        i64(id),
		Timestamp: str("2026-02-03 04:05:06"),
		IP:        str("185.220.101.9"),
		Country:   str("Germany"),
		Type:      str("malware"),
		Risk:      f64(r),
	}
}

func newTestModel(t *testing.T, feed *fakeFeed) (*DashboardModel, *Decks, *poll.Scheduler) {
	t.Helper()
	sched, err := poll.NewScheduler([]poll.ResourceConfig{
		{Resource: poll.ResourceAlerts, Interval: 5 * time.Second, Timeout: 4 * time.Second},
		{Resource: poll.ResourceStats, Interval: 5 * time.Second, Timeout: 4 * time.Second},
	}, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	decks := NewDecks("http://backend:5000", true)
	ctrl := dashboard.New(dashboard.Config{WindowSize: 10}, decks.Sinks(), zap.NewNop())
	ctrl.Start([]model.MapPoint{{IP: "185.220.101.9", Lat: 52.5, Lon: 13.4, Risk: 92}})

	m := NewDashboardModel(Config{ExportDir: t.TempDir()}, decks, ctrl, sched, feed, zap.NewNop())
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	return m, decks, sched
}

func TestAlertsFailureDoesNotBlockStats(t *testing.T) {
	t.Parallel()
	feed := &fakeFeed{
		alertsErr: errors.New("transport failure: connection refused"),
		stats: model.StatsPayload{
			Total:       i64(12),
			Critical:    i64(2),
			AttackTypes: map[string]int64{"malware": 1, "normal": 11},
		},
	}
	m, decks, sched := newTestModel(t, feed)

	// Tick K: alerts fails.
	gen, ok := sched.Begin(poll.ResourceAlerts)
	if !ok {
		t.Fatal("alerts fetch did not start")
	}
	m.Update(m.fetchCmd(poll.ResourceAlerts, gen, time.Second)())

	// Tick K+1: stats succeeds.
	gen, ok = sched.Begin(poll.ResourceStats)
	if !ok {
		t.Fatal("stats fetch did not start")
	}
	m.Update(m.fetchCmd(poll.ResourceStats, gen, time.Second)())

	if want := (model.Distribution{0, 0, 0, 1, 11}); decks.Distribution.dist != want {
		t.Fatalf("distribution = %v, want %v", decks.Distribution.dist, want)
	}
	if decks.Totals.totals.Total != 12 || decks.Totals.totals.Critical != 2 {
		t.Fatalf("totals = %+v", decks.Totals.totals)
	}
	alerts, _ := sched.State(poll.ResourceAlerts)
	if alerts.LastTickOK || alerts.InFlight {
		t.Fatalf("alerts state = %+v, want failed and idle", alerts)
	}
	if feed.alertCalls != 1 || feed.statsCalls != 1 {
		t.Fatalf("calls = %d alerts, %d stats", feed.alertCalls, feed.statsCalls)
	}
}

func TestFailedFetchKeepsLastAcceptedAlerts(t *testing.T) {
	t.Parallel()
	feed := &fakeFeed{alerts: []model.AlertPayload{testAlert(1, 90), testAlert(2, 30)}}
	m, decks, sched := newTestModel(t, feed)

	gen, _ := sched.Begin(poll.ResourceAlerts)
	m.Update(m.fetchCmd(poll.ResourceAlerts, gen, time.Second)())
	if len(decks.Alerts.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(decks.Alerts.rows))
	}

	feed.mu.Lock()
	feed.alertsErr = errors.New("boom")
	feed.mu.Unlock()
	gen, _ = sched.Begin(poll.ResourceAlerts)
	m.Update(m.fetchCmd(poll.ResourceAlerts, gen, time.Second)())

	if len(decks.Alerts.rows) != 2 {
		t.Fatalf("failed fetch changed the table: %d rows", len(decks.Alerts.rows))
	}
	view := m.View()
	if !strings.Contains(view, "boom") {
		t.Fatal("alerts deck does not show the fetch error")
	}
}

func TestPollTickSkipsWhileInFlight(t *testing.T) {
	t.Parallel()
	m, _, sched := newTestModel(t, &fakeFeed{})

	if _, ok := sched.Begin(poll.ResourceStats); !ok {
		t.Fatal("Begin failed")
	}
	if cmd := m.handlePollTick(pollTickMsg{Resource: poll.ResourceStats}); cmd == nil {
		t.Fatal("tick was not rescheduled")
	}
	st, _ := sched.State(poll.ResourceStats)
	if st.Skipped != 1 || st.Generation != 1 {
		t.Fatalf("state = %+v, want one skip and no new generation", st)
	}
}

func TestPausedTicksDoNotFetch(t *testing.T) {
	t.Parallel()
	m, _, sched := newTestModel(t, &fakeFeed{})

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.paused {
		t.Fatal("space did not pause")
	}
	m.handlePollTick(pollTickMsg{Resource: poll.ResourceAlerts})
	if st, _ := sched.State(poll.ResourceAlerts); st.Generation != 0 {
		t.Fatalf("paused tick started a fetch: %+v", st)
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	t.Parallel()
	feed := &fakeFeed{alerts: []model.AlertPayload{testAlert(1, 90)}}
	m, decks, sched := newTestModel(t, feed)

	gen, _ := sched.Begin(poll.ResourceAlerts)
	msg := m.fetchCmd(poll.ResourceAlerts, gen, time.Second)()
	sched.Finish(poll.ResourceAlerts, gen, nil)
	sched.Begin(poll.ResourceAlerts)

	m.Update(msg)
	if len(decks.Alerts.rows) != 0 {
		t.Fatal("stale result was applied")
	}
}

func TestEnterOnAlertOpensIncident(t *testing.T) {
	t.Parallel()
	feed := &fakeFeed{alerts: []model.AlertPayload{testAlert(7, 92)}}
	m, _, sched := newTestModel(t, feed)

	gen, _ := sched.Begin(poll.ResourceAlerts)
	m.Update(m.fetchCmd(poll.ResourceAlerts, gen, time.Second)())

	for i, d := range m.decks {
		if d.ID() == "alerts" {
			m.focusDeck(i)
		}
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	m.Update(cmd())

	top := m.TopModal()
	if top == nil || top.ID() != "incident" {
		t.Fatalf("top modal = %v, want incident", top)
	}
	view := m.View()
	for _, want := range []string{"Incident #7", "CRITICAL", "http://backend:5000/incident/7", "DE"} {
		if !strings.Contains(view, want) {
			t.Errorf("incident view missing %q", want)
		}
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.HasModal() {
		t.Fatal("esc did not close the modal")
	}
}

func TestExportWritesCharts(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(t, &fakeFeed{})

	msg := m.exportCmd()()
	done, ok := msg.(exportDoneMsg)
	if !ok || done.Err != nil || len(done.Paths) != 2 {
		t.Fatalf("export = %+v", msg)
	}
	m.Update(done)
	if !strings.Contains(m.notice, "Exported 2 charts") {
		t.Fatalf("notice = %q", m.notice)
	}
}

func TestViewShowsAllDecks(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(t, &fakeFeed{})

	view := m.View()
	for _, want := range []string{"Attack Distribution", "Recent Alerts", "Totals", "Risk Map"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing deck %q", want)
		}
	}
}

func TestTabCyclesDecks(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(t, &fakeFeed{})

	for i := 1; i <= len(m.decks); i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		if want := i % len(m.decks); m.activeDeckIdx != want {
			t.Fatalf("after %d tabs active = %d, want %d", i, m.activeDeckIdx, want)
		}
	}
}

func TestSmallTerminal(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(t, &fakeFeed{})
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if got := m.View(); !strings.Contains(got, "Terminal too small") {
		t.Fatalf("View() = %q", got)
	}
}
