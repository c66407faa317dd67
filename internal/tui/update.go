package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tinytelemetry/soclens/internal/poll"
	"github.com/tinytelemetry/soclens/internal/snapshot"
)

// Update handles messages
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouseEvent(msg)

	case ActionMsg:
		if msg.Action == ActionPushModal {
			if modal, ok := msg.Payload.(Modal); ok {
				m.PushModal(modal)
			}
		}
		return m, nil

	case pollTickMsg:
		return m, m.handlePollTick(msg)

	case pollResultMsg:
		m.handlePollResult(msg)
		return m, nil

	case sampleTickMsg:
		if !m.paused {
			m.controller.Sample()
		}
		return m, m.sampleTick()

	case SpinnerTickMsg:
		return m, m.spinnerTick()

	case exportDoneMsg:
		if msg.Err != nil {
			m.logger.Warn("export failed", zap.Error(msg.Err))
			m.setNotice("Export failed: " + msg.Err.Error())
		} else {
			m.logger.Info("exported charts", zap.Strings("paths", msg.Paths))
			m.setNotice(fmt.Sprintf("Exported %d charts to %s", len(msg.Paths), m.cfg.ExportDir))
		}
		return m, nil
	}

	return m, nil
}

// handlePollTick reschedules the resource's tick and starts a fetch unless
// one is still pending or polling is paused.
func (m *DashboardModel) handlePollTick(msg pollTickMsg) tea.Cmd {
	st, ok := m.sched.State(msg.Resource)
	if !ok {
		return nil
	}
	next := pollTick(msg.Resource, st.Interval)
	if m.paused {
		return next
	}

	gen, started := m.sched.Begin(msg.Resource)
	if !started {
		m.logger.Debug("tick skipped, fetch still pending", zap.String("resource", string(msg.Resource)))
		return next
	}
	return tea.Batch(next, m.fetchCmd(msg.Resource, gen, st.Timeout), m.spinnerTick())
}

func (m *DashboardModel) fetchCmd(r poll.Resource, gen uint64, timeout time.Duration) tea.Cmd {
	src := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res := pollResultMsg{Resource: r, Generation: gen}
		switch r {
		case poll.ResourceAlerts:
			res.Data, res.Err = src.FetchAlerts(ctx)
		case poll.ResourceStats:
			res.Data, res.Err = src.FetchStats(ctx)
		default:
			res.Err = fmt.Errorf("tui: no fetcher for resource %q", r)
		}
		return res
	}
}

// handlePollResult applies a fetch result if it is the current generation.
// A failure leaves the last accepted data in place.
func (m *DashboardModel) handlePollResult(msg pollResultMsg) {
	if !m.sched.Finish(msg.Resource, msg.Generation, msg.Err) {
		m.logger.Debug("discarding stale result",
			zap.String("resource", string(msg.Resource)),
			zap.Uint64("generation", msg.Generation))
		return
	}
	if msg.Err != nil {
		m.logger.Warn("fetch failed",
			zap.String("resource", string(msg.Resource)),
			zap.Uint64("generation", msg.Generation),
			zap.Error(msg.Err))
		return
	}
	if err := m.controller.Apply(msg.Data); err != nil {
		m.logger.Error("apply failed", zap.String("resource", string(msg.Resource)), zap.Error(err))
		return
	}
	m.clampSelections()
}

func (m *DashboardModel) exportCmd() tea.Cmd {
	st := m.controller.State()
	dir := m.cfg.ExportDir
	now := m.now()
	return func() tea.Msg {
		paths, err := snapshot.Export(dir, st.Traffic, st.Distribution, now)
		return exportDoneMsg{Paths: paths, Err: err}
	}
}

func (m *DashboardModel) setNotice(s string) {
	m.notice = s
	m.noticeAt = m.now()
}

// clampSelections keeps every deck selection inside its item range after
// data changes.
func (m *DashboardModel) clampSelections() {
	for i, d := range m.decks {
		if n := d.ItemCount(); m.deckSelIdx[i] >= n {
			m.deckSelIdx[i] = max(0, n-1)
		}
	}
}
