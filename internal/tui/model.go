package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tinytelemetry/soclens/internal/dashboard"
	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/poll"
)

// Config holds the dashboard's polling cadence and display settings.
type Config struct {
	SampleInterval time.Duration
	ExportDir      string
}

// ModalStackState holds the modal stack.
type ModalStackState struct {
	modalStack []Modal
}

// NavigationState holds deck focus and per-deck selection.
type NavigationState struct {
	activeDeckIdx int
	decks         []Deck
	deckSelIdx    []int
}

// DashboardModel is the bubbletea model for the SOC dashboard. All
// controller calls happen inside Update; fetches run as commands and come
// back as messages.
type DashboardModel struct {
	ModalStackState
	NavigationState

	width  int
	height int

	cfg        Config
	keys       KeyMap
	controller *dashboard.Controller
	sched      *poll.Scheduler
	source     model.FeedSource
	logger     *zap.Logger

	paused   bool
	notice   string // transient status message, e.g. export result
	noticeAt time.Time

	now func() time.Time
}

// pollTickMsg fires independently for each polled resource.
type pollTickMsg struct {
	Resource poll.Resource
	At       time.Time
}

// pollResultMsg carries a fetch result back to the update loop.
type pollResultMsg struct {
	Resource   poll.Resource
	Generation uint64
	Data       any
	Err        error
}

// sampleTickMsg drives the traffic sample source.
type sampleTickMsg time.Time

// SpinnerTickMsg triggers a re-render for loading spinners.
type SpinnerTickMsg struct{}

// exportDoneMsg reports the result of a PNG export.
type exportDoneMsg struct {
	Paths []string
	Err   error
}

// NewDashboardModel wires the decks, controller, scheduler and feed into a
// bubbletea model. The controller must render into decks.Sinks().
func NewDashboardModel(cfg Config, decks *Decks, controller *dashboard.Controller, sched *poll.Scheduler, source model.FeedSource, logger *zap.Logger) *DashboardModel {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = model.DefaultSampleInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	list := decks.List()
	return &DashboardModel{
		NavigationState: NavigationState{
			decks:      list,
			deckSelIdx: make([]int, len(list)),
		},
		cfg:        cfg,
		keys:       DefaultKeyMap(),
		controller: controller,
		sched:      sched,
		source:     source,
		logger:     logger.Named("tui"),
		now:        time.Now,
	}
}

// Init starts one tick per polled resource plus the sample tick.
func (m *DashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		func() tea.Msg { return tea.EnableMouseCellMotion() },
		m.sampleTick(),
	}
	for _, st := range m.sched.States() {
		cmds = append(cmds, pollTick(st.Resource, st.Interval))
	}
	return tea.Batch(cmds...)
}

func pollTick(r poll.Resource, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollTickMsg{Resource: r, At: t}
	})
}

func (m *DashboardModel) sampleTick() tea.Cmd {
	return tea.Tick(m.cfg.SampleInterval, func(t time.Time) tea.Msg {
		return sampleTickMsg(t)
	})
}

// PushModal pushes a modal onto the stack. Deduplicates by ID.
func (m *DashboardModel) PushModal(modal Modal) {
	for _, existing := range m.modalStack {
		if existing.ID() == modal.ID() {
			return
		}
	}
	m.modalStack = append(m.modalStack, modal)
}

// PopModal removes the topmost modal from the stack.
func (m *DashboardModel) PopModal() {
	if len(m.modalStack) > 0 {
		m.modalStack = m.modalStack[:len(m.modalStack)-1]
	}
}

// TopModal returns the topmost modal, or nil if the stack is empty.
func (m *DashboardModel) TopModal() Modal {
	if len(m.modalStack) == 0 {
		return nil
	}
	return m.modalStack[len(m.modalStack)-1]
}

// HasModal returns true if any modal is on the stack.
func (m *DashboardModel) HasModal() bool {
	return len(m.modalStack) > 0
}

// viewContext builds the ViewContext for deck idx.
func (m *DashboardModel) viewContext(idx int) ViewContext {
	ctx := ViewContext{ContentWidth: m.width, Paused: m.paused}
	if idx < 0 || idx >= len(m.decks) {
		return ctx
	}
	r := m.decks[idx].Resource()
	if r == "" {
		return ctx
	}
	if st, ok := m.sched.State(r); ok {
		ctx.DeckLastError = st.LastError
		ctx.DeckLoading = st.InFlight && st.LastOKAt.IsZero()
	}
	return ctx
}

// anyLoading returns true while a first fetch is still pending.
func (m *DashboardModel) anyLoading() bool {
	for _, st := range m.sched.States() {
		if st.InFlight && st.LastOKAt.IsZero() {
			return true
		}
	}
	return false
}

func (m *DashboardModel) spinnerTick() tea.Cmd {
	if !m.anyLoading() {
		return nil
	}
	return tea.Tick(120*time.Millisecond, func(_ time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}
