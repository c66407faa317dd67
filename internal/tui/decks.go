package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/soclens/internal/dashboard"
	"github.com/tinytelemetry/soclens/internal/poll"
)

// Deck is one dashboard panel. Decks also implement dashboard.Sink for
// their view model; Render stores the model and Draw lays it out.
type Deck interface {
	ID() string
	Title() string
	Resource() poll.Resource // feed the deck depends on, "" for none
	Draw(ctx ViewContext, width, height int, active bool, selIdx int) string
	ContentLines(ctx ViewContext) int
	ItemCount() int
	OnSelect(ctx ViewContext, selIdx int) tea.Cmd // returns nil or ActionMsg
}

// Decks is the full set of decks mounted on the dashboard.
type Decks struct {
	Traffic      *TrafficDeck
	Distribution *DistributionDeck
	Totals       *TotalsDeck
	Alerts       *AlertsDeck
	Map          *MapDeck // nil when no map points are available
}

// NewDecks creates the decks. The map deck is only created when withMap is
// set. baseURL is used for incident links.
func NewDecks(baseURL string, withMap bool) *Decks {
	d := &Decks{
		Traffic:      NewTrafficDeck(),
		Distribution: NewDistributionDeck(),
		Totals:       NewTotalsDeck(),
		Alerts:       NewAlertsDeck(baseURL),
	}
	if withMap {
		d.Map = NewMapDeck()
	}
	return d
}

// Sinks exposes the decks as controller sinks.
func (d *Decks) Sinks() dashboard.Sinks {
	s := dashboard.Sinks{
		Traffic:      d.Traffic,
		Distribution: d.Distribution,
		Alerts:       d.Alerts,
		Totals:       d.Totals,
	}
	if d.Map != nil {
		s.Map = d.Map
	}
	return s
}

// List returns the decks in grid order.
func (d *Decks) List() []Deck {
	list := []Deck{d.Traffic, d.Distribution, d.Alerts, d.Totals}
	if d.Map != nil {
		list = append(list, d.Map)
	}
	return list
}

// deckTitleWithBadges appends pause/error badges to a deck title based on ViewContext.
func deckTitleWithBadges(title string, ctx ViewContext) string {
	if ctx.Paused {
		title += " ⏸"
	}
	if ctx.DeckLastError != "" {
		title += " ⚠"
	}
	return title
}
