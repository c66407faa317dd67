package tui

import (
	"fmt"
	"strings"
)

// NewHelpModal lists the key bindings.
func NewHelpModal(keys KeyMap) *DetailModal {
	var lines []string
	for _, b := range keys.helpBindings() {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("%-12s %s", h.Key, h.Desc))
	}
	lines = append(lines,
		"",
		"Alerts and stats are polled on independent timers. A failed fetch",
		"leaves the last accepted data on screen and is retried on the next tick.",
	)
	m := NewDetailModal("Help", strings.Join(lines, "\n"))
	m.id = "help"
	return m
}
