package tui

import (
	"fmt"
	"strings"

	"github.com/tinytelemetry/soclens/internal/projector"
	"github.com/tinytelemetry/soclens/internal/risk"
)

// NewIncidentModal builds the detail modal for one alert row.
func NewIncidentModal(row projector.AlertRow, baseURL string) *DetailModal {
	title := "Incident"
	if row.HasID {
		title = fmt.Sprintf("Incident #%d", row.ID)
	}
	m := NewDetailModal(title, formatIncident(row, baseURL))
	m.id = "incident"
	return m
}

func formatIncident(row projector.AlertRow, baseURL string) string {
	field := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-10s", label)) + value
	}

	lines := []string{
		field("Time", row.Time),
		field("Source IP", row.IP),
		field("Country", fmt.Sprintf("%s (%s)", row.Country, row.CountryCode)),
		field("Type", row.Type),
		field("Risk", colorStyle(row.BarColor).Render(fmt.Sprintf("%s/100 %s", row.RiskLabel(), strings.ToUpper(string(row.Tier))))),
		"",
		incidentSummary(row),
		"",
	}
	if row.HasID {
		lines = append(lines, field("Inspect", projector.IncidentURL(baseURL, row.ID)))
	} else {
		lines = append(lines, field("Inspect", helpStyle.Render("no incident id")))
	}
	return strings.Join(lines, "\n")
}

// incidentSummary phrases the alert in the backend's incident wording.
func incidentSummary(row projector.AlertRow) string {
	ip := row.IP
	if ip == "" {
		ip = "unknown"
	}
	return fmt.Sprintf("At %s, a %s severity security incident was detected from Source IP: %s. "+
		"The system identified the activity as '%s'. Calculated Risk Score is %s/100.",
		row.Time, risk.SummarySeverity(row.Risk), ip, row.Type, row.RiskLabel())
}
