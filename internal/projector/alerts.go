package projector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biter777/countries"

	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/risk"
)

// UnknownCountry is shown when an alert carries no country.
const UnknownCountry = "Unknown"

// AlertRow is the table-ready projection of one alert.
type AlertRow struct {
	ID          int64
	HasID       bool
	Time        string
	IP          string
	Country     string
	CountryCode string
	Type        string
	Risk        float64
	Tier        risk.Tier
	BarColor    string
	RowClass    string
	Link        string
}

// RiskLabel formats the risk score for display.
func (r AlertRow) RiskLabel() string {
	return strconv.FormatFloat(r.Risk, 'f', -1, 64)
}

// ProjectAlerts converts at most limit records, in the order received, into
// table rows. Records without a timestamp time part or without a risk score
// are dropped; the number dropped is returned alongside the rows.
func ProjectAlerts(records []model.AlertPayload, limit int) ([]AlertRow, int) {
	if limit <= 0 || len(records) == 0 {
		return []AlertRow{}, 0
	}
	if len(records) > limit {
		records = records[:limit]
	}

	rows := make([]AlertRow, 0, len(records))
	dropped := 0
	for _, rec := range records {
		row, err := projectAlert(rec)
		if err != nil {
			dropped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, dropped
}

func projectAlert(rec model.AlertPayload) (AlertRow, error) {
	if rec.Timestamp == nil {
		return AlertRow{}, fmt.Errorf("projector: alert: %w: missing timestamp", model.ErrMalformed)
	}
	_, clock, ok := strings.Cut(*rec.Timestamp, " ")
	if !ok || clock == "" {
		return AlertRow{}, fmt.Errorf("projector: alert: %w: timestamp %q has no time part", model.ErrMalformed, *rec.Timestamp)
	}
	if rec.Risk == nil {
		return AlertRow{}, fmt.Errorf("projector: alert: %w: missing risk", model.ErrMalformed)
	}

	class := risk.Classify(*rec.Risk)
	row := AlertRow{
		Time:     clock,
		IP:       deref(rec.IP),
		Country:  deref(rec.Country),
		Type:     deref(rec.Type),
		Risk:     *rec.Risk,
		Tier:     class.Tier,
		BarColor: class.BarColor,
		RowClass: class.RowClass,
	}
	if row.Country == "" {
		row.Country = UnknownCountry
	}
	row.CountryCode = countryCode(row.Country)
	if rec.ID != nil {
		row.ID = *rec.ID
		row.HasID = true
		row.Link = IncidentPath(row.ID)
	}
	return row, nil
}

// countryCode returns the ISO 3166-1 alpha-2 code for a country name, or
// "--" when the name is not a recognized country.
func countryCode(name string) string {
	code := countries.ByName(name)
	if code == countries.Unknown {
		return "--"
	}
	return code.Alpha2()
}

// IncidentPath returns the backend path of an alert's incident page.
func IncidentPath(id int64) string {
	return "/incident/" + strconv.FormatInt(id, 10)
}

// IncidentURL joins the backend base URL with an alert's incident path.
func IncidentURL(base string, id int64) string {
	return strings.TrimRight(base, "/") + IncidentPath(id)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
