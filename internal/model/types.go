package model

// AlertRecord is one alert as published by the backend's alert feed.
// Identity is ID; a record is never modified after it is received.
type AlertRecord struct {
	ID        int64   `json:"id"`
	Timestamp string  `json:"timestamp"` // "2006-01-02 15:04:05"
	IP        string  `json:"ip"`
	Country   string  `json:"country,omitempty"`
	Type      string  `json:"type"`
	Risk      float64 `json:"risk"`
}

// AlertPayload is the wire form of AlertRecord. Every field is optional so
// that a missing field can be told apart from a zero value.
type AlertPayload struct {
	ID        *int64   `json:"id"`
	Timestamp *string  `json:"timestamp"`
	IP        *string  `json:"ip"`
	Country   *string  `json:"country"`
	Type      *string  `json:"type"`
	Risk      *float64 `json:"risk"`
}

// StatsSnapshot is the aggregate view published by the stats feed.
type StatsSnapshot struct {
	Total       int64            `json:"total"`
	Critical    int64            `json:"critical"`
	AttackTypes map[string]int64 `json:"attack_types"`
}

// StatsPayload is the wire form of StatsSnapshot.
type StatsPayload struct {
	Total       *int64           `json:"total"`
	Critical    *int64           `json:"critical"`
	AttackTypes map[string]int64 `json:"attack_types"`
}

// MapPoint is one pre-computed geolocated alert source for the risk map.
type MapPoint struct {
	IP   string  `json:"ip" yaml:"ip"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
	Risk float64 `json:"risk" yaml:"risk"`
}

// Distribution holds one count per attack category in display order.
type Distribution [CategoryCount]int64

// Sum returns the total across all categories.
func (d Distribution) Sum() int64 {
	var total int64
	for _, v := range d {
		total += v
	}
	return total
}
