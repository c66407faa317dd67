package projector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/tinytelemetry/soclens/internal/model"
)

// DecodeAlerts decodes an alerts feed body. The body itself must be a JSON
// array; elements are decoded one by one so that a single bad element does
// not discard its neighbours. An undecodable element becomes an empty
// payload and is dropped later by ProjectAlerts.
func DecodeAlerts(body []byte) ([]model.AlertPayload, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("projector: decode alerts: %w: %v", model.ErrTransport, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("projector: decode alerts: %w: body is null", model.ErrTransport)
	}

	out := make([]model.AlertPayload, len(raw))
	for i, elem := range raw {
		var p model.AlertPayload
		if err := json.Unmarshal(elem, &p); err != nil {
			continue
		}
		out[i] = p
	}
	return out, nil
}

// DecodeStats decodes a stats feed body, which must be a JSON object.
// Counts are decoded one at a time: a bad total or critical count is
// treated as absent, attack_types keys outside the recognized categories
// are skipped, and a bad count under a recognized key becomes 0. Integral
// floats such as 3.0 are accepted.
func DecodeStats(body []byte) (model.StatsPayload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return model.StatsPayload{}, fmt.Errorf("projector: decode stats: %w: body is not an object", model.ErrTransport)
	}
	var raw struct {
		Total       json.RawMessage `json:"total"`
		Critical    json.RawMessage `json:"critical"`
		AttackTypes json.RawMessage `json:"attack_types"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return model.StatsPayload{}, fmt.Errorf("projector: decode stats: %w: %v", model.ErrTransport, err)
	}

	var p model.StatsPayload
	if n, ok := decodeCount(raw.Total); ok {
		p.Total = &n
	}
	if n, ok := decodeCount(raw.Critical); ok {
		p.Critical = &n
	}

	var types map[string]json.RawMessage
	if err := json.Unmarshal(raw.AttackTypes, &types); err != nil || types == nil {
		return p, nil
	}
	p.AttackTypes = make(map[string]int64, model.CategoryCount)
	for key, v := range types {
		if model.CategoryIndex(key) < 0 {
			continue
		}
		n, _ := decodeCount(v)
		p.AttackTypes[key] = n
	}
	return p, nil
}

// decodeCount reads one JSON count. ok is false for absent, null,
// non-numeric or fractional values.
func decodeCount(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil || n == "" {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}
