// Package simulate generates a synthetic stream of security alerts and
// keeps them for the mock backend.
package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/risk"
)

// TimestampLayout is the alert timestamp format served by the feed.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	sourceIPs = []string{
		"192.168.1.10", "10.0.0.5", "172.16.0.22",
		"103.45.22.1", "45.33.21.9", "67.22.90.5", "185.220.101.9",
		"192.168.1.15", "192.168.1.20",
	}
	users = []string{"admin", "root", "user1", "guest", "test_user"}
	ports = []int{22, 80, 443, 3306, 8080, 21}
)

// event is one detector rule: it fires with probability p per step.
type event struct {
	p          float64
	attackType model.Category
	detail     func(g *Generator, ip string) string
}

var events = []event{
	{0.30, model.CategoryBruteForce, func(g *Generator, ip string) string {
		return fmt.Sprintf("Failed login for user '%s' from %s", users[g.rng.IntN(len(users))], ip)
	}},
	{0.20, model.CategoryPortScan, func(g *Generator, ip string) string {
		return fmt.Sprintf("Port scan detected on port %d from %s", ports[g.rng.IntN(len(ports))], ip)
	}},
	{0.15, model.CategoryDDoS, func(g *Generator, ip string) string {
		return fmt.Sprintf("High traffic detected: %d packets/sec from %s", 500+g.rng.IntN(4501), ip)
	}},
	{0.10, model.CategoryMalware, func(g *Generator, ip string) string {
		return fmt.Sprintf("Suspicious outbound connection to C2 server 185.100.%d.%d from %s",
			1+g.rng.IntN(255), 1+g.rng.IntN(255), ip)
	}},
}

// Generator produces alerts into a Store.
type Generator struct {
	store  *Store
	rng    *rand.Rand
	logger *zap.Logger
}

// NewGenerator returns a generator writing into store. The same seed yields
// the same sequence of events.
func NewGenerator(store *Store, seed uint64, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		store:  store,
		rng:    rand.New(rand.NewPCG(seed, seed+1)),
		logger: logger.Named("simulate"),
	}
}

// Step runs every detector rule once at time now and returns the incidents
// it stored. Each rule picks its own source address. Incidents stored
// before a store error are still returned.
func (g *Generator) Step(now time.Time) ([]Incident, error) {
	ts := now.Format(TimestampLayout)
	var out []Incident
	for _, ev := range events {
		if g.rng.Float64() >= ev.p {
			continue
		}
		ip := sourceIPs[g.rng.IntN(len(sourceIPs))]
		detail := ev.detail(g, ip)
		attack := string(ev.attackType)
		history, err := g.store.History(ip)
		if err != nil {
			return out, err
		}
		score := risk.BaseScore(attack, now.Hour(), history)
		geo := Lookup(ip)

		inc, err := g.store.Add(Incident{
			AlertRecord: model.AlertRecord{
				Timestamp: ts,
				IP:        ip,
				Country:   geo.Country,
				Type:      attack,
				Risk:      float64(score),
			},
			Lat:     geo.Lat,
			Lon:     geo.Lon,
			Summary: Summary(ip, attack, score, ts, detail),
			Detail:  detail,
		})
		if err != nil {
			return out, err
		}
		g.logger.Debug("alert generated",
			zap.Int64("id", inc.ID),
			zap.String("type", attack),
			zap.String("ip", ip),
			zap.Int("risk", score))
		out = append(out, inc)
	}
	return out, nil
}

// Run calls Step every interval until ctx is cancelled.
func (g *Generator) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("simulate: interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if _, err := g.Step(now); err != nil {
				g.logger.Warn("generate step failed", zap.Error(err))
			}
		}
	}
}
