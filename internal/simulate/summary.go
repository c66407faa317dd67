package simulate

import (
	"fmt"
	"strings"

	"github.com/tinytelemetry/soclens/internal/risk"
)

// Summary writes the human-readable incident summary for an alert. detail
// is the raw event text; a command-and-control mention takes precedence
// over the attack-type explanation.
func Summary(ip, attackType string, score int, timestamp, detail string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "At %s, a %s severity security incident was detected from Source IP: %s. ",
		timestamp, risk.SummarySeverity(float64(score)), ip)
	fmt.Fprintf(&b, "The system identified the activity as '%s'. ", attackType)
	fmt.Fprintf(&b, "Calculated Risk Score is %d/100. ", score)

	switch {
	case strings.Contains(detail, "C2"):
		b.WriteString("The host appears to be attempting to communicate with a known Command & Control server. Immediate isolation recommended.")
	case attackType == "brute_force":
		b.WriteString("Multiple failed login attempts detected, indicating a possible brute-force attack.")
	case attackType == "ddos":
		b.WriteString("Abnormally high traffic volume detected, characteristic of a Denial of Service attempt.")
	case attackType == "port_scan":
		b.WriteString("The source IP is sequentially scanning open ports on the network.")
	}
	return b.String()
}
